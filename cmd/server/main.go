package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/database"
	"github.com/eventra/eventra-backend/internal/handler"
	"github.com/eventra/eventra-backend/internal/notify"
	"github.com/eventra/eventra-backend/internal/payment"
	"github.com/eventra/eventra-backend/internal/queue"
	"github.com/eventra/eventra-backend/internal/repository"
	"github.com/eventra/eventra-backend/internal/router"
	queuepublisher "github.com/eventra/eventra-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs OTP state, the auth rate limiter and the listing cache.
	// Everything that uses it tolerates a nil client.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	hosts := repository.NewHostRepo(db)
	bookings := repository.NewBookingRepo(db)
	otps := repository.NewOTPStore(rdb)

	email := notify.NewHTTPEmailSender(cfg.EmailAPIKey, cfg.EmailFrom)
	sms := notify.NewHTTPSMSSender(cfg.SMSAPIKey, cfg.SMSSender)
	notifier := notify.NewNotifier(email, sms, queuepublisher.PublishBookingEvent)
	provider := payment.NewClient(cfg.PaymentKeyID, cfg.PaymentKeySecret)

	bookingH := handler.NewBookingHandler(cfg, bookings, users, hosts, notifier)
	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, hosts, otps, email, sms),
		Venues:   handler.NewVenueHandler(cfg, hosts),
		Services: handler.NewServiceHandler(hosts),
		Bookings: bookingH,
		Payments: handler.NewPaymentHandler(cfg, bookings, provider, bookingH),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, h, rdb)

	// Drain the booking event queue into the audit log. The consumer
	// reconnects on its own; a startup failure only loses the audit trail.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
