package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/handler"
	"github.com/eventra/eventra-backend/internal/middleware"
	"github.com/eventra/eventra-backend/internal/model"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Venues   *handler.VenueHandler
	Services *handler.ServiceHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
}

// Register wires all routes on the provided Echo instance. The Redis client
// backs the auth rate limiter and the public listing cache; both degrade
// gracefully when it is nil.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth surface, rate limited per client IP.
	auth := e.Group("/v1/auth", middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	auth.POST("/register/user", h.Auth.RegisterUser)
	auth.POST("/register/host", h.Auth.RegisterHost)
	auth.POST("/login/user", h.Auth.LoginUser)
	auth.POST("/login/host", h.Auth.LoginHost)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)

	e.GET("/v1/auth/me", h.Auth.Me, middleware.JWTAuth(cfg.JWTSecret))
	e.GET("/v1/auth/logout", h.Auth.Logout)

	// Public directory, response-cached.
	pub := e.Group("/v1", middleware.NewListingCache(config.LoadCacheConfig(), rdb))
	pub.GET("/venues", h.Venues.ListVenues)
	pub.GET("/venues/:id", h.Venues.GetVenue)
	pub.GET("/services", h.Services.ListServices)
	pub.GET("/services/:id", h.Services.GetService)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))

	// Host self-management.
	host := v1.Group("", middleware.RequireKind(string(model.KindHost), string(model.KindAdmin)))
	host.POST("/venues", h.Venues.CreateVenueProfile)
	host.PUT("/venues/:id", h.Venues.UpdateVenue)
	host.PUT("/venues/:id/:category", h.Venues.UploadMedia)
	host.PUT("/services/:id", h.Services.UpdateService)
	host.POST("/services/:id/menu", h.Services.AddMenuItem)
	host.POST("/services/:id/decoration-category", h.Services.AddDecorationCategory)
	host.POST("/services/:id/organizer-service", h.Services.AddOrganizerService)
	host.PUT("/services/:id/availability", h.Services.UpdateAvailability)

	v1.DELETE("/venues/:id", h.Venues.DeleteVenue)

	// Booking lifecycle. Creation and payments are user actions; reads and
	// status transitions are role-gated inside the handlers because the
	// allowed set depends on the booking itself.
	v1.POST("/bookings", h.Bookings.Create, middleware.RequireKind(string(model.KindUser), string(model.KindAdmin)))
	v1.GET("/bookings", h.Bookings.List)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.PUT("/bookings/:id/status", h.Bookings.UpdateStatus)
	v1.DELETE("/bookings/:id", h.Bookings.Delete, middleware.RequireKind(string(model.KindAdmin)))

	v1.POST("/payments/create-payment-intent", h.Payments.CreateIntent)
	v1.POST("/payments/confirm", h.Payments.Confirm)
	v1.GET("/payments/:bookingId", h.Payments.GetPayment)

	// Provider callback; authenticated by HMAC signature, not JWT.
	e.POST("/v1/payments/webhook", h.Payments.Webhook)
}
