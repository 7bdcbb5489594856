package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/notify"
	"github.com/eventra/eventra-backend/internal/payment"
	"github.com/eventra/eventra-backend/internal/repository"
)

// PaymentHandler covers the advance-payment flow: creating a provider
// order, client-side confirmation and the asynchronous webhook. Both
// confirmation paths converge on the same conditional mark-paid update, so
// a booking is only ever paid once no matter which path lands first.
type PaymentHandler struct {
	Cfg      config.Config
	Bookings BookingStore
	Provider *payment.Client
	Booking  *BookingHandler
}

func NewPaymentHandler(cfg config.Config, b BookingStore, p *payment.Client, bh *BookingHandler) *PaymentHandler {
	if b == nil || p == nil || bh == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Cfg: cfg, Bookings: b, Provider: p, Booking: bh}
}

type createIntentReq struct {
	BookingID uint64 `json:"bookingId"`
}

// CreateIntent handles POST /v1/payments/create-payment-intent. Only the
// owning user may start a payment, only for an unpaid booking, and only
// with the online method.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createIntentReq
	if err := c.Bind(&req); err != nil || req.BookingID == 0 {
		return failFields(c, http.StatusBadRequest, map[string]string{"bookingId": "required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "load booking failed")
	}
	if actor.Kind != model.KindAdmin && b.UserID != actor.ID {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	if b.Payment.IsPaid {
		return fail(c, http.StatusConflict, "booking already paid")
	}
	if b.Payment.Method != model.PaymentMethodOnline {
		return fail(c, http.StatusBadRequest, "booking payment method is not online")
	}

	receipt := uuid.NewString()
	order, err := h.Provider.CreateOrder(ctx, b.Payment.Advance, receipt, map[string]string{
		"booking_id": strconv.FormatUint(b.ID, 10),
	})
	if err != nil {
		return fail(c, http.StatusBadGateway, "payment provider unavailable")
	}
	return respond(c, http.StatusCreated, echo.Map{
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"keyId":    h.Cfg.PaymentKeyID,
	})
}

type confirmPaymentReq struct {
	BookingID     uint64 `json:"bookingId"`
	TransactionID string `json:"transactionId"`
}

// markPaid applies the at-most-once paid transition and, on the winning
// update, reloads the booking and runs the payment fan-out. Replays report
// success without side effects.
func (h *PaymentHandler) markPaid(ctx context.Context, id uint64, txnID string) (model.Booking, error) {
	now := time.Now().UTC()
	if err := h.Bookings.MarkPaidCAS(ctx, id, txnID, model.PaymentMethodOnline, now); err != nil {
		return model.Booking{}, err
	}
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	h.Booking.fanOut(b, notify.EventPaid)
	return b, nil
}

// Confirm handles POST /v1/payments/confirm, the client-side reconciliation
// path.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if req.BookingID == 0 || req.TransactionID == "" {
		return failFields(c, http.StatusBadRequest, map[string]string{
			"bookingId":     "required",
			"transactionId": "required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "load booking failed")
	}
	if actor.Kind != model.KindAdmin && b.UserID != actor.ID {
		return fail(c, http.StatusForbidden, "forbidden")
	}

	b, err = h.markPaid(ctx, req.BookingID, req.TransactionID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyPaid) {
			return fail(c, http.StatusConflict, "booking already paid")
		}
		return fail(c, http.StatusInternalServerError, "confirm payment failed")
	}
	return respond(c, http.StatusOK, b)
}

// Webhook handles POST /v1/payments/webhook, the provider-side
// reconciliation path. It is unauthenticated; trust comes entirely from the
// HMAC signature over the raw body. Replayed deliveries acknowledge with
// 200 and change nothing.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable body")
	}
	sig := c.Request().Header.Get("X-Razorpay-Signature")
	if sig == "" || !payment.VerifySignature(body, sig, h.Cfg.WebhookSecret) {
		return fail(c, http.StatusUnauthorized, "invalid signature")
	}

	ev, err := payment.ParseWebhook(body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	entity := ev.Payload.Payment.Entity
	bookingID, err := strconv.ParseUint(entity.Notes["booking_id"], 10, 64)
	if err != nil || bookingID == 0 {
		return fail(c, http.StatusBadRequest, "missing booking reference")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if _, err := h.markPaid(ctx, bookingID, entity.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyPaid):
			// Duplicate delivery; acknowledge so the provider stops retrying.
			log.Printf("webhook replay for booking %d ignored", bookingID)
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusBadRequest, "unknown booking")
		default:
			return fail(c, http.StatusInternalServerError, "reconciliation failed")
		}
	}
	return respond(c, http.StatusOK, echo.Map{"received": true})
}

// GetPayment handles GET /v1/payments/:bookingId for the booking owner or a
// referenced host.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "bookingId")
	if !ok {
		return fail(c, http.StatusNotFound, "booking not found")
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "load booking failed")
	}
	if !canRead(actor, b) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	return respond(c, http.StatusOK, b.Payment)
}
