package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/repository"
)

// providerTypes is the listing scope of the service directory: every host
// subtype except venues.
var providerTypes = []model.HostType{model.HostCaterer, model.HostDecorator, model.HostOrganizer}

// ServiceHandler serves the service-provider directory and the subtype
// payload operations (menu, decoration categories, organizer services,
// availability).
type ServiceHandler struct {
	Hosts HostStore
}

func NewServiceHandler(hosts HostStore) *ServiceHandler {
	if hosts == nil {
		panic("nil repository passed to NewServiceHandler")
	}
	return &ServiceHandler{Hosts: hosts}
}

// ListServices handles GET /v1/services with the shared directory filters
// plus an exact subtype filter (?type=caterer|decorator|organizer).
func (h *ServiceHandler) ListServices(c echo.Context) error {
	q := listQueryFrom(c, providerTypes)
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("type"))); raw != "" {
		t := model.HostType(raw)
		if t == model.HostVenue || !model.ValidHostType(t) {
			return fail(c, http.StatusBadRequest, "type must be caterer, decorator or organizer")
		}
		q.ExactType = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hosts, total, err := h.Hosts.List(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "listing failed")
	}
	items := make([]publicHost, len(hosts))
	for i, host := range hosts {
		items[i] = toPublicHost(host)
	}
	return respond(c, http.StatusOK, echo.Map{
		"items":      items,
		"pagination": buildPageInfo(total, q.Page, q.Limit),
	})
}

// GetService handles GET /v1/services/:id.
func (h *ServiceHandler) GetService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	host, err := h.Hosts.GetByID(c.Request().Context(), id)
	if err != nil || host.HostType == model.HostVenue || !host.IsActive {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	return respond(c, http.StatusOK, toPublicHost(host))
}

// ownProvider loads the caller's host record and checks route ownership.
func (h *ServiceHandler) ownProvider(c echo.Context, id uint64) (model.Host, int, string) {
	actor, err := principal(c)
	if err != nil {
		return model.Host{}, http.StatusUnauthorized, "unauthorized"
	}
	if actor.Kind != model.KindHost || actor.ID != id {
		return model.Host{}, http.StatusForbidden, "not your listing"
	}
	host, err := h.Hosts.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Host{}, http.StatusNotFound, "service provider not found"
		}
		return model.Host{}, http.StatusInternalServerError, "load host failed"
	}
	if host.HostType == model.HostVenue {
		return model.Host{}, http.StatusNotFound, "service provider not found"
	}
	return host, 0, ""
}

// UpdateService handles PUT /v1/services/:id, the provider profile upsert.
func (h *ServiceHandler) UpdateService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	if _, code, msg := h.ownProvider(c, id); code != 0 {
		return fail(c, code, msg)
	}
	var req venueProfileReq // same mutable field set as venues
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	err := h.Hosts.UpdateProfile(c.Request().Context(), id, repository.HostProfileUpdate{
		Name:            req.Name,
		City:            req.City,
		Address:         req.Address,
		BasePrice:       req.BasePrice,
		Rating:          req.Rating,
		ServicesOffered: req.ServicesOffered,
		Payout:          req.Payout,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	host, err := h.Hosts.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "reload failed")
	}
	return respond(c, http.StatusOK, host)
}

// AddMenuItem handles POST /v1/services/:id/menu. Only caterers carry a
// menu; a mismatched subtype is a validation error, not a missing resource.
func (h *ServiceHandler) AddMenuItem(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	host, code, msg := h.ownProvider(c, id)
	if code != 0 {
		return fail(c, code, msg)
	}
	var item model.MenuItem
	if err := c.Bind(&item); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := model.ValidateMenuItem(host.HostType, item); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.Hosts.AppendMenuItem(c.Request().Context(), host, item); err != nil {
		return fail(c, http.StatusInternalServerError, "saving menu failed")
	}
	return respond(c, http.StatusCreated, item)
}

// AddDecorationCategory handles POST /v1/services/:id/decoration-category.
func (h *ServiceHandler) AddDecorationCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	host, code, msg := h.ownProvider(c, id)
	if code != 0 {
		return fail(c, code, msg)
	}
	var cat model.DecorationCategory
	if err := c.Bind(&cat); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := model.ValidateDecorationCategory(host.HostType, cat); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.Hosts.AppendDecorCategory(c.Request().Context(), host, cat); err != nil {
		return fail(c, http.StatusInternalServerError, "saving category failed")
	}
	return respond(c, http.StatusCreated, cat)
}

// AddOrganizerService handles POST /v1/services/:id/organizer-service.
func (h *ServiceHandler) AddOrganizerService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	host, code, msg := h.ownProvider(c, id)
	if code != 0 {
		return fail(c, code, msg)
	}
	var svc model.OrganizerService
	if err := c.Bind(&svc); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := model.ValidateOrganizerService(host.HostType, svc); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.Hosts.AppendOrganizerService(c.Request().Context(), host, svc); err != nil {
		return fail(c, http.StatusInternalServerError, "saving service failed")
	}
	return respond(c, http.StatusCreated, svc)
}

// UpdateAvailability handles PUT /v1/services/:id/availability, replacing
// the provider's calendar.
func (h *ServiceHandler) UpdateAvailability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "service provider not found")
	}
	if _, code, msg := h.ownProvider(c, id); code != 0 {
		return fail(c, code, msg)
	}
	var body struct {
		Slots []model.AvailabilitySlot `json:"availability"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := model.ValidateAvailability(body.Slots); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.Hosts.ReplaceAvailability(c.Request().Context(), id, body.Slots); err != nil {
		return fail(c, http.StatusInternalServerError, "saving availability failed")
	}
	return respond(c, http.StatusOK, echo.Map{"availability": body.Slots})
}
