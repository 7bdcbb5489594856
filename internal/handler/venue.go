package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/repository"
	"github.com/eventra/eventra-backend/internal/upload"
)

// VenueHandler serves the public venue directory and venue profile
// management for host owners.
type VenueHandler struct {
	Cfg   config.Config
	Hosts HostStore
}

func NewVenueHandler(cfg config.Config, hosts HostStore) *VenueHandler {
	if hosts == nil {
		panic("nil repository passed to NewVenueHandler")
	}
	return &VenueHandler{Cfg: cfg, Hosts: hosts}
}

// publicHost is the sanitized listing view of a host. Contact details and
// payout coordinates are never exposed through the directory.
type publicHost struct {
	ID                uint64                     `json:"id"`
	Name              string                     `json:"name"`
	HostType          model.HostType             `json:"hostType"`
	City              string                     `json:"city"`
	Address           string                     `json:"address,omitempty"`
	Capacity          uint32                     `json:"capacity,omitempty"`
	ServicesOffered   []string                   `json:"servicesOffered,omitempty"`
	BasePrice         float64                    `json:"basePrice"`
	Rating            float64                    `json:"rating"`
	Images            []string                   `json:"images,omitempty"`
	Menu              []model.MenuItem           `json:"menu,omitempty"`
	DecorCategories   []model.DecorationCategory `json:"decorationCategories,omitempty"`
	OrganizerServices []model.OrganizerService   `json:"organizerServices,omitempty"`
	Availability      []model.AvailabilitySlot   `json:"availability,omitempty"`
}

func toPublicHost(h model.Host) publicHost {
	return publicHost{
		ID:                h.ID,
		Name:              h.Name,
		HostType:          h.HostType,
		City:              h.City,
		Address:           h.Address,
		Capacity:          h.Capacity,
		ServicesOffered:   h.ServicesOffered,
		BasePrice:         h.BasePrice,
		Rating:            h.Rating,
		Images:            h.Images,
		Menu:              h.Menu,
		DecorCategories:   h.DecorCategories,
		OrganizerServices: h.OrganizerServices,
		Availability:      h.Availability,
	}
}

func listQueryFrom(c echo.Context, types []model.HostType) repository.HostListQuery {
	page, limit := pageParams(c)
	q := repository.HostListQuery{
		Types: types,
		City:  strings.TrimSpace(c.QueryParam("city")),
		Page:  page,
		Limit: limit,
	}
	if raw := strings.TrimSpace(c.QueryParam("serviceTypes")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.ServiceTypes = append(q.ServiceTypes, s)
			}
		}
	}
	return q
}

// ListVenues handles GET /v1/venues: verified, active venue hosts filtered
// by city, service types and minimum capacity, paginated.
func (h *VenueHandler) ListVenues(c echo.Context) error {
	q := listQueryFrom(c, []model.HostType{model.HostVenue})
	if raw := c.QueryParam("minCapacity"); raw != "" {
		// malformed or out-of-range values fall back to no capacity filter
		if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
			q.MinCapacity = uint32(n)
		}
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

// GetVenue handles GET /v1/venues/:id. Non-venue hosts and malformed ids
// both surface as 404.
func (h *VenueHandler) GetVenue(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	host, err := h.Hosts.GetByID(c.Request().Context(), id)
	if err != nil || host.HostType != model.HostVenue || !host.IsActive {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	return respond(c, http.StatusOK, toPublicHost(host))
}

type venueProfileReq struct {
	Name            *string            `json:"name"`
	City            *string            `json:"city"`
	Address         *string            `json:"address"`
	Capacity        *uint32            `json:"capacity"`
	BasePrice       *float64           `json:"basePrice"`
	Rating          *float64           `json:"rating"`
	ServicesOffered []string           `json:"servicesOffered"`
	Payout          *model.BankDetails `json:"payout"`
}

// ownVenue loads the caller's host record and checks it is the venue the
// route addresses.
func (h *VenueHandler) ownVenue(c echo.Context, id uint64) (model.Host, int, string) {
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
			return model.Host{}, http.StatusNotFound, "venue not found"
		}
		return model.Host{}, http.StatusInternalServerError, "load host failed"
	}
	if host.HostType != model.HostVenue {
		return model.Host{}, http.StatusNotFound, "venue not found"
	}
	return host, 0, ""
}

func (h *VenueHandler) applyProfile(c echo.Context, id uint64) error {
	var req venueProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	err := h.Hosts.UpdateProfile(c.Request().Context(), id, repository.HostProfileUpdate{
		Name:            req.Name,
		City:            req.City,
		Address:         req.Address,
		Capacity:        req.Capacity,
		BasePrice:       req.BasePrice,
		Rating:          req.Rating,
		ServicesOffered: req.ServicesOffered,
		Payout:          req.Payout,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "venue not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	host, err := h.Hosts.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "reload failed")
	}
	return respond(c, http.StatusOK, host)
}

// CreateVenueProfile handles POST /v1/venues: a venue host filling in its
// own listing details after registration.
func (h *VenueHandler) CreateVenueProfile(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if _, code, msg := h.ownVenue(c, actor.ID); code != 0 {
		return fail(c, code, msg)
	}
	return h.applyProfile(c, actor.ID)
}

// UpdateVenue handles PUT /v1/venues/:id.
func (h *VenueHandler) UpdateVenue(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	if _, code, msg := h.ownVenue(c, id); code != 0 {
		return fail(c, code, msg)
	}
	return h.applyProfile(c, id)
}

// UploadMedia handles PUT /v1/venues/:id/{images|videos|documents}. Files
// are validated per category, stored under the content root and their paths
// appended to the host record.
func (h *VenueHandler) UploadMedia(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	category := c.Param("category")
	if !upload.ValidCategory(category) {
		return fail(c, http.StatusNotFound, "unknown media category")
	}
	host, code, msg := h.ownVenue(c, id)
	if code != 0 {
		return fail(c, code, msg)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, "multipart form required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fail(c, http.StatusBadRequest, "no files provided")
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := upload.Store(h.Cfg.UploadRoot, category, id, fh)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrBadExtension), errors.Is(err, upload.ErrTooLarge):
				return fail(c, http.StatusBadRequest, err.Error())
			}
			return fail(c, http.StatusInternalServerError, "storing file failed")
		}
		paths = append(paths, p)
	}
	if err := h.Hosts.AddMediaPaths(c.Request().Context(), host, category, paths); err != nil {
		return fail(c, http.StatusInternalServerError, "saving paths failed")
	}
	return respond(c, http.StatusOK, echo.Map{"stored": paths})
}

// DeleteVenue handles DELETE /v1/venues/:id by deactivating the listing so
// existing bookings keep a resolvable venue reference.
func (h *VenueHandler) DeleteVenue(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if actor.Kind != model.KindAdmin {
		if _, code, msg := h.ownVenue(c, id); code != 0 {
			return fail(c, code, msg)
		}
	}
	if err := h.Hosts.Deactivate(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
