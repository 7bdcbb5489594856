package handler // handler defines HTTP handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/model"
)

var errNoPrincipal = errors.New("no principal in context")

// principal extracts the authenticated actor placed in the context by the
// JWT middleware.
func principal(c echo.Context) (model.Actor, error) {
	id, ok := c.Get("principal_id").(uint64)
	if !ok || id == 0 {
		return model.Actor{}, errNoPrincipal
	}
	kind, ok := c.Get("kind").(string)
	if !ok {
		return model.Actor{}, errNoPrincipal
	}
	return model.Actor{ID: id, Kind: model.PrincipalKind(kind)}, nil
}

// parseID reads a numeric path parameter. Handlers translate a parse
// failure into 404 rather than leaking a format error.
func parseID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
