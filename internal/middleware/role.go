package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireKind enforces that the authenticated principal is of one of the
// given kinds (values of the JWT "kind" claim). Assumes JWTAuth ran earlier
// in the chain.
func RequireKind(kinds ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			kind, ok := c.Get("kind").(string)
			if !ok || !allowed[kind] {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
			}
			return next(c)
		}
	}
}
