package middleware // reusable HTTP middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/utils"
)

// JWTAuth returns an Echo middleware that validates an access token taken
// from the Authorization header (Bearer) or, failing that, from the token
// cookie. On success it stores the principal id under "principal_id" and the
// principal kind (USER/HOST/ADMIN) under "kind" for downstream handlers.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			} else if ck, err := c.Cookie(utils.CookieName); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing credentials"})
			}
			id, kind, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid token"})
			}
			c.Set("principal_id", id)
			c.Set("kind", kind)
			return next(c)
		}
	}
}
