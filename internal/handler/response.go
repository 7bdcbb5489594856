package handler

import "github.com/labstack/echo/v4"

// All endpoints answer with a {success, data|error} envelope.

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{"success": true, "data": data})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"success": false, "error": msg})
}

// failFields reports per-field validation messages.
func failFields(c echo.Context, code int, fields map[string]string) error {
	return c.JSON(code, echo.Map{"success": false, "error": "validation failed", "fields": fields})
}
