package middleware

import (
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard lets only ADMIN through. Run it after AuthJWT.
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if model.Role(role) != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}
