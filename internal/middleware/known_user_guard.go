package middleware

import (
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// KnownUserGuard rejects tokens whose subject is no longer in the user
// directory, and replaces the token's role with the stored one.
func KnownUserGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
