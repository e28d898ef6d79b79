package middleware

import (
	"capitalrise/ledger"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets through only the listed roles.
// It must run after one of the JWT middlewares.
func RequireRole(roles ...ledger.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.ID == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: principal not found", nil)
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
