package authRoutes

import (
	authControllers "capitalrise/controllers/auth"
	"capitalrise/middleware"
	"capitalrise/validators"
	authValidators "capitalrise/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *authControllers.Handler, auth *middleware.Auth) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), h.Signup)
	authGroup.Post("/login", authValidators.Login(), h.Login)
	authGroup.Post("/logout", h.Logout)
	authGroup.Get("/login/history", auth.JWTMiddleware(), validators.Pagination(), h.LoginHistoryList)
	authGroup.Put("/change/login/password", auth.JWTMiddleware(), authValidators.ChangeLoginPassword(), h.ChangeLoginPassword)
	authGroup.Post("/admin/login", authValidators.Login(), h.AdminLogin)
}
