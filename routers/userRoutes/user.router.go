package userProfileRoutes

import (
	userProfileController "capitalrise/controllers/userControllers"
	"capitalrise/middleware"
	"capitalrise/validators"
	userProfileValidator "capitalrise/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, h *userProfileController.Handler, auth *middleware.Auth) {
	userGroup := app.Group("/user", auth.JWTMiddleware())

	userGroup.Get("/overview", h.Overview)
	userGroup.Put("/profile", userProfileValidator.UpdateProfile(), h.UpdateProfile)
	userGroup.Get("/transactions", validators.Pagination(), userProfileValidator.TransactionList(), h.Transactions)
	userGroup.Get("/referrals", h.Referrals)

	userGroup.Get("/packages", h.Packages)
	userGroup.Post("/packages/activate", userProfileValidator.ActivatePackage(), h.ActivatePackage)
	userGroup.Get("/subscriptions", h.Subscriptions)

	userGroup.Get("/task/today", h.TodayTask)
	userGroup.Post("/task/click", h.CompleteClick)
	userGroup.Get("/task/history", validators.Pagination(), h.TaskHistory)

	userGroup.Post("/kyc", userProfileValidator.SubmitKYC(), h.SubmitKYC)
	userGroup.Get("/kyc", h.KYCStatus)
}
