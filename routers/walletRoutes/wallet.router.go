package walletRoutes

import (
	walletController "capitalrise/controllers/wallet"
	"capitalrise/middleware"
	"capitalrise/validators"
	walletValidator "capitalrise/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, h *walletController.Handler, auth *middleware.Auth) {
	walletGroup := app.Group("/wallet", auth.JWTMiddleware())

	walletGroup.Get("/payment-info", h.PaymentInfo)
	walletGroup.Post("/deposit", walletValidator.Deposit(), h.Deposit)
	walletGroup.Get("/deposits", validators.Pagination(), h.DepositHistory)
	walletGroup.Post("/withdraw", walletValidator.Withdraw(), h.Withdraw)
	walletGroup.Get("/withdrawals", validators.Pagination(), h.WithdrawalHistory)
}
