package superAdminRoutes

import (
	superAdminController "capitalrise/controllers/superAdmin"
	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/validators"
	superAdminValidator "capitalrise/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App, h *superAdminController.Handler, auth *middleware.Auth) {
	adminGroup := app.Group("/admin", auth.AdminJWTMiddleware(),
		middleware.RequireRole(ledger.RoleSuperAdmin, ledger.RoleAdmin, ledger.RoleSupport))
	process := middleware.RequireRole(ledger.RoleSuperAdmin, ledger.RoleAdmin)
	list := []fiber.Handler{validators.Pagination(), superAdminValidator.List()}

	adminGroup.Get("/dashboard", h.Dashboard)

	adminGroup.Get("/users", append(list, h.UserList)...)
	adminGroup.Get("/users/:userId", h.UserDetails)
	adminGroup.Patch("/users/:userId/status", process, superAdminValidator.UserStatus(), h.UpdateUserStatus)
	adminGroup.Post("/users/:userId/balance", process, superAdminValidator.AddBalance(), h.AddUserBalance)

	adminGroup.Get("/deposits", append(list, h.DepositList)...)
	adminGroup.Post("/deposits/:requestId/approve", process, superAdminValidator.Approve(), h.ApproveDeposit)
	adminGroup.Post("/deposits/:requestId/reject", process, superAdminValidator.Reject(), h.RejectDeposit)

	adminGroup.Get("/withdrawals", append(list, h.WithdrawalList)...)
	adminGroup.Post("/withdrawals/:requestId/approve", process, superAdminValidator.ApproveWithdrawal(), h.ApproveWithdrawal)
	adminGroup.Post("/withdrawals/:requestId/reject", process, superAdminValidator.Reject(), h.RejectWithdrawal)

	adminGroup.Get("/kyc", append(list, h.KYCList)...)
	adminGroup.Post("/kyc/:userId/review", process, h.ReviewKYC)
	adminGroup.Post("/kyc/:userId/check-link", process, h.CheckPanAadhaarLink)
	adminGroup.Post("/kyc/:userId/approve", process, superAdminValidator.Approve(), h.ApproveKYC)
	adminGroup.Post("/kyc/:userId/reject", process, superAdminValidator.Reject(), h.RejectKYC)

	adminGroup.Get("/settings", h.GetSettings)
	adminGroup.Put("/settings", middleware.RequireRole(ledger.RoleSuperAdmin), superAdminValidator.Settings(), h.UpdateSettings)

	adminGroup.Get("/transactions", append(list, h.TransactionReport)...)
	adminGroup.Get("/activity", append(list, h.ActivityLog)...)
}
