package superAdminController

import (
	"time"

	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/models"
	"capitalrise/validators"
	superAdminValidator "capitalrise/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc *ledger.Service
	loc *time.Location
}

func New(svc *ledger.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func listQuery(c *fiber.Ctx) *superAdminValidator.ListQuery {
	q, _ := c.Locals("list").(*superAdminValidator.ListQuery)
	if q == nil {
		q = new(superAdminValidator.ListQuery)
	}
	return q
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.svc.Dashboard(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", dashboard)
}

// --- Users ---

func (h *Handler) UserList(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	users, total, err := h.svc.Users(c.UserContext(), middleware.GetPrincipal(c), q.Search, models.UserStatus(q.Status), page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Users fetched successfully.", "users", users, total, page)
}

func (h *Handler) UserDetails(c *fiber.Ctx) error {
	overview, err := h.svc.UserOverview(c.UserContext(), c.Params("userId"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", overview)
}

func (h *Handler) UpdateUserStatus(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUserStatus").(*superAdminValidator.UserStatusRequest)
	user, err := h.svc.UpdateUserStatus(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"), models.UserStatus(reqData.Status))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated successfully.", user)
}

func (h *Handler) AddUserBalance(c *fiber.Ctx) error {
	reqData := c.Locals("validatedAddBalance").(*superAdminValidator.AddBalanceRequest)
	txn, err := h.svc.AddUserBalance(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"), reqData.Amount, reqData.Reason, reqData.OperationKey)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance added successfully.", txn)
}

// --- Deposits ---

func (h *Handler) DepositList(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	deposits, total, err := h.svc.Deposits(c.UserContext(), models.RequestStatus(q.Status), q.UserID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Deposits fetched successfully.", "deposits", deposits, total, page)
}

func (h *Handler) ApproveDeposit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDecision").(*superAdminValidator.DecisionRequest)
	req, err := h.svc.ApproveDeposit(c.UserContext(), middleware.GetPrincipal(c), c.Params("requestId"), reqData.Notes)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deposit approved successfully.", req)
}

func (h *Handler) RejectDeposit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRejection").(*superAdminValidator.RejectRequest)
	req, err := h.svc.RejectDeposit(c.UserContext(), middleware.GetPrincipal(c), c.Params("requestId"), reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deposit rejected.", req)
}

// --- Withdrawals ---

func (h *Handler) WithdrawalList(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	withdrawals, total, err := h.svc.Withdrawals(c.UserContext(), models.RequestStatus(q.Status), q.UserID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Withdrawals fetched successfully.", "withdrawals", withdrawals, total, page)
}

func (h *Handler) ApproveWithdrawal(c *fiber.Ctx) error {
	reqData := c.Locals("validatedWithdrawalApproval").(*superAdminValidator.ApproveWithdrawalRequest)
	req, err := h.svc.ApproveWithdrawal(c.UserContext(), middleware.GetPrincipal(c), c.Params("requestId"), reqData.SettlementRef, reqData.Notes)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal approved successfully.", req)
}

func (h *Handler) RejectWithdrawal(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRejection").(*superAdminValidator.RejectRequest)
	req, err := h.svc.RejectWithdrawal(c.UserContext(), middleware.GetPrincipal(c), c.Params("requestId"), reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal rejected and amount refunded.", req)
}

// --- KYC ---

func (h *Handler) KYCList(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	requests, total, err := h.svc.KYCRequests(c.UserContext(), middleware.GetPrincipal(c), models.KYCStatus(q.Status), page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "KYC requests fetched successfully.", "requests", requests, total, page)
}

func (h *Handler) ReviewKYC(c *fiber.Ctx) error {
	req, err := h.svc.MarkKYCUnderReview(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "KYC moved to review.", req)
}

func (h *Handler) CheckPanAadhaarLink(c *fiber.Ctx) error {
	req, err := h.svc.CheckPanAadhaarLink(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "PAN-Aadhaar link status fetched.", req)
}

func (h *Handler) ApproveKYC(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDecision").(*superAdminValidator.DecisionRequest)
	req, err := h.svc.ApproveKYC(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"), reqData.Notes)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "KYC approved successfully.", req)
}

func (h *Handler) RejectKYC(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRejection").(*superAdminValidator.RejectRequest)
	req, err := h.svc.RejectKYC(c.UserContext(), middleware.GetPrincipal(c), c.Params("userId"), reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "KYC rejected.", req)
}

// --- Settings, reports and audit ---

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.svc.RawSettings(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully.", settings)
}

func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSettings").(map[string]string)
	if err := h.svc.UpdateSettings(c.UserContext(), middleware.GetPrincipal(c), reqData); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return h.GetSettings(c)
}

func (h *Handler) TransactionReport(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	txns, total, err := h.svc.TransactionReport(c.UserContext(), middleware.GetPrincipal(c), q.Filter(h.loc), page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Transactions fetched successfully.", "transactions", txns, total, page)
}

func (h *Handler) ActivityLog(c *fiber.Ctx) error {
	q := listQuery(c)
	page := validators.GetPage(c)
	logs, total, err := h.svc.ActivityLog(c.UserContext(), middleware.GetPrincipal(c), q.AdminID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Activity log fetched successfully.", "logs", logs, total, page)
}
