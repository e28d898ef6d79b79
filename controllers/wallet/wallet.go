package walletController

import (
	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/models"
	"capitalrise/validators"
	walletValidator "capitalrise/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc *ledger.Service
}

func New(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

// PaymentInfo returns where users send deposits and the current limits.
func (h *Handler) PaymentInfo(c *fiber.Ctx) error {
	settings, err := h.svc.Settings(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment info fetched successfully.", fiber.Map{
		"upiId":                settings.UPIID,
		"bankDetails":          settings.BankDetails,
		"minDeposit":           settings.MinDeposit,
		"minWithdrawal":        settings.MinWithdrawal,
		"withdrawalFeePercent": settings.WithdrawalFeePercent,
	})
}

func (h *Handler) Deposit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDeposit").(*walletValidator.DepositRequest)
	req, err := h.svc.SubmitDeposit(c.UserContext(), ledger.DepositInput{
		UserID:           middleware.GetPrincipal(c).ID,
		Amount:           reqData.Amount,
		UPITransactionID: reqData.UPITransactionID,
		UserUPIID:        reqData.UserUPIID,
		Device:           c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Deposit request submitted successfully.", req)
}

func (h *Handler) DepositHistory(c *fiber.Ctx) error {
	page := validators.GetPage(c)
	status := models.RequestStatus(c.Query("status"))
	deposits, total, err := h.svc.Deposits(c.UserContext(), status, middleware.GetPrincipal(c).ID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Deposits fetched successfully.", "deposits", deposits, total, page)
}

func (h *Handler) Withdraw(c *fiber.Ctx) error {
	reqData := c.Locals("validatedWithdraw").(*walletValidator.WithdrawRequest)
	req, err := h.svc.SubmitWithdrawal(c.UserContext(), ledger.WithdrawalInput{
		UserID:         middleware.GetPrincipal(c).ID,
		Amount:         reqData.Amount,
		Method:         reqData.Method,
		AccountDetails: reqData.AccountDetails,
		Device:         c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Withdrawal request submitted successfully.", req)
}

func (h *Handler) WithdrawalHistory(c *fiber.Ctx) error {
	page := validators.GetPage(c)
	status := models.RequestStatus(c.Query("status"))
	withdrawals, total, err := h.svc.Withdrawals(c.UserContext(), status, middleware.GetPrincipal(c).ID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Withdrawals fetched successfully.", "withdrawals", withdrawals, total, page)
}
