package userProfileController

import (
	"os"
	"path/filepath"

	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/models"
	"capitalrise/utils"
	"capitalrise/validators"
	userValidator "capitalrise/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc       *ledger.Service
	uploadDir string
	log       *logrus.Logger
}

func New(svc *ledger.Service, uploadDir string, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir, log: log}
}

// Overview returns the profile, stats, recent transactions and live packages.
func (h *Handler) Overview(c *fiber.Ctx) error {
	overview, err := h.svc.UserOverview(c.UserContext(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User data fetched successfully.", overview)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	reqData := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	user, err := h.svc.UpdateProfile(c.UserContext(), middleware.GetPrincipal(c), reqData.Name, reqData.Mobile)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func (h *Handler) Transactions(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTransactionList").(*userValidator.TransactionListQuery)
	page := validators.GetPage(c)
	txns, total, err := h.svc.Transactions(c.UserContext(), middleware.GetPrincipal(c).ID, models.TransactionType(reqData.Type), page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Transactions fetched successfully.", "transactions", txns, total, page)
}

func (h *Handler) Referrals(c *fiber.Ctx) error {
	summary, err := h.svc.Referrals(c.UserContext(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referrals fetched successfully.", summary)
}

func (h *Handler) Packages(c *fiber.Ctx) error {
	packages, err := h.svc.Packages(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Packages fetched successfully.", packages)
}

func (h *Handler) ActivatePackage(c *fiber.Ctx) error {
	reqData := c.Locals("validatedActivation").(*userValidator.ActivatePackageRequest)
	activation, err := h.svc.ActivatePackage(c.UserContext(), ledger.ActivateInput{
		UserID:      middleware.GetPrincipal(c).ID,
		PackageName: reqData.PackageName,
		Amount:      reqData.Amount,
		Device:      c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Package activated successfully.", activation)
}

func (h *Handler) Subscriptions(c *fiber.Ctx) error {
	subs, err := h.svc.Subscriptions(c.UserContext(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscriptions fetched successfully.", subs)
}

func (h *Handler) TodayTask(c *fiber.Ctx) error {
	progress, err := h.svc.TodayProgress(c.UserContext(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Today's task fetched successfully.", progress)
}

func (h *Handler) CompleteClick(c *fiber.Ctx) error {
	result, err := h.svc.CompleteClick(c.UserContext(), middleware.GetPrincipal(c).ID, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	message := "Click recorded successfully."
	if result.IsCompleted {
		message = "Today's task completed."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (h *Handler) TaskHistory(c *fiber.Ctx) error {
	page := validators.GetPage(c)
	history, total, err := h.svc.TaskHistory(c.UserContext(), middleware.GetPrincipal(c).ID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Task history fetched successfully.", "history", history, total, page)
}

// SubmitKYC stores the uploaded documents, then files the request. Stored
// files are removed again if the request is refused.
func (h *Handler) SubmitKYC(c *fiber.Ctx) error {
	reqData := c.Locals("validatedKYC").(*userValidator.KYCRequest)
	userID := middleware.GetPrincipal(c).ID

	dir := filepath.Join(h.uploadDir, "kyc", userID)
	saved := make(map[string]string, len(reqData.Documents))
	cleanup := func() {
		for _, path := range saved {
			os.Remove(path)
		}
	}
	for field, file := range reqData.Documents {
		path, err := utils.SaveUploadedFile(file, dir)
		if err != nil {
			cleanup()
			h.log.WithError(err).WithField("userId", userID).Error("Error saving KYC document")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
		}
		saved[field] = path
	}

	req, err := h.svc.SubmitKYC(c.UserContext(), ledger.KYCInput{
		UserID:       userID,
		Name:         reqData.Name,
		DOB:          reqData.BirthDate,
		AadharNumber: reqData.AadharNumber,
		PanNumber:    reqData.PanNumber,
		BankAccount:  reqData.BankAccount,
		IFSCCode:     reqData.IFSCCode,
		AadharFront:  saved["aadharFront"],
		AadharBack:   saved["aadharBack"],
		PanCard:      saved["panCard"],
		Device:       c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		cleanup()
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "KYC submitted successfully.", req)
}

func (h *Handler) KYCStatus(c *fiber.Ctx) error {
	req, err := h.svc.KYCStatus(c.UserContext(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "KYC status fetched successfully.", req)
}
