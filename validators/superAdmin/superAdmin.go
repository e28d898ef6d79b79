package superAdminValidator

import (
	"strconv"
	"strings"
	"time"

	"capitalrise/apperrors"
	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/models"
	"capitalrise/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type DecisionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// Approve validates the optional notes of an approval.
func Approve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DecisionRequest)
		if len(c.Body()) > 0 {
			if ok, err := validators.Body(c, reqData); !ok {
				return err
			}
		}
		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

func Reject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RejectRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}

type ApproveWithdrawalRequest struct {
	SettlementRef string `json:"settlementRef" validate:"required,min=4,max=100"`
	Notes         string `json:"notes" validate:"omitempty,max=500"`
}

func ApproveWithdrawal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ApproveWithdrawalRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedWithdrawalApproval", reqData)
		return c.Next()
	}
}

type AddBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Reason string          `json:"reason" validate:"omitempty,max=255"`

	OperationKey string `json:"-"`
}

// AddBalance validates add balance request. The Idempotency-Key header is optional.
func AddBalance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddBalanceRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.OperationKey = c.Get("Idempotency-Key")
		if len(reqData.OperationKey) > 100 {
			return middleware.ValidationErrorResponse(c, map[string]string{"Idempotency-Key": "Must be at most 100 characters long!"})
		}
		c.Locals("validatedAddBalance", reqData)
		return c.Next()
	}
}

type UserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Blocked"`
}

func UserStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserStatusRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedUserStatus", reqData)
		return c.Next()
	}
}

// Settings validates every key of a settings update.
func Settings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := make(map[string]interface{})
		if err := c.BodyParser(&raw); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(raw) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"settings": "No settings provided!"})
		}

		// Numbers are accepted as JSON numbers or strings.
		reqData := make(map[string]string, len(raw))
		errors := make(map[string]string)
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				reqData[key] = strings.TrimSpace(v)
			case float64:
				reqData[key] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				errors[key] = "Must be a string or a number!"
				continue
			}
			if err := ledger.ValidateSetting(key, reqData[key]); err != nil {
				errors[key] = apperrors.AsAppError(err).Message
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedSettings", reqData)
		return c.Next()
	}
}

type ListQuery struct {
	Status  string `query:"status" validate:"omitempty,max=20"`
	Search  string `query:"search" validate:"omitempty,max=100"`
	UserID  string `query:"userId" validate:"omitempty,max=36"`
	AdminID string `query:"adminId" validate:"omitempty,max=50"`
	Type    string `query:"type" validate:"omitempty,max=50"`
	From    string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// List validates the filters shared by the admin listings. from and to are
// inclusive calendar days.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if reqData.Type != "" && !models.ValidTransactionType(models.TransactionType(reqData.Type)) {
			return middleware.ValidationErrorResponse(c, map[string]string{"type": "Unknown transaction type!"})
		}
		c.Locals("list", reqData)
		return c.Next()
	}
}

// Filter converts the query into a transaction filter in loc.
func (q *ListQuery) Filter(loc *time.Location) ledger.TransactionFilter {
	f := ledger.TransactionFilter{
		UserID: q.UserID,
		Type:   models.TransactionType(q.Type),
		Status: models.TransactionStatus(q.Status),
	}
	if from, err := time.ParseInLocation("2006-01-02", q.From, loc); err == nil {
		f.From = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", q.To, loc); err == nil {
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}
