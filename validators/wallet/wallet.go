package walletValidator

import (
	"strings"

	"capitalrise/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	UPITransactionID string          `json:"upiTransactionId" validate:"required,min=6,max=100"`
	UserUPIID        string          `json:"userUpiId" validate:"omitempty,upi"`
}

// Deposit validates user deposit request
func Deposit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DepositRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.UPITransactionID = strings.TrimSpace(reqData.UPITransactionID)
		c.Locals("validatedDeposit", reqData)
		return c.Next()
	}
}

type WithdrawRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Method         string          `json:"method" validate:"required,oneof=UPI Bank"`
	AccountDetails string          `json:"accountDetails" validate:"required,max=500"`
}

// Withdraw validates user withdrawal request
func Withdraw() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(WithdrawRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedWithdraw", reqData)
		return c.Next()
	}
}
