package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType defines the kind of balance-affecting event
type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "Deposit"
	TransactionTypeWithdrawal         TransactionType = "Withdrawal"
	TransactionTypeWithdrawalRefund   TransactionType = "Withdrawal Refund"
	TransactionTypeTaskIncome         TransactionType = "Task Income"
	TransactionTypeReferralCommission TransactionType = "Referral Commission"
	TransactionTypePackageActivation  TransactionType = "Package Activation"
	TransactionTypeRegistrationBonus  TransactionType = "Registration Bonus"
	TransactionTypeKYCBonus           TransactionType = "KYC Bonus"
	TransactionTypeAdminFundAdded     TransactionType = "Admin Fund Added"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusApproved  TransactionStatus = "Approved"
	TransactionStatusRejected  TransactionStatus = "Rejected"
)

// Transaction is the append-only audit trail of every balance-affecting event.
// Rows are only ever inserted, apart from the status of a Pending row moving to
// Approved or Rejected when its workflow item is decided.
type Transaction struct {
	gorm.Model
	TransactionID string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"transactionId"`
	UserID        string            `gorm:"type:varchar(36);not null;index" json:"userId"`
	Type          TransactionType   `gorm:"type:varchar(50);not null;index" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"balanceBefore"`
	BalanceAfter  decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"balanceAfter"`
	Status        TransactionStatus `gorm:"type:varchar(20);not null" json:"status"`
	Description   string            `gorm:"type:text" json:"description"`

	// Links back to a deposit or withdrawal request_id.
	ReferenceID *string `gorm:"type:varchar(100);index" json:"referenceId"`

	// Caller supplied operation key; unique so a replayed call cannot post twice.
	IdempotencyKey *string `gorm:"type:varchar(100);uniqueIndex" json:"-"`

	AdminID    string `gorm:"type:varchar(50)" json:"adminId,omitempty"`
	DeviceInfo string `gorm:"type:text" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

var transactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypeWithdrawalRefund,
	TransactionTypeTaskIncome,
	TransactionTypeReferralCommission,
	TransactionTypePackageActivation,
	TransactionTypeRegistrationBonus,
	TransactionTypeKYCBonus,
	TransactionTypeAdminFundAdded,
}

// ValidTransactionType reports whether t is one of the known types.
func ValidTransactionType(t TransactionType) bool {
	for _, known := range transactionTypes {
		if t == known {
			return true
		}
	}
	return false
}
