package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestStatus is the state of a deposit or withdrawal request.
// Pending moves to Approved or Rejected once and never again.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

type DepositRequest struct {
	gorm.Model
	RequestID        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"requestId"`
	UserID           string          `gorm:"type:varchar(36);not null;index" json:"userId"`
	Name             string          `gorm:"type:varchar(100);not null" json:"name"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method           string          `gorm:"type:varchar(50);not null;default:'UPI'" json:"method"`
	UPITransactionID string          `gorm:"type:varchar(100);index" json:"upiTransactionId"`
	UserUPIID        string          `gorm:"type:varchar(100)" json:"userUpiId"`
	Status           RequestStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Notes            string          `gorm:"type:text" json:"notes"`
	ApprovedBy       string          `gorm:"type:varchar(50)" json:"approvedBy"`
	ApprovedAt       *time.Time      `json:"approvedAt"`
	DeviceInfo       string          `gorm:"type:text" json:"-"`

	// OpenReference holds the UPI reference while the deposit is Pending or
	// Approved and is cleared on rejection.
	OpenReference *string `gorm:"type:varchar(100);uniqueIndex" json:"-"`
}

func (DepositRequest) TableName() string {
	return "deposit_requests"
}

type WithdrawalRequest struct {
	gorm.Model
	RequestID      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"requestId"`
	UserID         string          `gorm:"type:varchar(36);not null;index" json:"userId"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method         string          `gorm:"type:varchar(50);not null" json:"method"`
	AccountDetails string          `gorm:"type:text;not null" json:"accountDetails"`
	Fee            decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"fee"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"netAmount"`
	Status         RequestStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	SettlementRef  string          `gorm:"type:varchar(100)" json:"settlementRef"`
	ProcessedAt    *time.Time      `json:"processedAt"`
	ApprovedBy     string          `gorm:"type:varchar(50)" json:"approvedBy"`
	Notes          string          `gorm:"type:text" json:"notes"`
	DeviceInfo     string          `gorm:"type:text" json:"-"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
