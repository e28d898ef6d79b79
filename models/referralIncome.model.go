package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const ReferralStatusPaid = "Paid"

// ReferralIncome is the audit row of one sponsor commission payout.
type ReferralIncome struct {
	gorm.Model
	SponsorID         string          `gorm:"type:varchar(36);not null;index" json:"sponsorId"`
	ReferralID        string          `gorm:"type:varchar(36);not null;index" json:"referralId"`
	ReferralName      string          `gorm:"type:varchar(100);not null" json:"referralName"`
	PackageName       string          `gorm:"type:varchar(50)" json:"packageName"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commissionPercent"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status            string          `gorm:"type:varchar(20);default:'Paid'" json:"status"`
}

func (ReferralIncome) TableName() string {
	return "referral_income"
}
