package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "Active"
	PackageStatusInactive PackageStatus = "Inactive"
)

// Package is an investment tier of the catalog.
type Package struct {
	gorm.Model
	Name                      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Amount                    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DailyIncomePercent        decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"dailyIncomePercent"`
	ReferralCommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"referralCommissionPercent"`
	ValidityDays              int             `gorm:"not null" json:"validityDays"`
	Features                  string          `gorm:"type:text" json:"features"`
	Status                    PackageStatus   `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
}

func (Package) TableName() string {
	return "packages"
}
