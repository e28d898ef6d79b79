package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "Active"
	SubscriptionExpired SubscriptionStatus = "Expired"
)

// UserPackage is one subscription instance with a snapshot of the package.
type UserPackage struct {
	gorm.Model
	UserID         string             `gorm:"type:varchar(36);not null;index" json:"userId"`
	PackageID      uint               `gorm:"not null" json:"packageId"`
	PackageName    string             `gorm:"type:varchar(50);not null" json:"packageName"`
	Amount         decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	ActivationDate time.Time          `gorm:"not null" json:"activationDate"`
	ExpiryDate     time.Time          `gorm:"not null" json:"expiryDate"`
	Status         SubscriptionStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	DailyIncome    decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"dailyIncome"`
	TotalEarned    decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"totalEarned"`
	ReminderSent   bool               `gorm:"default:false" json:"reminderSent"`

	// Holds the user id while Active and NULL once Expired. The unique index
	// allows only one Active subscription per user.
	ActiveKey *string `gorm:"type:varchar(36);uniqueIndex" json:"-"`
}

func (UserPackage) TableName() string {
	return "user_packages"
}

// LiveAt reports whether the subscription is Active and not yet past its expiry.
func (p UserPackage) LiveAt(now time.Time) bool {
	return p.Status == SubscriptionActive && p.ExpiryDate.After(now)
}
