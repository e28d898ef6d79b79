package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserStatus controls whether a user may authenticate and transact.
type UserStatus string

const (
	UserStatusActive  UserStatus = "Active"
	UserStatusBlocked UserStatus = "Blocked"
)

// KYCStatus is shared by users and KYC requests.
type KYCStatus string

const (
	KYCStatusPending     KYCStatus = "Pending"
	KYCStatusUnderReview KYCStatus = "Under Review"
	KYCStatusApproved    KYCStatus = "Approved"
	KYCStatusRejected    KYCStatus = "Rejected"
)

// NoPackage is the package name of a user without a live subscription.
const NoPackage = "None"

type User struct {
	gorm.Model
	UserID         string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	Email          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Mobile         string          `gorm:"type:varchar(15);not null" json:"mobile"`
	Password       string          `gorm:"not null" json:"-"`
	SponsorID      string          `gorm:"type:varchar(36);index" json:"sponsorId"`
	JoinDate       time.Time       `json:"joinDate"`
	Balance        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Fund           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"fund"`
	TotalIncome    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"totalIncome"`
	TodayIncome    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"todayIncome"`
	ReferralIncome decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"referralIncome"`
	Package        string          `gorm:"type:varchar(50);not null;default:'None'" json:"package"`
	KYCStatus      KYCStatus       `gorm:"type:varchar(20);not null;default:'Pending'" json:"kycStatus"`
	Status         UserStatus      `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	Referrals      int             `gorm:"not null;default:0" json:"referrals"`
	LastLogin      *time.Time      `json:"lastLogin"`
	CreatedBy      string          `gorm:"type:varchar(50)" json:"createdBy"`
	IPAddress      string          `gorm:"type:varchar(50)" json:"-"`
	DeviceInfo     string          `gorm:"type:text" json:"-"`
}

func (User) TableName() string {
	return "users"
}
