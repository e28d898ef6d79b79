package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KYCRequest is the single identity submission a user may make.
type KYCRequest struct {
	gorm.Model
	UserID       string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	DOB          datatypes.Date `json:"dob"`
	AadharNumber string         `gorm:"type:varchar(12);not null" json:"-"`
	PanNumber    string         `gorm:"type:varchar(10);not null" json:"-"`
	BankAccount  string         `gorm:"type:varchar(50);not null" json:"bankAccount"`
	IFSCCode     string         `gorm:"type:varchar(20);not null" json:"ifscCode"`
	AadharFront  string         `gorm:"default:''" json:"aadharFront"`
	AadharBack   string         `gorm:"default:''" json:"aadharBack"`
	PanCard      string         `gorm:"default:''" json:"panCard"`
	Status       KYCStatus      `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	ReviewedBy   string         `gorm:"type:varchar(50)" json:"reviewedBy"`
	ReviewedAt   *time.Time     `json:"reviewedAt"`
	Notes        string         `gorm:"type:text" json:"notes"`
	DeviceInfo   string         `gorm:"type:text" json:"-"`

	// Result of the PAN-Aadhaar link lookup, nil until an admin runs it.
	PanAadhaarLinked *bool `json:"panAadhaarLinked"`
}

func (KYCRequest) TableName() string {
	return "kyc_requests"
}

// MaskedAadhar keeps only the last four digits.
func (k KYCRequest) MaskedAadhar() string {
	return mask(k.AadharNumber, 4)
}

// MaskedPan keeps only the last four characters.
func (k KYCRequest) MaskedPan() string {
	return mask(k.PanNumber, 4)
}

func mask(s string, keep int) string {
	if len(s) <= keep {
		return s
	}
	out := make([]byte, len(s))
	for i := range out {
		if i < len(s)-keep {
			out[i] = 'X'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}
