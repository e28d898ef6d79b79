package models

import "gorm.io/gorm"

type PlatformSetting struct {
	gorm.Model
	SettingKey   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"settingKey"`
	SettingValue string `gorm:"type:text;not null" json:"settingValue"`
	Description  string `gorm:"type:text" json:"description"`
}

func (PlatformSetting) TableName() string {
	return "platform_settings"
}

// Setting keys.
const (
	SettingMinDeposit                = "min_deposit"
	SettingMinWithdrawal             = "min_withdrawal"
	SettingWithdrawalFeePercent      = "withdrawal_fee_percent"
	SettingReferralCommissionPercent = "referral_commission_percent"
	SettingDailyTaskIncomePercent    = "daily_task_income_percent"
	SettingPackageValidityDays       = "package_validity_days"
	SettingTaskClicksNeeded          = "task_clicks_needed"
	SettingReferralBonus             = "referral_bonus"
	SettingRegistrationBonus         = "registration_bonus"
	SettingKYCBonus                  = "kyc_bonus"
	SettingPlatformBalance           = "platform_balance"
	SettingUPIID                     = "upi_id"
	SettingBankDetails               = "bank_details"
)

// DefaultPlatformSettings is seeded on first start and used when a key is missing.
var DefaultPlatformSettings = []PlatformSetting{
	{SettingKey: SettingMinDeposit, SettingValue: "100", Description: "Minimum deposit amount"},
	{SettingKey: SettingMinWithdrawal, SettingValue: "200", Description: "Minimum withdrawal amount"},
	{SettingKey: SettingWithdrawalFeePercent, SettingValue: "5", Description: "Withdrawal fee percent"},
	{SettingKey: SettingReferralCommissionPercent, SettingValue: "10", Description: "Referral commission percent on package activation"},
	{SettingKey: SettingDailyTaskIncomePercent, SettingValue: "5", Description: "Daily task income percent of fund"},
	{SettingKey: SettingPackageValidityDays, SettingValue: "30", Description: "Package validity in days"},
	{SettingKey: SettingTaskClicksNeeded, SettingValue: "15", Description: "Clicks needed per day"},
	{SettingKey: SettingReferralBonus, SettingValue: "10", Description: "Flat sponsor bonus on registration"},
	{SettingKey: SettingRegistrationBonus, SettingValue: "50", Description: "Welcome bonus on registration"},
	{SettingKey: SettingKYCBonus, SettingValue: "0", Description: "Bonus credited on KYC approval"},
	{SettingKey: SettingPlatformBalance, SettingValue: "10000", Description: "Platform pooled balance"},
	{SettingKey: SettingUPIID, SettingValue: "capitalrise@ybl", Description: "UPI id shown for deposits"},
	{SettingKey: SettingBankDetails, SettingValue: "State Bank of India\nAccount: 123456789012\nIFSC: SBIN0001234", Description: "Bank details shown for deposits"},
}
