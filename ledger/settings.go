package ledger

import (
	"context"
	"errors"
	"strconv"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settings is a typed snapshot of platform_settings, read once per operation.
type Settings struct {
	MinDeposit                decimal.Decimal `json:"minDeposit"`
	MinWithdrawal             decimal.Decimal `json:"minWithdrawal"`
	WithdrawalFeePercent      decimal.Decimal `json:"withdrawalFeePercent"`
	ReferralCommissionPercent decimal.Decimal `json:"referralCommissionPercent"`
	DailyTaskIncomePercent    decimal.Decimal `json:"dailyTaskIncomePercent"`
	PackageValidityDays       int             `json:"packageValidityDays"`
	TaskClicksNeeded          int             `json:"taskClicksNeeded"`
	ReferralBonus             decimal.Decimal `json:"referralBonus"`
	RegistrationBonus         decimal.Decimal `json:"registrationBonus"`
	KYCBonus                  decimal.Decimal `json:"kycBonus"`
	PlatformBalance           decimal.Decimal `json:"platformBalance"`
	UPIID                     string          `json:"upiId"`
	BankDetails               string          `json:"bankDetails"`
}

type settingKind int

const (
	kindMoney settingKind = iota
	kindPercent
	kindCount
	kindText
)

var settingKinds = map[string]settingKind{
	models.SettingMinDeposit:                kindMoney,
	models.SettingMinWithdrawal:             kindMoney,
	models.SettingWithdrawalFeePercent:      kindPercent,
	models.SettingReferralCommissionPercent: kindPercent,
	models.SettingDailyTaskIncomePercent:    kindPercent,
	models.SettingPackageValidityDays:       kindCount,
	models.SettingTaskClicksNeeded:          kindCount,
	models.SettingReferralBonus:             kindMoney,
	models.SettingRegistrationBonus:         kindMoney,
	models.SettingKYCBonus:                  kindMoney,
	models.SettingPlatformBalance:           kindMoney,
	models.SettingUPIID:                     kindText,
	models.SettingBankDetails:               kindText,
}

func defaultSettingValues() map[string]string {
	values := make(map[string]string, len(models.DefaultPlatformSettings))
	for _, s := range models.DefaultPlatformSettings {
		values[s.SettingKey] = s.SettingValue
	}
	return values
}

// ParseSettings builds a snapshot. Missing or malformed values fall back to defaults.
func ParseSettings(values map[string]string) Settings {
	defaults := defaultSettingValues()
	money := func(key string) decimal.Decimal {
		if v, ok := values[key]; ok {
			if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
				return d
			}
		}
		return decimal.RequireFromString(defaults[key])
	}
	count := func(key string) int {
		if v, ok := values[key]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
		n, _ := strconv.Atoi(defaults[key])
		return n
	}
	text := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return defaults[key]
	}

	return Settings{
		MinDeposit:                money(models.SettingMinDeposit),
		MinWithdrawal:             money(models.SettingMinWithdrawal),
		WithdrawalFeePercent:      money(models.SettingWithdrawalFeePercent),
		ReferralCommissionPercent: money(models.SettingReferralCommissionPercent),
		DailyTaskIncomePercent:    money(models.SettingDailyTaskIncomePercent),
		PackageValidityDays:       count(models.SettingPackageValidityDays),
		TaskClicksNeeded:          count(models.SettingTaskClicksNeeded),
		ReferralBonus:             money(models.SettingReferralBonus),
		RegistrationBonus:         money(models.SettingRegistrationBonus),
		KYCBonus:                  money(models.SettingKYCBonus),
		PlatformBalance:           money(models.SettingPlatformBalance),
		UPIID:                     text(models.SettingUPIID),
		BankDetails:               text(models.SettingBankDetails),
	}
}

func loadSettings(tx *gorm.DB) (Settings, error) {
	values, err := settingValues(tx)
	if err != nil {
		return Settings{}, err
	}
	return ParseSettings(values), nil
}

func settingValues(tx *gorm.DB) (map[string]string, error) {
	var rows []models.PlatformSetting
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.SettingKey] = r.SettingValue
	}
	return values, nil
}

// Settings returns the current snapshot.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	settings, err := loadSettings(s.db.WithContext(ctx))
	if err != nil {
		return Settings{}, apperrors.Internal(err, "Failed to load settings")
	}
	return settings, nil
}

// RawSettings returns every stored key with defaults filled in.
func (s *Service) RawSettings(ctx context.Context, p Principal) (map[string]string, error) {
	if err := p.canRead(); err != nil {
		return nil, err
	}
	values, err := settingValues(s.db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load settings")
	}
	for k, v := range defaultSettingValues() {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}
	return values, nil
}

// ValidateSetting checks one key/value pair before it is stored.
func ValidateSetting(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return apperrors.Validation("Unknown setting: " + key)
	}
	switch kind {
	case kindMoney, kindPercent:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return apperrors.Validation(key + " must be a non-negative number")
		}
		if kind == kindPercent && d.GreaterThan(decimal.NewFromInt(100)) {
			return apperrors.Validation(key + " must not exceed 100")
		}
	case kindCount:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return apperrors.Validation(key + " must be a positive whole number")
		}
	case kindText:
		if value == "" {
			return apperrors.Validation(key + " must not be empty")
		}
	}
	return nil
}

// UpdateSettings stores validated values. Only a Super Admin may change settings.
func (s *Service) UpdateSettings(ctx context.Context, p Principal, values map[string]string) error {
	if err := p.canConfigure(); err != nil {
		return err
	}
	if len(values) == 0 {
		return apperrors.Validation("No settings provided")
	}
	for k, v := range values {
		if err := ValidateSetting(k, v); err != nil {
			return err
		}
	}

	return s.inTx(ctx, "update_settings", map[string]any{"adminId": p.ID}, func(tx *gorm.DB) error {
		for k, v := range values {
			row := models.PlatformSetting{SettingKey: k, SettingValue: v}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return logActivity(tx, p, s.Now(), "Updated settings", map[string]any{"settings": values})
	})
}

// adjustPlatformBalance changes the pooled balance under a row lock.
func adjustPlatformBalance(tx *gorm.DB, delta decimal.Decimal) error {
	var row models.PlatformSetting
	err := forUpdate(tx).Where("setting_key = ?", models.SettingPlatformBalance).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.PlatformSetting{
			SettingKey:   models.SettingPlatformBalance,
			SettingValue: defaultSettingValues()[models.SettingPlatformBalance],
			Description:  "Platform pooled balance",
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	current, err := decimal.NewFromString(row.SettingValue)
	if err != nil {
		current = decimal.Zero
	}
	next := current.Add(delta).Round(2)
	return tx.Model(&row).Update("setting_value", next.StringFixed(2)).Error
}
