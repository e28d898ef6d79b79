package database

import (
	"capitalrise/config"
	"capitalrise/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPackages is the catalog created when the packages table is empty.
func DefaultPackages() []models.Package {
	tier := func(name string, amount int64, features string) models.Package {
		return models.Package{
			Name:                      name,
			Amount:                    decimal.NewFromInt(amount),
			DailyIncomePercent:        decimal.NewFromInt(5),
			ReferralCommissionPercent: decimal.NewFromInt(10),
			ValidityDays:              30,
			Features:                  features,
			Status:                    models.PackageStatusActive,
		}
	}
	return []models.Package{
		tier("Starter", 1000, "Daily task income,Referral commission"),
		tier("Silver", 5000, "Daily task income,Referral commission,Priority withdrawals"),
		tier("Gold", 10000, "Daily task income,Referral commission,Priority withdrawals,Dedicated support"),
		tier("Platinum", 25000, "Daily task income,Referral commission,Priority withdrawals,Dedicated support,Premium insights"),
	}
}

// Seed inserts default settings, the package catalog and the first admin.
// Existing rows are never overwritten.
func Seed(db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		settings := make([]models.PlatformSetting, len(models.DefaultPlatformSettings))
		copy(settings, models.DefaultPlatformSettings)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Package{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			packages := DefaultPackages()
			if err := tx.Create(&packages).Error; err != nil {
				return err
			}
			log.WithField("count", len(packages)).Info("Seeded package catalog")
		}

		if cfg.FirstAdminPassword == "" {
			return nil
		}
		if err := tx.Model(&models.Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.FirstAdminPassword), cfg.SaltRound)
		if err != nil {
			return err
		}
		admin := models.Admin{
			AdminID:  cfg.FirstAdminID,
			Name:     cfg.FirstAdminName,
			Email:    cfg.FirstAdminEmail,
			Password: string(hash),
			Role:     models.AdminRoleSuperAdmin,
			Status:   models.AdminStatusActive,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		log.WithField("adminId", admin.AdminID).Info("Seeded first admin")
		return nil
	})
}
