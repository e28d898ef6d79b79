package database

import (
	"testing"

	"capitalrise/config"
	"capitalrise/logger"
	"capitalrise/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	dialector, err := Dialector("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db, err := gorm.Open(dialector, GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector("oracle", "")
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openMemory(t)
	cfg := &config.Config{
		SaltRound:          bcrypt.MinCost,
		FirstAdminID:       "ADMIN001",
		FirstAdminName:     "Root",
		FirstAdminEmail:    "root@example.com",
		FirstAdminPassword: "secret123",
	}

	require.NoError(t, Seed(db, cfg, logger.Discard()))
	require.NoError(t, db.Model(&models.PlatformSetting{}).
		Where("setting_key = ?", models.SettingMinDeposit).
		Update("setting_value", "250").Error)
	require.NoError(t, Seed(db, cfg, logger.Discard()))

	var settings int64
	db.Model(&models.PlatformSetting{}).Count(&settings)
	assert.Equal(t, int64(len(models.DefaultPlatformSettings)), settings)

	var minDeposit models.PlatformSetting
	require.NoError(t, db.Where("setting_key = ?", models.SettingMinDeposit).First(&minDeposit).Error)
	assert.Equal(t, "250", minDeposit.SettingValue)

	var packages []models.Package
	require.NoError(t, db.Order("amount").Find(&packages).Error)
	require.Len(t, packages, 4)
	assert.Equal(t, "Starter", packages[0].Name)
	assert.Equal(t, "25000", packages[3].Amount.String())

	var admins []models.Admin
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, models.AdminRoleSuperAdmin, admins[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("secret123")))
}

func TestSeedSkipsAdminWithoutPassword(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Seed(db, &config.Config{}, logger.Discard()))

	var admins int64
	db.Model(&models.Admin{}).Count(&admins)
	assert.Zero(t, admins)
}
