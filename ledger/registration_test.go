package ledger

import (
	"testing"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterWithDefaultSponsor(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "New@Example.com", "")

	assert.Regexp(t, `^USER[0-9A-F]{8}$`, u.UserID)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "CAPITAL01", u.SponsorID)
	assert.Equal(t, models.NoPackage, u.Package)
	assert.Equal(t, models.KYCStatusPending, u.KYCStatus)
	assertMoney(t, "50", h.user(t, u.UserID).Balance)
	assert.Equal(t, int64(1), h.countTransactions(t, u.UserID, models.TransactionTypeRegistrationBonus))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h.user(t, u.UserID).Password), []byte("secret123")))

	var commissions int64
	h.db.Model(&models.ReferralIncome{}).Count(&commissions)
	assert.Zero(t, commissions)
	assert.Contains(t, h.notifier.subjects(), "Welcome to CapitalRise")
}

func TestRegisterPaysSponsorFlatBonus(t *testing.T) {
	h := newHarness(t)
	sponsor := h.register(t, "sponsor@example.com", "")
	referral := h.register(t, "friend@example.com", sponsor.UserID)

	got := h.user(t, sponsor.UserID)
	assertMoney(t, "60", got.Balance)
	assertMoney(t, "10", got.ReferralIncome)
	assertMoney(t, "10", got.TotalIncome)
	assert.Equal(t, 1, got.Referrals)

	var income models.ReferralIncome
	require.NoError(t, h.db.Where("sponsor_id = ?", sponsor.UserID).First(&income).Error)
	assertMoney(t, "0", income.CommissionPercent)
	assert.Equal(t, referral.UserID, income.ReferralID)
	assert.Equal(t, models.NoPackage, income.PackageName)
	assertMoney(t, "10", income.Amount)

	var txn models.Transaction
	require.NoError(t, h.db.Where("user_id = ? AND type = ?", sponsor.UserID, models.TransactionTypeReferralCommission).First(&txn).Error)
	assertMoney(t, "10", txn.Amount)
	require.NotNil(t, txn.ReferenceID)
	assert.Equal(t, referral.UserID, *txn.ReferenceID)
}

func TestRegisterWithUnknownSponsorCreatesNothing(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Register(h.ctx, RegisterInput{
		Name: "Ghost", Email: "ghost@example.com", Mobile: "9876543210", Password: "secret123", SponsorID: "USERDEADBEEF",
	})
	assert.ErrorIs(t, err, apperrors.ErrSponsorNotFound)
	requireKind(t, err, apperrors.KindNotFound)

	var users int64
	h.db.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)
	var txns int64
	h.db.Model(&models.Transaction{}).Count(&txns)
	assert.Zero(t, txns)
}

func TestRegisterWithBlockedSponsorFails(t *testing.T) {
	h := newHarness(t)
	sponsor := h.register(t, "sponsor@example.com", "")
	_, err := h.svc.UpdateUserStatus(h.ctx, admin, sponsor.UserID, models.UserStatusBlocked)
	require.NoError(t, err)

	_, err = h.svc.Register(h.ctx, RegisterInput{
		Name: "Late", Email: "late@example.com", Mobile: "9876543210", Password: "secret123", SponsorID: sponsor.UserID,
	})
	assert.ErrorIs(t, err, apperrors.ErrSponsorNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "dup@example.com", "")
	_, err := h.svc.Register(h.ctx, RegisterInput{
		Name: "Again", Email: "DUP@example.com", Mobile: "9876543210", Password: "secret123",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	requireKind(t, err, apperrors.KindConflict)
}

func TestRegistrationBonusFollowsSetting(t *testing.T) {
	h := newHarness(t)
	h.setSetting(t, models.SettingRegistrationBonus, "0")
	h.setSetting(t, models.SettingReferralBonus, "25")

	sponsor := h.register(t, "sponsor@example.com", "")
	assertMoney(t, "0", h.user(t, sponsor.UserID).Balance)
	assert.Zero(t, h.countTransactions(t, sponsor.UserID, models.TransactionTypeRegistrationBonus))

	h.register(t, "friend@example.com", sponsor.UserID)
	assertMoney(t, "25", h.user(t, sponsor.UserID).Balance)
}
