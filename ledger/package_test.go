package ledger

import (
	"testing"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (h *harness) activate(t *testing.T, userID, name, amount string) *Activation {
	t.Helper()
	act, err := h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: userID, PackageName: name, Amount: dec(amount)})
	require.NoError(t, err)
	return act
}

func TestActivatePackageMovesBalanceIntoFund(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "1000")

	act := h.activate(t, u.UserID, "Starter", "1000")

	assertMoney(t, "50", act.Balance)
	assertMoney(t, "1000", act.Fund)
	assertMoney(t, "50", act.Subscription.DailyIncome)
	assert.Equal(t, models.SubscriptionActive, act.Subscription.Status)
	assert.True(t, act.Subscription.ExpiryDate.Equal(h.clock.Now().AddDate(0, 0, 30)))
	assert.Equal(t, models.TransactionTypePackageActivation, act.Transaction.Type)
	assertMoney(t, "1050", act.Transaction.BalanceBefore)
	assertMoney(t, "50", act.Transaction.BalanceAfter)

	got := h.user(t, u.UserID)
	assert.Equal(t, "Starter", got.Package)
	assertMoney(t, "50", got.Balance)
	assertMoney(t, "1000", got.Fund)
	assert.Contains(t, h.notifier.subjects(), "Package activated")
}

func TestActivatePackageRejectsSecondLiveSubscription(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "6000")
	h.activate(t, u.UserID, "Starter", "1000")

	_, err := h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Silver", Amount: dec("5000")})
	assert.ErrorIs(t, err, apperrors.ErrPackageAlreadyActive)
	requireKind(t, err, apperrors.KindConflict)
	assertMoney(t, "5050", h.user(t, u.UserID).Balance)
	assertMoney(t, "1000", h.user(t, u.UserID).Fund)
}

func TestActivatePackageCheckOrder(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")

	// Balance is checked before the catalog.
	_, err := h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Diamond", Amount: dec("1000")})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
	requireKind(t, err, apperrors.KindInsufficientFunds)

	h.fund(t, u.UserID, "1000")
	_, err = h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Diamond", Amount: dec("1000")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPackage)

	_, err = h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Starter", Amount: dec("900")})
	requireKind(t, err, apperrors.KindValidation)

	_, err = h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: "USER00000000", PackageName: "Starter", Amount: dec("1000")})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Starter", Amount: dec("0")})
	requireKind(t, err, apperrors.KindValidation)

	assertMoney(t, "1050", h.user(t, u.UserID).Balance)
	assert.Zero(t, h.countTransactions(t, u.UserID, models.TransactionTypePackageActivation))
}

func TestActivatePackageRefusesBlockedUser(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "1000")
	_, err := h.svc.UpdateUserStatus(h.ctx, admin, u.UserID, models.UserStatusBlocked)
	require.NoError(t, err)

	_, err = h.svc.ActivatePackage(h.ctx, ActivateInput{UserID: u.UserID, PackageName: "Starter", Amount: dec("1000")})
	assert.ErrorIs(t, err, apperrors.ErrAccountBlocked)
}

func TestActivatePackageAfterExpiry(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "2000")
	first := h.activate(t, u.UserID, "Starter", "1000")

	h.clock.Advance(31 * 24 * time.Hour)
	second := h.activate(t, u.UserID, "Starter", "1000")

	assertMoney(t, "2000", second.Fund)
	assertMoney(t, "50", second.Balance)

	var old models.UserPackage
	require.NoError(t, h.db.First(&old, first.Subscription.ID).Error)
	assert.Equal(t, models.SubscriptionExpired, old.Status)
	assert.Nil(t, old.ActiveKey)

	subs, err := h.svc.Subscriptions(h.ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second.Subscription.ID, subs[0].ID)
}

func TestSecondActiveSubscriptionViolatesActiveKey(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "1000")
	act := h.activate(t, u.UserID, "Starter", "1000")

	key := u.UserID
	now := h.clock.Now()
	dup := models.UserPackage{
		UserID:         u.UserID,
		PackageID:      act.Subscription.PackageID,
		PackageName:    act.Subscription.PackageName,
		Amount:         act.Subscription.Amount,
		ActivationDate: now,
		ExpiryDate:     now.Add(30 * 24 * time.Hour),
		Status:         models.SubscriptionActive,
		DailyIncome:    act.Subscription.DailyIncome,
		ActiveKey:      &key,
	}
	err := h.db.Create(&dup).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, onDuplicate(err, apperrors.ErrPackageAlreadyActive), apperrors.ErrPackageAlreadyActive)

	var active int64
	require.NoError(t, h.db.Model(&models.UserPackage{}).Where("user_id = ? AND status = ?", u.UserID, models.SubscriptionActive).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestActivatePackagePaysSponsorCommission(t *testing.T) {
	h := newHarness(t)
	sponsor := h.register(t, "sponsor@example.com", "")
	u := h.register(t, "investor@example.com", sponsor.UserID)
	h.fund(t, u.UserID, "5000")

	h.activate(t, u.UserID, "Silver", "5000")

	got := h.user(t, sponsor.UserID)
	assertMoney(t, "560", got.Balance)
	assertMoney(t, "510", got.ReferralIncome)
	assertMoney(t, "510", got.TotalIncome)
	assert.Equal(t, 1, got.Referrals)

	var income models.ReferralIncome
	require.NoError(t, h.db.Where("sponsor_id = ? AND package_name = ?", sponsor.UserID, "Silver").First(&income).Error)
	assertMoney(t, "500", income.Amount)
	assertMoney(t, "10", income.CommissionPercent)
}

func TestActivatePackageSkipsBlockedSponsor(t *testing.T) {
	h := newHarness(t)
	sponsor := h.register(t, "sponsor@example.com", "")
	u := h.register(t, "investor@example.com", sponsor.UserID)
	h.fund(t, u.UserID, "1000")
	_, err := h.svc.UpdateUserStatus(h.ctx, admin, sponsor.UserID, models.UserStatusBlocked)
	require.NoError(t, err)

	h.activate(t, u.UserID, "Starter", "1000")

	assertMoney(t, "60", h.user(t, sponsor.UserID).Balance)
}

func TestExpireLapsedAndReminders(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "1000")
	act := h.activate(t, u.UserID, "Starter", "1000")

	soon, err := h.svc.ExpiringSoon(h.ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, soon)

	h.clock.Advance(28 * 24 * time.Hour)
	soon, err = h.svc.ExpiringSoon(h.ctx, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	require.NoError(t, h.svc.MarkReminderSent(h.ctx, soon[0].ID))
	soon, err = h.svc.ExpiringSoon(h.ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, soon)

	expired, err := h.svc.ExpireLapsed(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	h.clock.Advance(3 * 24 * time.Hour)
	expired, err = h.svc.ExpireLapsed(h.ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, act.Subscription.ID, expired[0].ID)

	got := h.user(t, u.UserID)
	assert.Equal(t, models.NoPackage, got.Package)
	assertMoney(t, "1000", got.Fund)
}

func TestPackagesCatalogOrderedByAmount(t *testing.T) {
	h := newHarness(t)
	packages, err := h.svc.Packages(h.ctx)
	require.NoError(t, err)
	require.Len(t, packages, 4)
	assert.Equal(t, "Starter", packages[0].Name)
	assert.Equal(t, "Platinum", packages[3].Name)
}

func TestNotifyExpiry(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "investor@example.com", "")
	h.fund(t, u.UserID, "1000")
	act := h.activate(t, u.UserID, "Starter", "1000")

	require.NoError(t, h.svc.NotifyExpiry(h.ctx, act.Subscription, false))
	require.NoError(t, h.svc.NotifyExpiry(h.ctx, act.Subscription, true))
	subjects := h.notifier.subjects()
	assert.Contains(t, subjects, "Your Starter package is expiring soon")
	assert.Contains(t, subjects, "Your Starter package has expired")

	orphan := act.Subscription
	orphan.UserID = "USERMISSING"
	assert.ErrorIs(t, h.svc.NotifyExpiry(h.ctx, orphan, true), apperrors.ErrUserNotFound)
}
