package ledger

import (
	"testing"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) investor(t *testing.T) *models.User {
	t.Helper()
	u := h.register(t, "clicker@example.com", "")
	h.fund(t, u.UserID, "1000")
	h.activate(t, u.UserID, "Starter", "1000")
	return u
}

func TestClickCreditSumsToDailyIncome(t *testing.T) {
	for _, daily := range []string{"50", "0.10", "333.33", "1.07", "12.345"} {
		total := decimal.Zero
		for n := 1; n <= 15; n++ {
			credit := clickCredit(dec(daily), n, 15)
			assert.False(t, credit.IsNegative(), daily)
			total = total.Add(credit)
		}
		assertMoney(t, round2(dec(daily)).String(), total)
	}
	assertMoney(t, "3.33", clickCredit(dec("50"), 1, 15))
	assertMoney(t, "3.34", clickCredit(dec("50"), 2, 15))
}

func TestCompleteClickFullDay(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)

	var last *ClickResult
	for i := 1; i <= 15; i++ {
		res, err := h.svc.CompleteClick(h.ctx, u.UserID, "test-device")
		require.NoError(t, err)
		assert.Equal(t, i, res.ClickNumber)
		assert.Equal(t, 15-i, res.RemainingClicks)
		last = res
	}
	assert.True(t, last.IsCompleted)
	assertMoney(t, "50", last.TodayTotalEarned)

	got := h.user(t, u.UserID)
	assertMoney(t, "100", got.Balance)
	assertMoney(t, "50", got.TodayIncome)
	assertMoney(t, "50", got.TotalIncome)
	assert.Equal(t, int64(15), h.countTransactions(t, u.UserID, models.TransactionTypeTaskIncome))

	_, err := h.svc.CompleteClick(h.ctx, u.UserID, "test-device")
	assert.ErrorIs(t, err, apperrors.ErrQuotaReached)
	assertMoney(t, "100", h.user(t, u.UserID).Balance)

	var task models.DailyTask
	require.NoError(t, h.db.Where("user_id = ?", u.UserID).First(&task).Error)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.True(t, task.IncomeCredited)

	var sub models.UserPackage
	require.NoError(t, h.db.Where("user_id = ?", u.UserID).First(&sub).Error)
	assertMoney(t, "50", sub.TotalEarned)

	history, total, err := h.svc.TaskHistory(h.ctx, u.UserID, Page{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, history, 5)
}

func TestCompleteClickWithoutPackage(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "idle@example.com", "")
	_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	assert.ErrorIs(t, err, apperrors.ErrNoActivePackage)
}

func TestCompleteClickExpiresLapsedPackage(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)
	h.clock.Advance(31 * 24 * time.Hour)

	_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	assert.ErrorIs(t, err, apperrors.ErrPackageExpired)

	got := h.user(t, u.UserID)
	assert.Equal(t, models.NoPackage, got.Package)
	assertMoney(t, "50", got.Balance)

	var sub models.UserPackage
	require.NoError(t, h.db.Where("user_id = ?", u.UserID).First(&sub).Error)
	assert.Equal(t, models.SubscriptionExpired, sub.Status)

	_, err = h.svc.CompleteClick(h.ctx, u.UserID, "")
	assert.ErrorIs(t, err, apperrors.ErrNoActivePackage)
}

func TestCompleteClickNextDayStartsOver(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)
	for i := 0; i < 15; i++ {
		_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
		require.NoError(t, err)
	}

	h.clock.Advance(24 * time.Hour)
	res, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClickNumber)
	assertMoney(t, "3.33", res.AmountEarned)

	var days int64
	h.db.Model(&models.DailyTask{}).Where("user_id = ?", u.UserID).Count(&days)
	assert.Equal(t, int64(2), days)
}

func TestCompleteClickUsesCurrentRateAndSnapshotQuota(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)
	_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	require.NoError(t, err)

	h.setSetting(t, models.SettingDailyTaskIncomePercent, "10")
	h.setSetting(t, models.SettingTaskClicksNeeded, "5")

	res, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	require.NoError(t, err)
	assert.Equal(t, 15, res.TotalClicksNeeded)
	// 100 a day: round2(200/15) - round2(100/15)
	assertMoney(t, "6.66", res.AmountEarned)
}

func TestTodayProgress(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)

	progress, err := h.svc.TodayProgress(h.ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.ClicksCompleted)
	assert.Equal(t, "2026-10-15", progress.TaskDate)
	assertMoney(t, "50", progress.DailyIncome)
	assertMoney(t, "3.33", progress.PerClickIncome)

	for i := 0; i < 3; i++ {
		_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
		require.NoError(t, err)
	}
	progress, err = h.svc.TodayProgress(h.ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.ClicksCompleted)
	assertMoney(t, "10", progress.TodayIncome)
	assert.NotNil(t, progress.LastClickTime)
	assert.False(t, progress.IsCompleted)
}

func TestResetTodayIncome(t *testing.T) {
	h := newHarness(t)
	u := h.investor(t)
	_, err := h.svc.CompleteClick(h.ctx, u.UserID, "")
	require.NoError(t, err)

	n, err := h.svc.ResetTodayIncome(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got := h.user(t, u.UserID)
	assertMoney(t, "0", got.TodayIncome)
	assertMoney(t, "3.33", got.TotalIncome)
}
