package ledger

import (
	"testing"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	a := h.verifiedUser(t, "a@example.com")
	b := h.register(t, "b@example.com", a.UserID)
	_, err := h.svc.SubmitKYC(h.ctx, validKYC(b.UserID))
	require.NoError(t, err)

	approved := h.deposit(t, b.UserID, "500", "UTR1")
	_, err = h.svc.ApproveDeposit(h.ctx, admin, approved.RequestID, "")
	require.NoError(t, err)
	h.deposit(t, b.UserID, "300", "UTR2")
	h.fund(t, a.UserID, "1000")
	h.activate(t, a.UserID, "Starter", "1000")
	h.withdraw(t, a.UserID, "400")

	d, err := h.svc.Dashboard(h.ctx, support)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalUsers)
	assert.Equal(t, int64(2), d.TodayUsers)
	assert.Equal(t, int64(2), d.ActiveUsers)
	assertMoney(t, "500", d.TotalDeposits)
	assertMoney(t, "500", d.TodayDeposits)
	assert.Equal(t, int64(1), d.PendingDeposits)
	assertMoney(t, "300", d.PendingDepositsAmount)
	assertMoney(t, "0", d.TotalWithdrawals)
	assert.Equal(t, int64(1), d.PendingWithdrawals)
	assertMoney(t, "400", d.PendingWithdrawalsAmount)
	assertMoney(t, "1000", d.TotalInvestments)
	assert.Equal(t, int64(1), d.PendingKYC)
	assert.Len(t, d.RecentTransactions, 9)
	assertMoney(t, "10500", d.PlatformBalance)

	_, err = h.svc.Dashboard(h.ctx, Principal{ID: a.UserID, Role: RoleUser})
	requireKind(t, err, apperrors.KindForbidden)
}

func TestUserOverview(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "me@example.com", "")
	req := h.deposit(t, u.UserID, "1000", "UTR1")
	_, err := h.svc.ApproveDeposit(h.ctx, admin, req.RequestID, "")
	require.NoError(t, err)
	h.activate(t, u.UserID, "Starter", "1000")
	_, err = h.svc.CompleteClick(h.ctx, u.UserID, "")
	require.NoError(t, err)

	o, err := h.svc.UserOverview(h.ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, o.User.UserID)
	assertMoney(t, "1000", o.Stats.TotalDeposits)
	assertMoney(t, "3.33", o.Stats.TotalTaskIncome)
	assert.Equal(t, 1, o.Stats.TodayClicks)
	assert.Equal(t, 15, o.Stats.TotalClicksNeeded)
	assert.Equal(t, "Starter", o.Stats.ActivePackage)
	require.NotNil(t, o.Stats.PackageExpiry)
	assert.Len(t, o.ActivePackages, 1)
	assert.Len(t, o.RecentTransactions, 4)

	_, err = h.svc.UserOverview(h.ctx, "USER00000000")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestTransactionListings(t *testing.T) {
	h := newHarness(t)
	a := h.register(t, "a@example.com", "")
	b := h.register(t, "b@example.com", "")
	h.fund(t, a.UserID, "100")
	h.fund(t, a.UserID, "200")
	h.deposit(t, b.UserID, "500", "UTR1")

	rows, total, err := h.svc.Transactions(h.ctx, a.UserID, models.TransactionTypeAdminFundAdded, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assertMoney(t, "200", rows[0].Amount)

	_, total, err = h.svc.Transactions(h.ctx, a.UserID, "", Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	rows, total, err = h.svc.TransactionReport(h.ctx, support, TransactionFilter{Status: models.TransactionStatusPending}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, b.UserID, rows[0].UserID)

	_, _, err = h.svc.TransactionReport(h.ctx, Principal{ID: a.UserID, Role: RoleUser}, TransactionFilter{}, Page{})
	requireKind(t, err, apperrors.KindForbidden)
}

func TestReferralsSummary(t *testing.T) {
	h := newHarness(t)
	sponsor := h.register(t, "sponsor@example.com", "")
	h.register(t, "one@example.com", sponsor.UserID)
	h.register(t, "two@example.com", sponsor.UserID)

	summary, err := h.svc.Referrals(h.ctx, sponsor.UserID)
	require.NoError(t, err)
	assert.Len(t, summary.Referrals, 2)
	assert.Len(t, summary.Commissions, 2)
	assertMoney(t, "20", summary.TotalEarned)
}

func TestUsersSearchAndStatus(t *testing.T) {
	h := newHarness(t)
	a := h.register(t, "alpha@example.com", "")
	h.register(t, "beta@example.com", "")

	rows, total, err := h.svc.Users(h.ctx, support, "alpha", "", Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.UserID, rows[0].UserID)

	_, err = h.svc.UpdateUserStatus(h.ctx, support, a.UserID, models.UserStatusBlocked)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = h.svc.UpdateUserStatus(h.ctx, admin, a.UserID, "Frozen")
	requireKind(t, err, apperrors.KindValidation)
	blocked, err := h.svc.UpdateUserStatus(h.ctx, admin, a.UserID, models.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBlocked, blocked.Status)

	_, total, err = h.svc.Users(h.ctx, admin, "", models.UserStatusActive, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	logs, _, err := h.svc.ActivityLog(h.ctx, admin, admin.ID, Page{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"userId":"`+a.UserID+`","from":"Active","to":"Blocked"}`, string(logs[0].Details))
}
