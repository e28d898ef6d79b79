package ledger

import (
	"testing"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (h *harness) deposit(t *testing.T, userID, amount, utr string) *models.DepositRequest {
	t.Helper()
	req, err := h.svc.SubmitDeposit(h.ctx, DepositInput{UserID: userID, Amount: dec(amount), UPITransactionID: utr, UserUPIID: "someone@okaxis"})
	require.NoError(t, err)
	return req
}

func (h *harness) platformBalance(t *testing.T) string {
	t.Helper()
	settings, err := h.svc.Settings(h.ctx)
	require.NoError(t, err)
	return settings.PlatformBalance.StringFixed(2)
}

func TestSubmitDepositLeavesBalanceUntouched(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")

	req := h.deposit(t, u.UserID, "500", "UTR1001")
	assert.Regexp(t, `^DEP[0-9A-F]{12}$`, req.RequestID)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assertMoney(t, "50", h.user(t, u.UserID).Balance)

	var txn models.Transaction
	require.NoError(t, h.db.Where("reference_id = ?", req.RequestID).First(&txn).Error)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	assertMoney(t, "50", txn.BalanceBefore)
	assertMoney(t, "50", txn.BalanceAfter)
}

func TestSubmitDepositValidation(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")

	_, err := h.svc.SubmitDeposit(h.ctx, DepositInput{UserID: u.UserID, Amount: dec("99.99"), UPITransactionID: "UTR1"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = h.svc.SubmitDeposit(h.ctx, DepositInput{UserID: u.UserID, Amount: dec("500"), UPITransactionID: "  "})
	requireKind(t, err, apperrors.KindValidation)

	h.deposit(t, u.UserID, "500", "UTR1")
	_, err = h.svc.SubmitDeposit(h.ctx, DepositInput{UserID: u.UserID, Amount: dec("700"), UPITransactionID: "UTR1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReference)
}

func TestApproveDepositCreditsOnce(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")
	req := h.deposit(t, u.UserID, "500", "UTR1001")

	approved, err := h.svc.ApproveDeposit(h.ctx, admin, req.RequestID, "verified")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, approved.Status)
	assert.Equal(t, admin.ID, approved.ApprovedBy)

	_, err = h.svc.ApproveDeposit(h.ctx, admin, req.RequestID, "again")
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyProcessed)
	_, err = h.svc.RejectDeposit(h.ctx, admin, req.RequestID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyProcessed)

	assertMoney(t, "550", h.user(t, u.UserID).Balance)
	assert.Equal(t, "10500.00", h.platformBalance(t))
	assert.Equal(t, int64(1), h.countTransactions(t, u.UserID, models.TransactionTypeDeposit))

	var txn models.Transaction
	require.NoError(t, h.db.Where("reference_id = ?", req.RequestID).First(&txn).Error)
	assert.Equal(t, models.TransactionStatusApproved, txn.Status)
	assertMoney(t, "50", txn.BalanceBefore)
	assertMoney(t, "550", txn.BalanceAfter)
	assert.Equal(t, admin.ID, txn.AdminID)

	var logs int64
	h.db.Model(&models.AdminActivityLog{}).Where("action = ?", "Approved deposit").Count(&logs)
	assert.Equal(t, int64(1), logs)
	assert.Contains(t, h.notifier.subjects(), "Deposit approved")
}

func TestRejectDepositFreesReference(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")
	req := h.deposit(t, u.UserID, "500", "UTR1001")

	rejected, err := h.svc.RejectDeposit(h.ctx, admin, req.RequestID, "payment not received")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
	assertMoney(t, "50", h.user(t, u.UserID).Balance)
	assert.Equal(t, "10000.00", h.platformBalance(t))

	var txn models.Transaction
	require.NoError(t, h.db.Where("reference_id = ?", req.RequestID).First(&txn).Error)
	assert.Equal(t, models.TransactionStatusRejected, txn.Status)

	var stored models.DepositRequest
	require.NoError(t, h.db.Where("request_id = ?", req.RequestID).First(&stored).Error)
	assert.Nil(t, stored.OpenReference)

	h.deposit(t, u.UserID, "500", "UTR1001")
}

func TestOpenReferenceIsUniqueInStore(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")
	req := h.deposit(t, u.UserID, "500", "UTR2002")
	require.NotNil(t, req.OpenReference)
	assert.Equal(t, "UTR2002", *req.OpenReference)

	ref := "UTR2002"
	err := h.db.Create(&models.DepositRequest{
		RequestID:        "DEPRACE000001",
		UserID:           u.UserID,
		Name:             u.Name,
		Amount:           dec("500"),
		Method:           "UPI",
		UPITransactionID: ref,
		OpenReference:    &ref,
		Status:           models.RequestStatusPending,
	}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, onDuplicate(err, apperrors.ErrDuplicateReference), apperrors.ErrDuplicateReference)

	var open int64
	require.NoError(t, h.db.Model(&models.DepositRequest{}).Where("upi_transaction_id = ?", ref).Count(&open).Error)
	assert.Equal(t, int64(1), open)
}

func TestDepositDecisionsNeedProcessRole(t *testing.T) {
	h := newHarness(t)
	u := h.register(t, "payer@example.com", "")
	req := h.deposit(t, u.UserID, "500", "UTR1001")

	_, err := h.svc.ApproveDeposit(h.ctx, support, req.RequestID, "")
	requireKind(t, err, apperrors.KindForbidden)
	_, err = h.svc.ApproveDeposit(h.ctx, Principal{ID: u.UserID, Role: RoleUser}, req.RequestID, "")
	requireKind(t, err, apperrors.KindForbidden)
	_, err = h.svc.ApproveDeposit(h.ctx, admin, "DEPMISSING", "")
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestDepositListing(t *testing.T) {
	h := newHarness(t)
	a := h.register(t, "a@example.com", "")
	b := h.register(t, "b@example.com", "")
	first := h.deposit(t, a.UserID, "500", "UTR1")
	h.deposit(t, a.UserID, "600", "UTR2")
	h.deposit(t, b.UserID, "700", "UTR3")
	_, err := h.svc.ApproveDeposit(h.ctx, superAdmin, first.RequestID, "")
	require.NoError(t, err)

	rows, total, err := h.svc.Deposits(h.ctx, models.RequestStatusPending, "", Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	_, total, err = h.svc.Deposits(h.ctx, "", a.UserID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
