package ledger

import (
	"context"
	"errors"

	"capitalrise/apperrors"
	"capitalrise/models"
	"capitalrise/monitoring"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry describes the audit row written with a balance mutation.
type Entry struct {
	Type         models.TransactionType
	Status       models.TransactionStatus
	Description  string
	ReferenceID  string
	OperationKey string // optional; a replayed key fails with ErrDuplicateOperation
	AdminID      string
	DeviceInfo   string
}

// change is a set of deltas applied to one user row.
type change struct {
	balance        decimal.Decimal
	fund           decimal.Decimal
	totalIncome    decimal.Decimal
	todayIncome    decimal.Decimal
	referralIncome decimal.Decimal
	referrals      int
	pkg            *string
}

func lockUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := forUpdate(tx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// lockActiveUser is lockUser for user-initiated operations.
func lockActiveUser(tx *gorm.DB, userID string) (*models.User, error) {
	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountBlocked
	}
	return user, nil
}

// lockLedgerRow locks the row the balance primitives operate on. Only an
// Active user has one.
func lockLedgerRow(tx *gorm.DB, userID string) (*models.User, error) {
	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func findUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// mutate writes the deltas on a locked user row and returns the balance
// before the change. Nothing is written when a balance or fund would go negative.
func mutate(tx *gorm.DB, user *models.User, c change) (decimal.Decimal, error) {
	before := user.Balance
	balance := user.Balance.Add(c.balance)
	if balance.IsNegative() {
		return before, apperrors.ErrInsufficientBalance.WithMessage("Insufficient balance. Available: ₹%s", user.Balance.StringFixed(2))
	}
	fund := user.Fund.Add(c.fund)
	if fund.IsNegative() {
		return before, apperrors.ErrInsufficientBalance.WithMessage("Insufficient fund. Available: ₹%s", user.Fund.StringFixed(2))
	}
	totalIncome := user.TotalIncome.Add(c.totalIncome)
	todayIncome := user.TodayIncome.Add(c.todayIncome)
	referralIncome := user.ReferralIncome.Add(c.referralIncome)

	updates := map[string]any{
		"balance":         balance,
		"fund":            fund,
		"total_income":    totalIncome,
		"today_income":    todayIncome,
		"referral_income": referralIncome,
	}
	if c.referrals != 0 {
		updates["referrals"] = user.Referrals + c.referrals
	}
	if c.pkg != nil {
		updates["package"] = *c.pkg
	}
	if err := tx.Model(user).Updates(updates).Error; err != nil {
		return before, err
	}

	user.Balance = balance
	user.Fund = fund
	user.TotalIncome = totalIncome
	user.TodayIncome = todayIncome
	user.ReferralIncome = referralIncome
	user.Referrals += c.referrals
	if c.pkg != nil {
		user.Package = *c.pkg
	}
	return before, nil
}

// apply mutates a locked user row and appends exactly one Transaction.
// amount is the value recorded on the audit row.
func apply(tx *gorm.DB, user *models.User, c change, amount decimal.Decimal, e Entry) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be greater than 0")
	}
	if !models.ValidTransactionType(e.Type) {
		return nil, apperrors.Validation("Unknown transaction type: " + string(e.Type))
	}

	var key *string
	if e.OperationKey != "" {
		var seen int64
		if err := tx.Model(&models.Transaction{}).Where("idempotency_key = ?", e.OperationKey).Count(&seen).Error; err != nil {
			return nil, err
		}
		if seen > 0 {
			return nil, apperrors.ErrDuplicateOperation
		}
		key = &e.OperationKey
	}

	before, err := mutate(tx, user, c)
	if err != nil {
		return nil, err
	}

	status := e.Status
	if status == "" {
		status = models.TransactionStatusCompleted
	}
	txn := &models.Transaction{
		TransactionID:  generateID("TXN"),
		UserID:         user.UserID,
		Type:           e.Type,
		Amount:         amount,
		BalanceBefore:  before,
		BalanceAfter:   user.Balance,
		Status:         status,
		Description:    e.Description,
		ReferenceID:    optional(e.ReferenceID),
		IdempotencyKey: key,
		AdminID:        e.AdminID,
		DeviceInfo:     e.DeviceInfo,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, onDuplicate(err, apperrors.ErrDuplicateOperation)
	}
	return txn, nil
}

// record appends an audit row that does not move the balance.
func record(tx *gorm.DB, user *models.User, amount decimal.Decimal, e Entry) (*models.Transaction, error) {
	if !models.ValidTransactionType(e.Type) {
		return nil, apperrors.Validation("Unknown transaction type: " + string(e.Type))
	}
	txn := &models.Transaction{
		TransactionID: generateID("TXN"),
		UserID:        user.UserID,
		Type:          e.Type,
		Amount:        amount,
		BalanceBefore: user.Balance,
		BalanceAfter:  user.Balance,
		Status:        e.Status,
		Description:   e.Description,
		ReferenceID:   optional(e.ReferenceID),
		AdminID:       e.AdminID,
		DeviceInfo:    e.DeviceInfo,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Credit adds amount to the user's balance.
func (s *Service) Credit(ctx context.Context, userID string, amount decimal.Decimal, e Entry) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.inTx(ctx, "credit", map[string]any{"userId": userID}, func(tx *gorm.DB) error {
		user, err := lockLedgerRow(tx, userID)
		if err != nil {
			return err
		}
		txn, err = apply(tx, user, change{balance: round2(amount)}, round2(amount), e)
		return err
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordAmount("credit", txn.Amount.InexactFloat64())
	return txn, nil
}

// Debit removes amount from the user's balance. It never clamps.
func (s *Service) Debit(ctx context.Context, userID string, amount decimal.Decimal, e Entry) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.inTx(ctx, "debit", map[string]any{"userId": userID}, func(tx *gorm.DB) error {
		user, err := lockLedgerRow(tx, userID)
		if err != nil {
			return err
		}
		txn, err = apply(tx, user, change{balance: round2(amount).Neg()}, round2(amount), e)
		return err
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordAmount("debit", txn.Amount.InexactFloat64())
	return txn, nil
}

// LockIntoFund moves amount from balance to fund.
func (s *Service) LockIntoFund(ctx context.Context, userID string, amount decimal.Decimal, e Entry) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.inTx(ctx, "lock_into_fund", map[string]any{"userId": userID}, func(tx *gorm.DB) error {
		user, err := lockLedgerRow(tx, userID)
		if err != nil {
			return err
		}
		amt := round2(amount)
		txn, err = apply(tx, user, change{balance: amt.Neg(), fund: amt}, amt, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordAmount("lock_into_fund", txn.Amount.InexactFloat64())
	return txn, nil
}

// AddUserBalance is the admin "Admin Fund Added" credit.
func (s *Service) AddUserBalance(ctx context.Context, p Principal, userID string, amount decimal.Decimal, reason, operationKey string) (*models.Transaction, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	description := "Admin fund added"
	if reason != "" {
		description += ": " + reason
	}
	var txn *models.Transaction
	err := s.inTx(ctx, "admin_add_balance", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		amt := round2(amount)
		txn, err = apply(tx, user, change{balance: amt}, amt, Entry{
			Type:         models.TransactionTypeAdminFundAdded,
			Description:  description,
			OperationKey: operationKey,
			AdminID:      p.ID,
			DeviceInfo:   p.Device,
		})
		if err != nil {
			return err
		}
		return logActivity(tx, p, s.Now(), "Added user balance", map[string]any{
			"userId": userID, "amount": amt.StringFixed(2), "reason": reason, "transactionId": txn.TransactionID,
		})
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordAmount("admin_add_balance", txn.Amount.InexactFloat64())
	return txn, nil
}
