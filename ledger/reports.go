package ledger

import (
	"context"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserStats are the dashboard totals of one user.
type UserStats struct {
	TotalDeposits     decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals  decimal.Decimal `json:"totalWithdrawals"`
	TotalTaskIncome   decimal.Decimal `json:"totalTaskIncome"`
	TotalReferral     decimal.Decimal `json:"totalReferralIncome"`
	TodayClicks       int             `json:"todayClicks"`
	TotalClicksNeeded int             `json:"totalClicksNeeded"`
	ActivePackage     string          `json:"activePackage"`
	PackageExpiry     *time.Time      `json:"packageExpiry"`
}

// UserOverview is everything the user dashboard shows.
type UserOverview struct {
	User               models.User          `json:"user"`
	Stats              UserStats            `json:"stats"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
	ActivePackages     []models.UserPackage `json:"activePackages"`
}

func sumAmount(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return round2(total.Decimal), nil
}

// UserOverview loads profile, totals, the 10 latest transactions and live subscriptions.
func (s *Service) UserOverview(ctx context.Context, userID string) (*UserOverview, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return nil, translate(err)
	}
	stats, err := s.userStats(db, user)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load statistics")
	}

	overview := UserOverview{User: *user, Stats: *stats}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(10).Find(&overview.RecentTransactions).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to load transactions")
	}
	if err := db.Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).Find(&overview.ActivePackages).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to load packages")
	}
	return &overview, nil
}

func (s *Service) userStats(db *gorm.DB, user *models.User) (*UserStats, error) {
	var stats UserStats
	var err error
	txns := func() *gorm.DB { return db.Model(&models.Transaction{}).Where("user_id = ?", user.UserID) }

	if stats.TotalDeposits, err = sumAmount(txns().Where("type = ? AND status = ?", models.TransactionTypeDeposit, models.TransactionStatusApproved)); err != nil {
		return nil, err
	}
	if stats.TotalWithdrawals, err = sumAmount(db.Model(&models.WithdrawalRequest{}).Where("user_id = ? AND status = ?", user.UserID, models.RequestStatusApproved)); err != nil {
		return nil, err
	}
	if stats.TotalTaskIncome, err = sumAmount(txns().Where("type = ?", models.TransactionTypeTaskIncome)); err != nil {
		return nil, err
	}
	stats.TotalReferral = user.ReferralIncome

	settings, err := loadSettings(db)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	stats.TotalClicksNeeded = settings.TaskClicksNeeded
	var task models.DailyTask
	res := db.Where("user_id = ? AND task_date = ?", user.UserID, taskDay(now)).Limit(1).Find(&task)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		stats.TodayClicks = task.ClicksCompleted
		stats.TotalClicksNeeded = task.TotalClicksNeeded
	}

	stats.ActivePackage = models.NoPackage
	var sub models.UserPackage
	res = db.Where("user_id = ? AND status = ?", user.UserID, models.SubscriptionActive).Limit(1).Find(&sub)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 && sub.LiveAt(now) {
		stats.ActivePackage = sub.PackageName
		expiry := sub.ExpiryDate
		stats.PackageExpiry = &expiry
	}
	return &stats, nil
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	UserID string
	Type   models.TransactionType
	Status models.TransactionStatus
	From   *time.Time
	To     *time.Time
}

func (s *Service) queryTransactions(ctx context.Context, f TransactionFilter, page Page) ([]models.Transaction, int64, error) {
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.Transaction{})
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch transactions")
	}
	var rows []models.Transaction
	if err := query.Order("created_at DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch transactions")
	}
	return rows, total, nil
}

// Transactions lists the caller's own transactions.
func (s *Service) Transactions(ctx context.Context, userID string, txnType models.TransactionType, page Page) ([]models.Transaction, int64, error) {
	return s.queryTransactions(ctx, TransactionFilter{UserID: userID, Type: txnType}, page)
}

// TransactionReport is the admin view across all users.
func (s *Service) TransactionReport(ctx context.Context, p Principal, f TransactionFilter, page Page) ([]models.Transaction, int64, error) {
	if err := p.canRead(); err != nil {
		return nil, 0, err
	}
	return s.queryTransactions(ctx, f, page)
}

// ReferralSummary lists a sponsor's direct referrals and commission history.
type ReferralSummary struct {
	Referrals   []models.User           `json:"referrals"`
	Commissions []models.ReferralIncome `json:"commissions"`
	TotalEarned decimal.Decimal         `json:"totalEarned"`
}

func (s *Service) Referrals(ctx context.Context, userID string) (*ReferralSummary, error) {
	db := s.db.WithContext(ctx)
	var out ReferralSummary
	if err := db.Where("sponsor_id = ?", userID).Order("join_date DESC").Find(&out.Referrals).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to fetch referrals")
	}
	if err := db.Where("sponsor_id = ?", userID).Order("created_at DESC, id DESC").Find(&out.Commissions).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to fetch referral income")
	}
	out.TotalEarned = decimal.Zero
	for _, c := range out.Commissions {
		out.TotalEarned = out.TotalEarned.Add(c.Amount)
	}
	return &out, nil
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalUsers               int64                `json:"totalUsers"`
	TodayUsers               int64                `json:"todayUsers"`
	ActiveUsers              int64                `json:"activeUsers"`
	TotalDeposits            decimal.Decimal      `json:"totalDeposits"`
	TodayDeposits            decimal.Decimal      `json:"todayDeposits"`
	PendingDeposits          int64                `json:"pendingDeposits"`
	PendingDepositsAmount    decimal.Decimal      `json:"pendingDepositsAmount"`
	TotalWithdrawals         decimal.Decimal      `json:"totalWithdrawals"`
	PendingWithdrawals       int64                `json:"pendingWithdrawals"`
	PendingWithdrawalsAmount decimal.Decimal      `json:"pendingWithdrawalsAmount"`
	TotalInvestments         decimal.Decimal      `json:"totalInvestments"`
	PendingKYC               int64                `json:"pendingKyc"`
	RecentTransactions       []models.Transaction `json:"recentTransactions"`
	PlatformBalance          decimal.Decimal      `json:"platformBalance"`
}

func (s *Service) Dashboard(ctx context.Context, p Principal) (*Dashboard, error) {
	if err := p.canRead(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	now := s.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	var d Dashboard
	steps := []func() error{
		func() error { return db.Model(&models.User{}).Count(&d.TotalUsers).Error },
		func() error {
			return db.Model(&models.User{}).Where("join_date >= ?", startOfDay).Count(&d.TodayUsers).Error
		},
		func() error {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&d.ActiveUsers).Error
		},
		func() (err error) {
			d.TotalDeposits, err = sumAmount(db.Model(&models.DepositRequest{}).Where("status = ?", models.RequestStatusApproved))
			return
		},
		func() (err error) {
			d.TodayDeposits, err = sumAmount(db.Model(&models.DepositRequest{}).Where("status = ? AND approved_at >= ?", models.RequestStatusApproved, startOfDay))
			return
		},
		func() error {
			return db.Model(&models.DepositRequest{}).Where("status = ?", models.RequestStatusPending).Count(&d.PendingDeposits).Error
		},
		func() (err error) {
			d.PendingDepositsAmount, err = sumAmount(db.Model(&models.DepositRequest{}).Where("status = ?", models.RequestStatusPending))
			return
		},
		func() (err error) {
			d.TotalWithdrawals, err = sumAmount(db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.RequestStatusApproved))
			return
		},
		func() error {
			return db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.RequestStatusPending).Count(&d.PendingWithdrawals).Error
		},
		func() (err error) {
			d.PendingWithdrawalsAmount, err = sumAmount(db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.RequestStatusPending))
			return
		},
		func() error {
			var total decimal.NullDecimal
			if err := db.Model(&models.User{}).Select("COALESCE(SUM(fund), 0)").Row().Scan(&total); err != nil {
				return err
			}
			d.TotalInvestments = round2(total.Decimal)
			return nil
		},
		func() error {
			return db.Model(&models.KYCRequest{}).
				Where("status IN ?", []models.KYCStatus{models.KYCStatusPending, models.KYCStatusUnderReview}).
				Count(&d.PendingKYC).Error
		},
		func() error {
			return db.Order("created_at DESC, id DESC").Limit(10).Find(&d.RecentTransactions).Error
		},
		func() error {
			settings, err := loadSettings(db)
			d.PlatformBalance = settings.PlatformBalance
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, apperrors.Internal(err, "Failed to load dashboard")
		}
	}
	return &d, nil
}

// Users lists users matching search on id, name, email or mobile.
func (s *Service) Users(ctx context.Context, p Principal, search string, status models.UserStatus, page Page) ([]models.User, int64, error) {
	if err := p.canRead(); err != nil {
		return nil, 0, err
	}
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("user_id LIKE ? OR name LIKE ? OR email LIKE ? OR mobile LIKE ?", like, like, like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch users")
	}
	var users []models.User
	if err := query.Order("join_date DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch users")
	}
	return users, total, nil
}

// UpdateUserStatus blocks or unblocks a user.
func (s *Service) UpdateUserStatus(ctx context.Context, p Principal, userID string, status models.UserStatus) (*models.User, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	if status != models.UserStatusActive && status != models.UserStatusBlocked {
		return nil, apperrors.Validation("Status must be Active or Blocked")
	}
	var user *models.User
	err := s.inTx(ctx, "update_user_status", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, err = lockUser(tx, userID)
		if err != nil {
			return err
		}
		previous := user.Status
		if err := tx.Model(user).Update("status", status).Error; err != nil {
			return err
		}
		user.Status = status
		return logActivity(tx, p, s.Now(), "Updated user status", map[string]any{
			"userId": userID, "from": previous, "to": status,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
