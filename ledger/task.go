package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"
	"capitalrise/monitoring"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickResult describes one completed task click.
type ClickResult struct {
	ClickNumber       int             `json:"clickNumber"`
	TotalClicksNeeded int             `json:"totalClicksNeeded"`
	AmountEarned      decimal.Decimal `json:"amountEarned"`
	TodayTotalEarned  decimal.Decimal `json:"todayTotalEarned"`
	RemainingClicks   int             `json:"remainingClicks"`
	IsCompleted       bool            `json:"isCompleted"`
	Balance           decimal.Decimal `json:"balance"`
}

// TaskProgress is today's click state for a user.
type TaskProgress struct {
	TaskDate          string          `json:"taskDate"`
	ClicksCompleted   int             `json:"clicksCompleted"`
	TotalClicksNeeded int             `json:"totalClicksNeeded"`
	TodayIncome       decimal.Decimal `json:"todayIncome"`
	PerClickIncome    decimal.Decimal `json:"perClickIncome"`
	DailyIncome       decimal.Decimal `json:"dailyIncome"`
	LastClickTime     *time.Time      `json:"lastClickTime"`
	IsCompleted       bool            `json:"isCompleted"`
}

// taskDay is the platform-local calendar day stored as a UTC midnight date.
func taskDay(now time.Time) datatypes.Date {
	y, m, d := now.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// clickCredit is the amount for click n of quota. Rounding happens on the
// cumulative total so the credits of a full day add up to round2(daily).
func clickCredit(daily decimal.Decimal, n, quota int) decimal.Decimal {
	q := decimal.NewFromInt(int64(quota))
	upTo := func(k int) decimal.Decimal {
		return round2(daily.Mul(decimal.NewFromInt(int64(k))).Div(q))
	}
	return upTo(n).Sub(upTo(n - 1))
}

func dailyTaskIncome(fund decimal.Decimal, settings Settings) decimal.Decimal {
	return fund.Mul(settings.DailyTaskIncomePercent).Div(hundred)
}

// openTask loads today's row under lock, creating it on the first click.
// The quota in effect at creation is kept for the whole day.
func openTask(tx *gorm.DB, userID string, day datatypes.Date, quota int) (*models.DailyTask, error) {
	fresh := models.DailyTask{
		UserID:            userID,
		TaskDate:          day,
		TotalClicksNeeded: quota,
		TodayIncome:       decimal.Zero,
		Status:            models.TaskStatusPending,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	var task models.DailyTask
	if err := forUpdate(tx).Where("user_id = ? AND task_date = ?", userID, day).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteClick credits one click of today's task.
//
// The per-click rate uses the user's current fund and the current global
// daily_task_income_percent, so a rate change applies to running
// subscriptions from the next click on.
func (s *Service) CompleteClick(ctx context.Context, userID, device string) (*ClickResult, error) {
	var result ClickResult
	var lapsed bool
	err := s.inTx(ctx, "complete_click", map[string]any{"userId": userID}, func(tx *gorm.DB) error {
		user, err := lockActiveUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Package == models.NoPackage {
			return apperrors.ErrNoActivePackage
		}

		var sub models.UserPackage
		err = forUpdate(tx).Where("user_id = ? AND status = ?", user.UserID, models.SubscriptionActive).First(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoActivePackage
		}
		if err != nil {
			return err
		}

		now := s.Now()
		if !sub.LiveAt(now) {
			// Commit the expiry, then report it.
			lapsed = true
			return expire(tx, user, &sub)
		}

		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		day := taskDay(now)
		task, err := openTask(tx, user.UserID, day, settings.TaskClicksNeeded)
		if err != nil {
			return err
		}
		quota := task.TotalClicksNeeded
		if task.ClicksCompleted >= quota {
			return apperrors.ErrQuotaReached
		}

		n := task.ClicksCompleted + 1
		credit := clickCredit(dailyTaskIncome(user.Fund, settings), n, quota)
		if credit.IsPositive() {
			if _, err := apply(tx, user, change{balance: credit, totalIncome: credit, todayIncome: credit}, credit, Entry{
				Type:        models.TransactionTypeTaskIncome,
				Description: "Daily click task #" + strconv.Itoa(n),
				DeviceInfo:  device,
			}); err != nil {
				return err
			}
		}

		todayIncome := task.TodayIncome.Add(credit)
		done := n >= quota
		status := models.TaskStatusPending
		if done {
			status = models.TaskStatusCompleted
		}
		res := tx.Model(&models.DailyTask{}).
			Where("id = ? AND clicks_completed = ?", task.ID, task.ClicksCompleted).
			Updates(map[string]any{
				"clicks_completed": n,
				"today_income":     todayIncome,
				"last_click_time":  now,
				"status":           status,
				"income_credited":  done,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrDuplicateOperation.WithMessage("Click already counted. Please try again.")
		}

		if err := tx.Create(&models.TaskIncomeHistory{
			UserID:      user.UserID,
			TaskDate:    day,
			ClickNumber: n,
			Amount:      credit,
			PackageName: user.Package,
			FundAmount:  user.Fund,
			ClickTime:   now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&sub).Update("total_earned", sub.TotalEarned.Add(credit)).Error; err != nil {
			return err
		}

		result = ClickResult{
			ClickNumber:       n,
			TotalClicksNeeded: quota,
			AmountEarned:      credit,
			TodayTotalEarned:  todayIncome,
			RemainingClicks:   quota - n,
			IsCompleted:       done,
			Balance:           user.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lapsed {
		monitoring.RecordOperation("complete_click", "not_found")
		return nil, apperrors.ErrPackageExpired
	}
	monitoring.RecordAmount("task_income", result.AmountEarned.InexactFloat64())
	return &result, nil
}

// TodayProgress reports today's task state without creating a row.
func (s *Service) TodayProgress(ctx context.Context, userID string) (*TaskProgress, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return nil, translate(err)
	}
	settings, err := loadSettings(db)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load settings")
	}

	now := s.Now()
	progress := TaskProgress{
		TaskDate:          now.Format("2006-01-02"),
		TotalClicksNeeded: settings.TaskClicksNeeded,
		TodayIncome:       decimal.Zero,
	}
	var task models.DailyTask
	err = db.Where("user_id = ? AND task_date = ?", userID, taskDay(now)).First(&task).Error
	switch {
	case err == nil:
		progress.ClicksCompleted = task.ClicksCompleted
		progress.TotalClicksNeeded = task.TotalClicksNeeded
		progress.TodayIncome = task.TodayIncome
		progress.LastClickTime = task.LastClickTime
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Internal(err, "Failed to load task progress")
	}

	daily := dailyTaskIncome(user.Fund, settings)
	progress.DailyIncome = round2(daily)
	progress.PerClickIncome = round2(daily.Div(decimal.NewFromInt(int64(progress.TotalClicksNeeded))))
	progress.IsCompleted = progress.ClicksCompleted >= progress.TotalClicksNeeded
	return &progress, nil
}

// TaskHistory lists per-click income rows, newest first.
func (s *Service) TaskHistory(ctx context.Context, userID string, page Page) ([]models.TaskIncomeHistory, int64, error) {
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.TaskIncomeHistory{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch task history")
	}
	var rows []models.TaskIncomeHistory
	if err := query.Order("click_time DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch task history")
	}
	return rows, total, nil
}

// ResetTodayIncome zeroes users.today_income at the start of a day.
func (s *Service) ResetTodayIncome(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("today_income <> ?", 0).Update("today_income", decimal.Zero)
	if res.Error != nil {
		return 0, apperrors.Internal(res.Error, "Failed to reset today income")
	}
	return res.RowsAffected, nil
}
