package utils

import (
	"context"
	"time"

	"capitalrise/ledger"
	"capitalrise/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderWindow is how far ahead of expiry subscribers get a reminder.
const ReminderWindow = 72 * time.Hour

// Housekeeper is the part of the ledger the nightly job drives.
type Housekeeper interface {
	ResetTodayIncome(ctx context.Context) (int64, error)
	ExpireLapsed(ctx context.Context) ([]models.UserPackage, error)
	ExpiringSoon(ctx context.Context, window time.Duration) ([]models.UserPackage, error)
	MarkReminderSent(ctx context.Context, subscriptionID uint) error
	NotifyExpiry(ctx context.Context, sub models.UserPackage, lapsed bool) error
}

var _ Housekeeper = (*ledger.Service)(nil)

type HousekeepingReport struct {
	IncomeReset int64
	Expired     int
	Reminded    int
}

// StartHousekeeping schedules RunHousekeeping on the cron expression in the given location.
func StartHousekeeping(spec string, loc *time.Location, svc Housekeeper, log *logrus.Logger) (*cron.Cron, error) {
	log.Info("[HOUSEKEEPING] Initializing scheduler...")

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		log.Info("[HOUSEKEEPING] Running nightly housekeeping...")
		RunHousekeeping(context.Background(), svc, log)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Infof("[HOUSEKEEPING] Scheduler started with spec %q", spec)
	return c, nil
}

// RunHousekeeping resets today's income counters, expires lapsed
// subscriptions and sends expiry reminders. A failing step is logged and
// the remaining steps still run.
func RunHousekeeping(ctx context.Context, svc Housekeeper, log *logrus.Logger) HousekeepingReport {
	var report HousekeepingReport

	reset, err := svc.ResetTodayIncome(ctx)
	if err != nil {
		log.WithError(err).Error("[HOUSEKEEPING] Error resetting today's income")
	} else {
		report.IncomeReset = reset
		log.Infof("[HOUSEKEEPING] Reset today's income for %d users", reset)
	}

	expired, err := svc.ExpireLapsed(ctx)
	if err != nil {
		log.WithError(err).Error("[HOUSEKEEPING] Error expiring subscriptions")
	}
	for _, sub := range expired {
		report.Expired++
		if err := svc.NotifyExpiry(ctx, sub, true); err != nil {
			log.WithError(err).WithField("userId", sub.UserID).Warn("[HOUSEKEEPING] Could not send expiry email")
		}
	}
	if len(expired) > 0 {
		log.Infof("[HOUSEKEEPING] Expired %d subscriptions", len(expired))
	}

	soon, err := svc.ExpiringSoon(ctx, ReminderWindow)
	if err != nil {
		log.WithError(err).Error("[HOUSEKEEPING] Error fetching expiring subscriptions")
		return report
	}
	log.Infof("[HOUSEKEEPING] Found %d subscriptions expiring soon", len(soon))
	for _, sub := range soon {
		if err := svc.NotifyExpiry(ctx, sub, false); err != nil {
			log.WithError(err).WithField("userId", sub.UserID).Warn("[HOUSEKEEPING] Could not send expiry reminder")
			continue
		}
		if err := svc.MarkReminderSent(ctx, sub.ID); err != nil {
			log.WithError(err).WithField("subscriptionId", sub.ID).Error("[HOUSEKEEPING] Error marking reminder")
			continue
		}
		report.Reminded++
	}
	return report
}
