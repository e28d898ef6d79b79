package ledger

import (
	"context"
	"errors"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"
	"capitalrise/monitoring"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type ActivateInput struct {
	UserID      string
	PackageName string
	Amount      decimal.Decimal
	Device      string
}

// Activation is the result of a successful package activation.
type Activation struct {
	Subscription models.UserPackage `json:"subscription"`
	Transaction  models.Transaction `json:"transaction"`
	Balance      decimal.Decimal    `json:"balance"`
	Fund         decimal.Decimal    `json:"fund"`
}

// ActivatePackage moves amount from balance into fund and opens a subscription.
// Checks run in the order: user, balance, existing subscription, catalog.
func (s *Service) ActivatePackage(ctx context.Context, in ActivateInput) (*Activation, error) {
	amount := round2(in.Amount)
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be greater than 0")
	}

	var result Activation
	var user *models.User
	var sponsorPaid bool
	err := s.inTx(ctx, "activate_package", map[string]any{"userId": in.UserID, "package": in.PackageName}, func(tx *gorm.DB) error {
		var err error
		user, err = lockActiveUser(tx, in.UserID)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(amount) {
			return apperrors.ErrInsufficientBalance.WithMessage("Insufficient balance. Available: ₹%s", user.Balance.StringFixed(2))
		}

		now := s.Now()
		live, err := s.liveSubscription(tx, user, now)
		if err != nil {
			return err
		}
		if live != nil {
			return apperrors.ErrPackageAlreadyActive
		}

		var pkg models.Package
		err = tx.Where("name = ? AND status = ?", in.PackageName, models.PackageStatusActive).First(&pkg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidPackage
		}
		if err != nil {
			return err
		}
		if !pkg.Amount.Equal(amount) {
			return apperrors.Validation("Amount must be ₹" + pkg.Amount.StringFixed(2) + " for the " + pkg.Name + " package")
		}

		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		validity := pkg.ValidityDays
		if validity <= 0 {
			validity = settings.PackageValidityDays
		}
		dailyPercent := pkg.DailyIncomePercent
		if !dailyPercent.IsPositive() {
			dailyPercent = settings.DailyTaskIncomePercent
		}

		name := pkg.Name
		txn, err := apply(tx, user, change{balance: amount.Neg(), fund: amount, pkg: &name}, amount, Entry{
			Type:        models.TransactionTypePackageActivation,
			Description: pkg.Name + " package activated",
			DeviceInfo:  in.Device,
		})
		if err != nil {
			return err
		}

		activeKey := user.UserID
		sub := models.UserPackage{
			UserID:         user.UserID,
			PackageID:      pkg.ID,
			PackageName:    pkg.Name,
			Amount:         amount,
			ActivationDate: now,
			ExpiryDate:     now.AddDate(0, 0, validity),
			Status:         models.SubscriptionActive,
			DailyIncome:    round2(amount.Mul(dailyPercent).Div(hundred)),
			TotalEarned:    decimal.Zero,
			ActiveKey:      &activeKey,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return onDuplicate(err, apperrors.ErrPackageAlreadyActive)
		}

		commissionPercent := pkg.ReferralCommissionPercent
		if !commissionPercent.IsPositive() {
			commissionPercent = settings.ReferralCommissionPercent
		}
		sponsorPaid, err = s.payActivationCommission(tx, user, pkg.Name, amount, commissionPercent)
		if err != nil {
			return err
		}

		result = Activation{Subscription: sub, Transaction: *txn, Balance: user.Balance, Fund: user.Fund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordAmount("activate_package", amount.InexactFloat64())
	s.log.WithField("userId", user.UserID).WithField("package", result.Subscription.PackageName).
		WithField("sponsorPaid", sponsorPaid).Info("package activated")
	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Package activated",
		Title:   result.Subscription.PackageName + " package activated",
		Body: "Your " + result.Subscription.PackageName + " package of ₹" + amount.StringFixed(2) +
			" is active until " + result.Subscription.ExpiryDate.Format("January 2, 2006") + ".",
	})
	return &result, nil
}

// payActivationCommission credits the direct sponsor a percentage of the package amount.
func (s *Service) payActivationCommission(tx *gorm.DB, user *models.User, packageName string, amount, percent decimal.Decimal) (bool, error) {
	if user.SponsorID == "" || user.SponsorID == s.defaultSponsorID {
		return false, nil
	}
	commission := round2(amount.Mul(percent).Div(hundred))
	if !commission.IsPositive() {
		return false, nil
	}
	sponsor, err := lockUser(tx, user.SponsorID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if sponsor.Status != models.UserStatusActive {
		return false, nil
	}

	if _, err := apply(tx, sponsor, change{
		balance:        commission,
		totalIncome:    commission,
		referralIncome: commission,
	}, commission, Entry{
		Type:        models.TransactionTypeReferralCommission,
		Description: packageName + " package commission from " + user.UserID,
		ReferenceID: user.UserID,
	}); err != nil {
		return false, err
	}
	return true, tx.Create(&models.ReferralIncome{
		SponsorID:         sponsor.UserID,
		ReferralID:        user.UserID,
		ReferralName:      user.Name,
		PackageName:       packageName,
		CommissionPercent: percent,
		Amount:            commission,
		Status:            models.ReferralStatusPaid,
	}).Error
}

// liveSubscription returns the user's Active, unexpired subscription.
// An Active row past its expiry is marked Expired on the way.
func (s *Service) liveSubscription(tx *gorm.DB, user *models.User, now time.Time) (*models.UserPackage, error) {
	var sub models.UserPackage
	err := forUpdate(tx).Where("user_id = ? AND status = ?", user.UserID, models.SubscriptionActive).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sub.LiveAt(now) {
		return &sub, nil
	}
	if err := expire(tx, user, &sub); err != nil {
		return nil, err
	}
	return nil, nil
}

// expire closes a subscription and clears the user's package name.
func expire(tx *gorm.DB, user *models.User, sub *models.UserPackage) error {
	if err := tx.Model(sub).Updates(map[string]any{"status": models.SubscriptionExpired, "active_key": nil}).Error; err != nil {
		return err
	}
	sub.Status = models.SubscriptionExpired
	sub.ActiveKey = nil
	if user.Package == sub.PackageName {
		if err := tx.Model(user).Update("package", models.NoPackage).Error; err != nil {
			return err
		}
		user.Package = models.NoPackage
	}
	return nil
}

// ExpireLapsed closes every Active subscription whose expiry has passed.
// It returns the closed rows so callers can notify their owners.
func (s *Service) ExpireLapsed(ctx context.Context) ([]models.UserPackage, error) {
	now := s.Now()
	var candidates []models.UserPackage
	if err := s.db.WithContext(ctx).Where("status = ?", models.SubscriptionActive).Find(&candidates).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to load subscriptions")
	}

	var expired []models.UserPackage
	for _, c := range candidates {
		if c.LiveAt(now) {
			continue
		}
		err := s.inTx(ctx, "expire_subscription", map[string]any{"userId": c.UserID}, func(tx *gorm.DB) error {
			user, err := lockUser(tx, c.UserID)
			if err != nil {
				return err
			}
			var sub models.UserPackage
			if err := forUpdate(tx).First(&sub, c.ID).Error; err != nil {
				return err
			}
			if sub.Status != models.SubscriptionActive || sub.LiveAt(now) {
				return nil
			}
			if err := expire(tx, user, &sub); err != nil {
				return err
			}
			expired = append(expired, sub)
			return nil
		})
		if err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// ExpiringSoon returns live subscriptions ending within the window that have no reminder yet.
func (s *Service) ExpiringSoon(ctx context.Context, window time.Duration) ([]models.UserPackage, error) {
	now := s.Now()
	var active []models.UserPackage
	if err := s.db.WithContext(ctx).Where("status = ? AND reminder_sent = ?", models.SubscriptionActive, false).Find(&active).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to load subscriptions")
	}
	var out []models.UserPackage
	for _, sub := range active {
		if sub.LiveAt(now) && !sub.ExpiryDate.After(now.Add(window)) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// MarkReminderSent flags a subscription so it is reminded only once.
func (s *Service) MarkReminderSent(ctx context.Context, subscriptionID uint) error {
	err := s.db.WithContext(ctx).Model(&models.UserPackage{}).Where("id = ?", subscriptionID).Update("reminder_sent", true).Error
	if err != nil {
		return apperrors.Internal(err, "Failed to update subscription")
	}
	return nil
}

// Packages lists the active catalog ordered by amount.
func (s *Service) Packages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	if err := s.db.WithContext(ctx).Where("status = ?", models.PackageStatusActive).Order("amount ASC").Find(&packages).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to fetch packages")
	}
	return packages, nil
}

// Subscriptions lists a user's subscriptions, newest first.
func (s *Service) Subscriptions(ctx context.Context, userID string) ([]models.UserPackage, error) {
	var subs []models.UserPackage
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("activation_date DESC, id DESC").Find(&subs).Error; err != nil {
		return nil, apperrors.Internal(err, "Failed to fetch subscriptions")
	}
	return subs, nil
}

// NotifyExpiry tells the subscriber that the package has lapsed, or is about
// to when lapsed is false.
func (s *Service) NotifyExpiry(ctx context.Context, sub models.UserPackage, lapsed bool) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", sub.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal(err, "Failed to fetch user")
	}
	n := Notification{Email: user.Email, Name: user.Name}
	if lapsed {
		n.Subject = "Your " + sub.PackageName + " package has expired"
		n.Title = "Package expired"
		n.Body = "Your " + sub.PackageName + " package expired on " + sub.ExpiryDate.In(s.loc).Format("January 2, 2006") +
			". Activate a new package to keep earning daily task income."
	} else {
		n.Subject = "Your " + sub.PackageName + " package is expiring soon"
		n.Title = "Package expiring soon"
		n.Body = "Your " + sub.PackageName + " package expires on " + sub.ExpiryDate.In(s.loc).Format("January 2, 2006") + "."
	}
	s.notify(ctx, n)
	return nil
}
