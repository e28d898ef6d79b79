package ledger

import (
	"context"
	"errors"
	"strings"

	"capitalrise/apperrors"
	"capitalrise/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name      string
	Email     string
	Mobile    string
	Password  string
	SponsorID string
	IP        string
	Device    string
}

// Register creates a user, credits the welcome bonus and pays the sponsor's
// flat referral bonus. The reserved default sponsor earns nothing.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	sponsorID := strings.TrimSpace(in.SponsorID)
	if sponsorID == "" {
		sponsorID = s.defaultSponsorID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.saltRound)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to hash password")
	}

	var user *models.User
	err = s.inTx(ctx, "register", map[string]any{"email": email, "sponsorId": sponsorID}, func(tx *gorm.DB) error {
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}

		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperrors.ErrEmailTaken
		}

		var sponsor *models.User
		if sponsorID != s.defaultSponsorID {
			sponsor, err = lockUser(tx, sponsorID)
			if errors.Is(err, apperrors.ErrUserNotFound) || (err == nil && sponsor.Status != models.UserStatusActive) {
				return apperrors.ErrSponsorNotFound
			}
			if err != nil {
				return err
			}
		}

		user = &models.User{
			UserID:         generateID("USER")[:12],
			Name:           strings.TrimSpace(in.Name),
			Email:          email,
			Mobile:         in.Mobile,
			Password:       string(hash),
			SponsorID:      sponsorID,
			JoinDate:       s.Now(),
			Balance:        decimal.Zero,
			Fund:           decimal.Zero,
			TotalIncome:    decimal.Zero,
			TodayIncome:    decimal.Zero,
			ReferralIncome: decimal.Zero,
			Package:        models.NoPackage,
			KYCStatus:      models.KYCStatusPending,
			Status:         models.UserStatusActive,
			CreatedBy:      "Self Registration",
			IPAddress:      in.IP,
			DeviceInfo:     in.Device,
		}
		if err := tx.Create(user).Error; err != nil {
			return onDuplicate(err, apperrors.ErrEmailTaken)
		}

		if settings.RegistrationBonus.IsPositive() {
			bonus := round2(settings.RegistrationBonus)
			if _, err := apply(tx, user, change{balance: bonus}, bonus, Entry{
				Type:        models.TransactionTypeRegistrationBonus,
				Description: "Registration bonus",
				DeviceInfo:  in.Device,
			}); err != nil {
				return err
			}
		}

		if sponsor != nil {
			return payReferralBonus(tx, sponsor, user, settings)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Welcome to CapitalRise",
		Title:   "Welcome aboard!",
		Body:    "Your account " + user.UserID + " is ready. A welcome bonus of ₹" + user.Balance.StringFixed(2) + " has been credited.",
	})
	return user, nil
}

// payReferralBonus credits the flat registration bonus to the sponsor.
func payReferralBonus(tx *gorm.DB, sponsor, referral *models.User, settings Settings) error {
	bonus := round2(settings.ReferralBonus)
	if !bonus.IsPositive() {
		return tx.Model(sponsor).Update("referrals", sponsor.Referrals+1).Error
	}
	if _, err := apply(tx, sponsor, change{
		balance:        bonus,
		totalIncome:    bonus,
		referralIncome: bonus,
		referrals:      1,
	}, bonus, Entry{
		Type:        models.TransactionTypeReferralCommission,
		Description: "Referral bonus for " + referral.UserID,
		ReferenceID: referral.UserID,
	}); err != nil {
		return err
	}
	income := models.ReferralIncome{
		SponsorID:         sponsor.UserID,
		ReferralID:        referral.UserID,
		ReferralName:      referral.Name,
		PackageName:       models.NoPackage,
		CommissionPercent: decimal.Zero,
		Amount:            bonus,
		Status:            models.ReferralStatusPaid,
	}
	return tx.Create(&income).Error
}
