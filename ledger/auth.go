package ledger

import (
	"context"
	"errors"
	"strings"

	"capitalrise/apperrors"
	"capitalrise/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Login    string // user id or email
	Password string
	IP       string
	Device   string
}

// Login checks user credentials, stamps last_login and records the session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	login := strings.TrimSpace(in.Login)
	var user models.User
	err := s.inTx(ctx, "login", map[string]any{"login": login}, func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
			return apperrors.ErrInvalidCredentials
		}
		if user.Status != models.UserStatusActive {
			return apperrors.ErrAccountBlocked
		}

		now := s.Now()
		if err := tx.Model(&user).Update("last_login", now).Error; err != nil {
			return err
		}
		user.LastLogin = &now
		return tx.Create(&models.LoginTracking{
			UserID:    user.UserID,
			IPAddress: in.IP,
			Device:    in.Device,
			Timestamp: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminLogin checks admin credentials. Inactive admins are refused.
func (s *Service) AdminLogin(ctx context.Context, in LoginInput) (*models.Admin, error) {
	login := strings.TrimSpace(in.Login)
	var admin models.Admin
	err := s.inTx(ctx, "admin_login", map[string]any{"login": login}, func(tx *gorm.DB) error {
		err := tx.Where("admin_id = ? OR email = ?", login, strings.ToLower(login)).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(in.Password)) != nil {
			return apperrors.ErrInvalidCredentials
		}
		if admin.Status != models.AdminStatusActive {
			return apperrors.ErrAccountBlocked.WithMessage("Admin account is inactive")
		}

		now := s.Now()
		admin.LastLogin = &now
		admin.IPAddress = in.IP
		if err := tx.Model(&admin).Updates(map[string]any{"last_login": now, "ip_address": in.IP}).Error; err != nil {
			return err
		}
		return logActivity(tx, Principal{ID: admin.AdminID, Role: Role(admin.Role), IP: in.IP, Device: in.Device}, now, "Admin login", nil)
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// ActiveUser loads a user for token verification. Blocked users are refused.
func (s *Service) ActiveUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, translate(err)
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountBlocked
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, p Principal, current, next string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.saltRound)
	if err != nil {
		return apperrors.Internal(err, "Failed to hash password")
	}
	return s.inTx(ctx, "change_password", map[string]any{"userId": p.ID}, func(tx *gorm.DB) error {
		user, err := lockActiveUser(tx, p.ID)
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
			return apperrors.ErrInvalidCredentials.WithMessage("Current password is incorrect")
		}
		return tx.Model(user).Update("password", string(hash)).Error
	})
}

// UpdateProfile changes name and mobile. Empty values are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, p Principal, name, mobile string) (*models.User, error) {
	var user *models.User
	err := s.inTx(ctx, "update_profile", map[string]any{"userId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, err = lockActiveUser(tx, p.ID)
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if name = strings.TrimSpace(name); name != "" {
			updates["name"] = name
			user.Name = name
		}
		if mobile != "" {
			updates["mobile"] = mobile
			user.Mobile = mobile
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LoginHistory lists a user's recorded logins, newest first.
func (s *Service) LoginHistory(ctx context.Context, p Principal, page Page) ([]models.LoginTracking, int64, error) {
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.LoginTracking{}).Where("user_id = ?", p.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch login history")
	}
	var rows []models.LoginTracking
	if err := query.Order("timestamp DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch login history")
	}
	return rows, total, nil
}
