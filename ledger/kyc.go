package ledger

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern   = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

func ValidAadhar(s string) bool { return aadharPattern.MatchString(s) }
func ValidPan(s string) bool    { return panPattern.MatchString(s) }
func ValidIFSC(s string) bool   { return ifscPattern.MatchString(s) }

type KYCInput struct {
	UserID       string
	Name         string
	DOB          time.Time
	AadharNumber string
	PanNumber    string
	BankAccount  string
	IFSCCode     string
	AadharFront  string
	AadharBack   string
	PanCard      string
	Device       string
}

// SubmitKYC stores the user's only KYC submission and marks the user Under Review.
func (s *Service) SubmitKYC(ctx context.Context, in KYCInput) (*models.KYCRequest, error) {
	pan := strings.ToUpper(strings.TrimSpace(in.PanNumber))
	ifsc := strings.ToUpper(strings.TrimSpace(in.IFSCCode))
	if !ValidAadhar(in.AadharNumber) {
		return nil, apperrors.Validation("Invalid Aadhar number. Must be 12 digits.")
	}
	if !ValidPan(pan) {
		return nil, apperrors.Validation("Invalid PAN number format")
	}
	if ifsc != "" && !ValidIFSC(ifsc) {
		return nil, apperrors.Validation("Invalid IFSC code")
	}

	var req models.KYCRequest
	err := s.inTx(ctx, "submit_kyc", map[string]any{"userId": in.UserID}, func(tx *gorm.DB) error {
		user, err := lockActiveUser(tx, in.UserID)
		if err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.KYCRequest{}).Where("user_id = ?", user.UserID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.ErrKYCAlreadySubmitted
		}

		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = user.Name
		}
		req = models.KYCRequest{
			UserID:       user.UserID,
			Name:         name,
			DOB:          datatypes.Date(in.DOB),
			AadharNumber: in.AadharNumber,
			PanNumber:    pan,
			BankAccount:  in.BankAccount,
			IFSCCode:     ifsc,
			AadharFront:  in.AadharFront,
			AadharBack:   in.AadharBack,
			PanCard:      in.PanCard,
			Status:       models.KYCStatusPending,
			SubmittedAt:  s.Now(),
			DeviceInfo:   in.Device,
		}
		if err := tx.Create(&req).Error; err != nil {
			return onDuplicate(err, apperrors.ErrKYCAlreadySubmitted)
		}
		return tx.Model(user).Update("kyc_status", models.KYCStatusUnderReview).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func findKYC(tx *gorm.DB, userID string, lock bool) (*models.KYCRequest, error) {
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var req models.KYCRequest
	err := q.Where("user_id = ?", userID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrKYCNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// KYCStatus returns the user's request, or ErrKYCNotFound when none was made.
func (s *Service) KYCStatus(ctx context.Context, userID string) (*models.KYCRequest, error) {
	req, err := findKYC(s.db.WithContext(ctx), userID, false)
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

// decideKYC locks user then request and checks the request is still open.
func decideKYC(tx *gorm.DB, userID string) (*models.User, *models.KYCRequest, error) {
	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, nil, err
	}
	req, err := findKYC(tx, userID, true)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != models.KYCStatusPending && req.Status != models.KYCStatusUnderReview {
		return nil, nil, apperrors.ErrRequestAlreadyProcessed
	}
	return user, req, nil
}

// MarkKYCUnderReview moves a Pending request to Under Review. It may also
// record the PAN-Aadhaar link status when a checker is configured.
func (s *Service) MarkKYCUnderReview(ctx context.Context, p Principal, userID string) (*models.KYCRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	var req *models.KYCRequest
	err := s.inTx(ctx, "review_kyc", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		var user *models.User
		user, req, err = decideKYC(tx, userID)
		if err != nil {
			return err
		}
		now := s.Now()
		if err := tx.Model(req).Updates(map[string]any{"status": models.KYCStatusUnderReview, "reviewed_by": p.ID}).Error; err != nil {
			return err
		}
		req.Status = models.KYCStatusUnderReview
		req.ReviewedBy = p.ID
		if err := tx.Model(user).Update("kyc_status", models.KYCStatusUnderReview).Error; err != nil {
			return err
		}
		return logActivity(tx, p, now, "Marked KYC under review", map[string]any{"userId": userID})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CheckPanAadhaarLink asks the external checker and stores the answer on the request.
func (s *Service) CheckPanAadhaarLink(ctx context.Context, p Principal, userID string) (*models.KYCRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	if s.linkChecker == nil {
		return nil, apperrors.Internal(errors.New("link checker not configured"), "PAN-Aadhaar verification is unavailable")
	}
	req, err := findKYC(s.db.WithContext(ctx), userID, false)
	if err != nil {
		return nil, translate(err)
	}

	// The external call stays outside the store transaction.
	linked, err := s.linkChecker.PanAadhaarLinked(ctx, req.PanNumber, req.AadharNumber)
	if err != nil {
		return nil, apperrors.Internal(err, "PAN-Aadhaar status check failed")
	}

	err = s.inTx(ctx, "check_kyc_link", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		if err := tx.Model(req).Update("pan_aadhaar_linked", linked).Error; err != nil {
			return err
		}
		req.PanAadhaarLinked = &linked
		return logActivity(tx, p, s.Now(), "Checked PAN-Aadhaar link", map[string]any{"userId": userID, "linked": linked})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveKYC approves the request, unlocks withdrawals and pays the optional KYC bonus.
func (s *Service) ApproveKYC(ctx context.Context, p Principal, userID, notes string) (*models.KYCRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	var req *models.KYCRequest
	var user *models.User
	err := s.inTx(ctx, "approve_kyc", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, req, err = decideKYC(tx, userID)
		if err != nil {
			return err
		}
		now := s.Now()
		if err := s.closeKYC(tx, req, models.KYCStatusApproved, p, notes, now); err != nil {
			return err
		}
		if err := tx.Model(user).Update("kyc_status", models.KYCStatusApproved).Error; err != nil {
			return err
		}
		user.KYCStatus = models.KYCStatusApproved

		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if bonus := round2(settings.KYCBonus); bonus.IsPositive() {
			if _, err := apply(tx, user, change{balance: bonus, totalIncome: bonus}, bonus, Entry{
				Type:        models.TransactionTypeKYCBonus,
				Description: "KYC verification bonus",
				AdminID:     p.ID,
			}); err != nil {
				return err
			}
		}
		return logActivity(tx, p, now, "Approved KYC", map[string]any{"userId": userID})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "KYC approved",
		Title:   "KYC approved",
		Body:    "Your KYC verification is complete. Withdrawals are now enabled on your account.",
	})
	return req, nil
}

// RejectKYC rejects the request with a reason. There is no resubmission path.
func (s *Service) RejectKYC(ctx context.Context, p Principal, userID, reason string) (*models.KYCRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("Rejection reason is required")
	}
	var req *models.KYCRequest
	var user *models.User
	err := s.inTx(ctx, "reject_kyc", map[string]any{"userId": userID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, req, err = decideKYC(tx, userID)
		if err != nil {
			return err
		}
		now := s.Now()
		if err := s.closeKYC(tx, req, models.KYCStatusRejected, p, reason, now); err != nil {
			return err
		}
		if err := tx.Model(user).Update("kyc_status", models.KYCStatusRejected).Error; err != nil {
			return err
		}
		return logActivity(tx, p, now, "Rejected KYC", map[string]any{"userId": userID, "reason": reason})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "KYC rejected",
		Title:   "KYC rejected",
		Body:    "Your KYC verification was rejected. Reason: " + reason,
	})
	return req, nil
}

func (s *Service) closeKYC(tx *gorm.DB, req *models.KYCRequest, status models.KYCStatus, p Principal, notes string, now time.Time) error {
	res := tx.Model(&models.KYCRequest{}).
		Where("id = ? AND status IN ?", req.ID, []models.KYCStatus{models.KYCStatusPending, models.KYCStatusUnderReview}).
		Updates(map[string]any{"status": status, "reviewed_by": p.ID, "reviewed_at": now, "notes": notes})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRequestAlreadyProcessed
	}
	req.Status = status
	req.ReviewedBy = p.ID
	req.ReviewedAt = &now
	req.Notes = notes
	return nil
}

// KYCRequests lists requests, optionally by status.
func (s *Service) KYCRequests(ctx context.Context, p Principal, status models.KYCStatus, page Page) ([]models.KYCRequest, int64, error) {
	if err := p.canRead(); err != nil {
		return nil, 0, err
	}
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.KYCRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch KYC requests")
	}
	var rows []models.KYCRequest
	if err := query.Order("submitted_at DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch KYC requests")
	}
	return rows, total, nil
}
