package ledger

import (
	"context"
	"errors"
	"strings"

	"capitalrise/apperrors"
	"capitalrise/models"
	"capitalrise/monitoring"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DepositInput struct {
	UserID           string
	Amount           decimal.Decimal
	UPITransactionID string
	UserUPIID        string
	Device           string
}

// SubmitDeposit records a Pending deposit and its Pending transaction.
// The balance is untouched until an admin approves it.
func (s *Service) SubmitDeposit(ctx context.Context, in DepositInput) (*models.DepositRequest, error) {
	amount := round2(in.Amount)
	reference := strings.TrimSpace(in.UPITransactionID)
	if reference == "" {
		return nil, apperrors.Validation("UPI transaction ID is required")
	}

	var req models.DepositRequest
	err := s.inTx(ctx, "submit_deposit", map[string]any{"userId": in.UserID}, func(tx *gorm.DB) error {
		user, err := lockActiveUser(tx, in.UserID)
		if err != nil {
			return err
		}
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if amount.LessThan(settings.MinDeposit) {
			return apperrors.Validation("Minimum deposit amount is ₹" + settings.MinDeposit.StringFixed(2))
		}

		var dup int64
		if err := tx.Model(&models.DepositRequest{}).
			Where("upi_transaction_id = ? AND status IN ?", reference, []models.RequestStatus{models.RequestStatusPending, models.RequestStatusApproved}).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return apperrors.ErrDuplicateReference
		}

		req = models.DepositRequest{
			RequestID:        generateID("DEP"),
			UserID:           user.UserID,
			Name:             user.Name,
			Amount:           amount,
			Method:           "UPI",
			UPITransactionID: reference,
			UserUPIID:        in.UserUPIID,
			OpenReference:    &reference,
			Status:           models.RequestStatusPending,
			DeviceInfo:       in.Device,
		}
		if err := tx.Create(&req).Error; err != nil {
			return onDuplicate(err, apperrors.ErrDuplicateReference)
		}
		_, err = record(tx, user, amount, Entry{
			Type:        models.TransactionTypeDeposit,
			Status:      models.TransactionStatusPending,
			Description: "Deposit request via UPI",
			ReferenceID: req.RequestID,
			DeviceInfo:  in.Device,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// lockDeposit loads a deposit request under lock and checks it is still Pending.
func lockDeposit(tx *gorm.DB, requestID string) (*models.DepositRequest, error) {
	var req models.DepositRequest
	err := forUpdate(tx).Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// transition moves a Pending workflow row to its final state. The status
// guard in the WHERE clause makes a concurrent second decision a no-op.
func transition(tx *gorm.DB, model any, id uint, updates map[string]any) error {
	res := tx.Model(model).Where("id = ? AND status = ?", id, models.RequestStatusPending).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRequestAlreadyProcessed
	}
	return nil
}

// ApproveDeposit credits the user, approves the linked transaction and grows
// the platform pool. A second decision fails with ErrRequestAlreadyProcessed.
func (s *Service) ApproveDeposit(ctx context.Context, p Principal, requestID, notes string) (*models.DepositRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	var req *models.DepositRequest
	var user *models.User
	err := s.inTx(ctx, "approve_deposit", map[string]any{"requestId": requestID, "adminId": p.ID}, func(tx *gorm.DB) error {
		peek, err := findDeposit(tx, requestID)
		if err != nil {
			return err
		}
		user, err = lockUser(tx, peek.UserID)
		if err != nil {
			return err
		}
		req, err = lockDeposit(tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return apperrors.ErrRequestAlreadyProcessed
		}

		now := s.Now()
		if err := transition(tx, &models.DepositRequest{}, req.ID, map[string]any{
			"status":      models.RequestStatusApproved,
			"approved_by": p.ID,
			"approved_at": now,
			"notes":       notes,
		}); err != nil {
			return err
		}
		req.Status = models.RequestStatusApproved
		req.ApprovedBy = p.ID
		req.ApprovedAt = &now
		req.Notes = notes

		if err := settleDeposit(tx, user, req, p.ID); err != nil {
			return err
		}
		if err := adjustPlatformBalance(tx, req.Amount); err != nil {
			return err
		}
		return logActivity(tx, p, now, "Approved deposit", map[string]any{
			"requestId": req.RequestID, "userId": req.UserID, "amount": req.Amount.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordAmount("approve_deposit", req.Amount.InexactFloat64())
	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Deposit approved",
		Title:   "Deposit approved",
		Body:    "Your deposit " + req.RequestID + " of ₹" + req.Amount.StringFixed(2) + " has been credited to your wallet.",
	})
	return req, nil
}

// RejectDeposit closes a Pending deposit without moving money.
func (s *Service) RejectDeposit(ctx context.Context, p Principal, requestID, reason string) (*models.DepositRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	var req *models.DepositRequest
	var user *models.User
	err := s.inTx(ctx, "reject_deposit", map[string]any{"requestId": requestID, "adminId": p.ID}, func(tx *gorm.DB) error {
		peek, err := findDeposit(tx, requestID)
		if err != nil {
			return err
		}
		user, err = lockUser(tx, peek.UserID)
		if err != nil {
			return err
		}
		req, err = lockDeposit(tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return apperrors.ErrRequestAlreadyProcessed
		}

		now := s.Now()
		if err := transition(tx, &models.DepositRequest{}, req.ID, map[string]any{
			"status":         models.RequestStatusRejected,
			"approved_by":    p.ID,
			"approved_at":    now,
			"notes":          reason,
			"open_reference": nil,
		}); err != nil {
			return err
		}
		req.Status = models.RequestStatusRejected
		req.ApprovedBy = p.ID
		req.ApprovedAt = &now
		req.Notes = reason

		if err := tx.Model(&models.Transaction{}).
			Where("reference_id = ? AND type = ? AND status = ?", req.RequestID, models.TransactionTypeDeposit, models.TransactionStatusPending).
			Update("status", models.TransactionStatusRejected).Error; err != nil {
			return err
		}
		return logActivity(tx, p, now, "Rejected deposit", map[string]any{
			"requestId": req.RequestID, "userId": req.UserID, "reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Deposit rejected",
		Title:   "Deposit rejected",
		Body:    "Your deposit " + req.RequestID + " of ₹" + req.Amount.StringFixed(2) + " was rejected. Reason: " + reason,
	})
	return req, nil
}

// settleDeposit credits the user and moves the linked Pending transaction to
// Approved. A request without a linked row gets a fresh audit row.
func settleDeposit(tx *gorm.DB, user *models.User, req *models.DepositRequest, adminID string) error {
	var linked models.Transaction
	err := forUpdate(tx).
		Where("reference_id = ? AND type = ? AND status = ?", req.RequestID, models.TransactionTypeDeposit, models.TransactionStatusPending).
		First(&linked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_, err = apply(tx, user, change{balance: req.Amount}, req.Amount, Entry{
			Type:        models.TransactionTypeDeposit,
			Status:      models.TransactionStatusApproved,
			Description: "Deposit via UPI approved",
			ReferenceID: req.RequestID,
			AdminID:     adminID,
		})
		return err
	}
	if err != nil {
		return err
	}

	before, err := mutate(tx, user, change{balance: req.Amount})
	if err != nil {
		return err
	}
	return tx.Model(&linked).Updates(map[string]any{
		"status":         models.TransactionStatusApproved,
		"balance_before": before,
		"balance_after":  user.Balance,
		"admin_id":       adminID,
		"description":    "Deposit via UPI approved",
	}).Error
}

func findDeposit(tx *gorm.DB, requestID string) (*models.DepositRequest, error) {
	var req models.DepositRequest
	err := tx.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Deposits lists deposit requests, optionally filtered by status and user.
func (s *Service) Deposits(ctx context.Context, status models.RequestStatus, userID string, page Page) ([]models.DepositRequest, int64, error) {
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.DepositRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch deposits")
	}
	var rows []models.DepositRequest
	if err := query.Order("created_at DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch deposits")
	}
	return rows, total, nil
}
