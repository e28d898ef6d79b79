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

type WithdrawalInput struct {
	UserID         string
	Amount         decimal.Decimal
	Method         string
	AccountDetails string
	Device         string
}

// WithdrawalFee splits amount into the fee and the net payout.
func WithdrawalFee(amount, feePercent decimal.Decimal) (fee, net decimal.Decimal) {
	fee = round2(amount.Mul(feePercent).Div(hundred))
	return fee, amount.Sub(fee)
}

// SubmitWithdrawal debits the full amount immediately and opens a Pending
// request. Fee and net payout are fixed here from the current fee percent.
func (s *Service) SubmitWithdrawal(ctx context.Context, in WithdrawalInput) (*models.WithdrawalRequest, error) {
	amount := round2(in.Amount)
	method := strings.TrimSpace(in.Method)
	if method == "" || strings.TrimSpace(in.AccountDetails) == "" {
		return nil, apperrors.Validation("Withdrawal method and account details are required")
	}

	var req models.WithdrawalRequest
	var user *models.User
	err := s.inTx(ctx, "submit_withdrawal", map[string]any{"userId": in.UserID}, func(tx *gorm.DB) error {
		var err error
		user, err = lockActiveUser(tx, in.UserID)
		if err != nil {
			return err
		}
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if amount.LessThan(settings.MinWithdrawal) {
			return apperrors.Validation("Minimum withdrawal amount is ₹" + settings.MinWithdrawal.StringFixed(2))
		}
		if user.Balance.LessThan(amount) {
			return apperrors.ErrInsufficientBalance.WithMessage("Insufficient balance. Available: ₹%s", user.Balance.StringFixed(2))
		}
		if user.KYCStatus != models.KYCStatusApproved {
			return apperrors.ErrKYCNotApproved
		}

		fee, net := WithdrawalFee(amount, settings.WithdrawalFeePercent)
		req = models.WithdrawalRequest{
			RequestID:      generateID("WDR"),
			UserID:         user.UserID,
			Name:           user.Name,
			Amount:         amount,
			Method:         method,
			AccountDetails: in.AccountDetails,
			Fee:            fee,
			NetAmount:      net,
			Status:         models.RequestStatusPending,
			DeviceInfo:     in.Device,
		}
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		_, err = apply(tx, user, change{balance: amount.Neg()}, amount, Entry{
			Type:        models.TransactionTypeWithdrawal,
			Status:      models.TransactionStatusPending,
			Description: "Withdrawal request to " + method,
			ReferenceID: req.RequestID,
			DeviceInfo:  in.Device,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordAmount("submit_withdrawal", amount.InexactFloat64())
	return &req, nil
}

func findWithdrawal(tx *gorm.DB, requestID string, lock bool) (*models.WithdrawalRequest, error) {
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var req models.WithdrawalRequest
	err := q.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// decideWithdrawal locks user then request and checks the request is Pending.
func decideWithdrawal(tx *gorm.DB, requestID string) (*models.User, *models.WithdrawalRequest, error) {
	peek, err := findWithdrawal(tx, requestID, false)
	if err != nil {
		return nil, nil, err
	}
	user, err := lockUser(tx, peek.UserID)
	if err != nil {
		return nil, nil, err
	}
	req, err := findWithdrawal(tx, requestID, true)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, nil, apperrors.ErrRequestAlreadyProcessed
	}
	return user, req, nil
}

func closeWithdrawalTransaction(tx *gorm.DB, requestID string, status models.TransactionStatus) error {
	return tx.Model(&models.Transaction{}).
		Where("reference_id = ? AND type = ? AND status = ?", requestID, models.TransactionTypeWithdrawal, models.TransactionStatusPending).
		Update("status", status).Error
}

// ApproveWithdrawal settles a Pending withdrawal against an external reference
// and records the net payout. The platform pool shrinks by the net amount.
func (s *Service) ApproveWithdrawal(ctx context.Context, p Principal, requestID, settlementRef, notes string) (*models.WithdrawalRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	settlementRef = strings.TrimSpace(settlementRef)
	if settlementRef == "" {
		return nil, apperrors.Validation("Settlement reference is required")
	}

	var req *models.WithdrawalRequest
	var user *models.User
	err := s.inTx(ctx, "approve_withdrawal", map[string]any{"requestId": requestID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, req, err = decideWithdrawal(tx, requestID)
		if err != nil {
			return err
		}

		now := s.Now()
		if err := transition(tx, &models.WithdrawalRequest{}, req.ID, map[string]any{
			"status":         models.RequestStatusApproved,
			"settlement_ref": settlementRef,
			"processed_at":   now,
			"approved_by":    p.ID,
			"notes":          notes,
		}); err != nil {
			return err
		}
		req.Status = models.RequestStatusApproved
		req.SettlementRef = settlementRef
		req.ProcessedAt = &now
		req.ApprovedBy = p.ID
		req.Notes = notes

		if err := closeWithdrawalTransaction(tx, req.RequestID, models.TransactionStatusApproved); err != nil {
			return err
		}
		if _, err := record(tx, user, req.NetAmount, Entry{
			Type:        models.TransactionTypeWithdrawal,
			Status:      models.TransactionStatusCompleted,
			Description: "Withdrawal paid out, ref " + settlementRef + " (fee ₹" + req.Fee.StringFixed(2) + ")",
			ReferenceID: req.RequestID,
			AdminID:     p.ID,
		}); err != nil {
			return err
		}
		if err := adjustPlatformBalance(tx, req.NetAmount.Neg()); err != nil {
			return err
		}
		return logActivity(tx, p, now, "Approved withdrawal", map[string]any{
			"requestId": req.RequestID, "userId": req.UserID, "netAmount": req.NetAmount.StringFixed(2), "settlementRef": settlementRef,
		})
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordAmount("approve_withdrawal", req.NetAmount.InexactFloat64())
	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Withdrawal processed",
		Title:   "Withdrawal processed",
		Body:    "Your withdrawal " + req.RequestID + " of ₹" + req.NetAmount.StringFixed(2) + " has been paid. Reference: " + settlementRef,
	})
	return req, nil
}

// RejectWithdrawal closes a Pending withdrawal and refunds the full amount.
func (s *Service) RejectWithdrawal(ctx context.Context, p Principal, requestID, reason string) (*models.WithdrawalRequest, error) {
	if err := p.canProcess(); err != nil {
		return nil, err
	}
	var req *models.WithdrawalRequest
	var user *models.User
	err := s.inTx(ctx, "reject_withdrawal", map[string]any{"requestId": requestID, "adminId": p.ID}, func(tx *gorm.DB) error {
		var err error
		user, req, err = decideWithdrawal(tx, requestID)
		if err != nil {
			return err
		}

		now := s.Now()
		if err := transition(tx, &models.WithdrawalRequest{}, req.ID, map[string]any{
			"status":       models.RequestStatusRejected,
			"processed_at": now,
			"approved_by":  p.ID,
			"notes":        reason,
		}); err != nil {
			return err
		}
		req.Status = models.RequestStatusRejected
		req.ProcessedAt = &now
		req.ApprovedBy = p.ID
		req.Notes = reason

		if err := closeWithdrawalTransaction(tx, req.RequestID, models.TransactionStatusRejected); err != nil {
			return err
		}
		if _, err := apply(tx, user, change{balance: req.Amount}, req.Amount, Entry{
			Type:        models.TransactionTypeWithdrawalRefund,
			Description: "Refund for rejected withdrawal " + req.RequestID,
			ReferenceID: req.RequestID,
			AdminID:     p.ID,
		}); err != nil {
			return err
		}
		return logActivity(tx, p, now, "Rejected withdrawal", map[string]any{
			"requestId": req.RequestID, "userId": req.UserID, "amount": req.Amount.StringFixed(2), "reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordAmount("withdrawal_refund", req.Amount.InexactFloat64())
	s.notify(ctx, Notification{
		Email:   user.Email,
		Name:    user.Name,
		Subject: "Withdrawal rejected",
		Title:   "Withdrawal rejected",
		Body:    "Your withdrawal " + req.RequestID + " was rejected and ₹" + req.Amount.StringFixed(2) + " has been returned to your wallet. Reason: " + reason,
	})
	return req, nil
}

// Withdrawals lists withdrawal requests, optionally filtered by status and user.
func (s *Service) Withdrawals(ctx context.Context, status models.RequestStatus, userID string, page Page) ([]models.WithdrawalRequest, int64, error) {
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.WithdrawalRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch withdrawals")
	}
	var rows []models.WithdrawalRequest
	if err := query.Order("created_at DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch withdrawals")
	}
	return rows, total, nil
}
