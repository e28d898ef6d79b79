// Package ledger holds every balance-changing rule of the platform: wallet
// credits and debits, package subscriptions, daily task income, referral
// commissions and the deposit, withdrawal and KYC workflows.
//
// Each operation runs in one store transaction. Row locks are taken in the
// order user row, workflow row, audit row.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"capitalrise/apperrors"
	"capitalrise/logger"
	"capitalrise/monitoring"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notification is an outbound message to a user, sent after commit.
type Notification struct {
	Email   string
	Name    string
	Subject string
	Title   string
	Body    string
}

// Notifier delivers notifications. Failures are logged by the implementation.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// KYCLinkChecker looks up whether a PAN is seeded with an Aadhaar number.
type KYCLinkChecker interface {
	PanAadhaarLinked(ctx context.Context, pan, aadhaar string) (bool, error)
}

type Options struct {
	DefaultSponsorID string
	SaltRound        int
	Location         *time.Location
	Now              func() time.Time
	Notifier         Notifier
	LinkChecker      KYCLinkChecker
	Log              *logrus.Logger
}

type Service struct {
	db               *gorm.DB
	log              *logrus.Logger
	notifier         Notifier
	linkChecker      KYCLinkChecker
	loc              *time.Location
	now              func() time.Time
	defaultSponsorID string
	saltRound        int
}

func NewService(db *gorm.DB, opts Options) *Service {
	s := &Service{
		db:               db,
		log:              opts.Log,
		notifier:         opts.Notifier,
		linkChecker:      opts.LinkChecker,
		loc:              opts.Location,
		now:              opts.Now,
		defaultSponsorID: opts.DefaultSponsorID,
		saltRound:        opts.SaltRound,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultSponsorID == "" {
		s.defaultSponsorID = "CAPITAL01"
	}
	if s.saltRound == 0 {
		s.saltRound = 10
	}
	return s
}

// DefaultSponsorID is the reserved sponsor that never earns commission.
func (s *Service) DefaultSponsorID() string {
	return s.defaultSponsorID
}

// Now returns the current time in the platform time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// DB exposes the store handle to read-only collaborators like the scheduler.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// inTx runs fn in one transaction and converts the outcome to an AppError.
func (s *Service) inTx(ctx context.Context, op string, fields logrus.Fields, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		monitoring.RecordOperation(op, "ok")
		s.log.WithFields(fields).WithField("op", op).Debug("ledger operation committed")
		return nil
	}

	appErr := translate(err)
	monitoring.RecordOperation(op, strings.ToLower(string(appErr.Kind)))
	entry := s.log.WithFields(fields).WithField("op", op).WithField("code", appErr.Code)
	if appErr.Kind == apperrors.KindInternal {
		entry.WithError(err).Error("ledger operation failed")
	} else {
		entry.Info("ledger operation rejected")
	}
	return appErr
}

func translate(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateOperation
	}
	return apperrors.Internal(err, "Operation failed. Please try again.")
}

// onDuplicate maps a unique violation to a specific conflict.
func onDuplicate(err error, conflict *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *Service) notify(ctx context.Context, n Notification) {
	if s.notifier == nil || n.Email == "" {
		return
	}
	s.notifier.Notify(context.WithoutCancel(ctx), n)
}

// generateID returns prefix followed by 12 uppercase hex characters.
func generateID(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Page is a window of a listing.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}
