package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"capitalrise/apperrors"
	"capitalrise/config"
	"capitalrise/database"
	"capitalrise/logger"
	"capitalrise/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Subject)
	}
	return out
}

type harness struct {
	svc      *Service
	db       *gorm.DB
	clock    *fakeClock
	notifier *recordingNotifier
	ctx      context.Context
}

var (
	superAdmin = Principal{ID: "ADMIN001", Name: "Root", Role: RoleSuperAdmin, IP: "127.0.0.1"}
	admin      = Principal{ID: "ADMIN002", Name: "Ops", Role: RoleAdmin}
	support    = Principal{ID: "SUPPORT1", Name: "Help", Role: RoleSupport}
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	dialector, err := database.Dialector("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db, err := gorm.Open(dialector, database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, &config.Config{}, logger.Discard()))

	clock := &fakeClock{now: time.Date(2026, 10, 15, 10, 0, 0, 0, ist)}
	notifier := &recordingNotifier{}
	svc := NewService(db, Options{
		DefaultSponsorID: "CAPITAL01",
		SaltRound:        bcrypt.MinCost,
		Location:         ist,
		Now:              clock.Now,
		Notifier:         notifier,
		Log:              logger.Discard(),
	})
	return &harness{svc: svc, db: db, clock: clock, notifier: notifier, ctx: context.Background()}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// register creates a user through the public path and returns it.
func (h *harness) register(t *testing.T, email, sponsor string) *models.User {
	t.Helper()
	user, err := h.svc.Register(h.ctx, RegisterInput{
		Name:      "Test " + email,
		Email:     email,
		Mobile:    "9876543210",
		Password:  "secret123",
		SponsorID: sponsor,
	})
	require.NoError(t, err)
	return user
}

// fund gives a user wallet money through the admin credit path.
func (h *harness) fund(t *testing.T, userID, amount string) {
	t.Helper()
	_, err := h.svc.AddUserBalance(h.ctx, admin, userID, dec(amount), "test funding", "")
	require.NoError(t, err)
}

func (h *harness) user(t *testing.T, userID string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, h.db.Where("user_id = ?", userID).First(&u).Error)
	return &u
}

func (h *harness) setSetting(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, h.svc.UpdateSettings(h.ctx, superAdmin, map[string]string{key: value}))
}

func (h *harness) countTransactions(t *testing.T, userID string, txnType models.TransactionType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Transaction{}).Where("user_id = ? AND type = ?", userID, txnType).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), err.Error())
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
