package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"capitalrise/apperrors"
	"capitalrise/config"
	"capitalrise/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newTestAuth() *Auth {
	return NewAuth(&config.Config{JWTKey: "test-secret", UserTokenTTLHrs: 24, AdminTokenTTLHrs: 8})
}

func newTestApp(a *Auth) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	who := func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"id": p.ID, "role": p.Role})
	}
	app.Get("/me", a.JWTMiddleware(), who)
	app.Get("/admin/me", a.AdminJWTMiddleware(), who)
	app.Get("/admin/settings", a.AdminJWTMiddleware(), RequireRole(ledger.RoleSuperAdmin), who)
	app.Get("/open/settings", RequireRole(ledger.RoleSuperAdmin), who)
	app.Get("/fail", func(c *fiber.Ctx) error { return apperrors.ErrInsufficientBalance })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("connection refused") })
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func bearer(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTMiddleware(t *testing.T) {
	a := newTestAuth()
	app := newTestApp(a)

	userToken, err := a.GenerateJWT("USER0001", "Asha", "asha@example.com")
	require.NoError(t, err)
	adminToken, err := a.GenerateAdminJWT("ADMIN001", "Root", string(ledger.RoleSuperAdmin), "root@example.com")
	require.NoError(t, err)

	status, env := do(t, app, bearer("/me", userToken))
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"id":"USER0001","role":"User"}`, string(env.Data))

	status, _ = do(t, app, bearer("/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+userToken)
	status, env = do(t, app, req)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid Authorization header format", env.Message)

	status, _ = do(t, app, bearer("/me", adminToken))
	assert.Equal(t, fiber.StatusUnauthorized, status, "admin token is not a user token")
	status, _ = do(t, app, bearer("/admin/me", userToken))
	assert.Equal(t, fiber.StatusUnauthorized, status, "user token is not an admin token")

	status, env = do(t, app, bearer("/admin/me", adminToken))
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"id":"ADMIN001","role":"Super Admin"}`, string(env.Data))
}

func TestJWTMiddlewareCookie(t *testing.T) {
	a := newTestAuth()
	app := newTestApp(a)
	token, err := a.GenerateJWT("USER0002", "Ravi", "ravi@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: UserCookie, Value: token})
	status, env := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), "USER0002")
}

func TestJWTMiddlewareRejectsExpiredAndForeignTokens(t *testing.T) {
	a := newTestAuth()
	app := newTestApp(a)

	a.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expired, err := a.GenerateJWT("USER0001", "Asha", "asha@example.com")
	require.NoError(t, err)
	a.now = time.Now

	status, env := do(t, app, bearer("/me", expired))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", env.Message)

	other := NewAuth(&config.Config{JWTKey: "another-secret", UserTokenTTLHrs: 24})
	foreign, err := other.GenerateJWT("USER0001", "Asha", "asha@example.com")
	require.NoError(t, err)
	status, _ = do(t, app, bearer("/me", foreign))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRequireRole(t *testing.T) {
	a := newTestAuth()
	app := newTestApp(a)

	support, err := a.GenerateAdminJWT("SUPPORT1", "Help", string(ledger.RoleSupport), "help@example.com")
	require.NoError(t, err)
	root, err := a.GenerateAdminJWT("ADMIN001", "Root", string(ledger.RoleSuperAdmin), "root@example.com")
	require.NoError(t, err)

	status, env := do(t, app, bearer("/admin/settings", support))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.False(t, env.Success)

	status, _ = do(t, app, bearer("/admin/settings", root))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, bearer("/open/settings", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp(newTestAuth())

	status, env := do(t, app, bearer("/fail", ""))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Code)
	assert.Equal(t, "Insufficient balance", env.Message)

	status, env = do(t, app, bearer("/boom", ""))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, env.Message, "connection refused")

	status, env = do(t, app, bearer("/missing", ""))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("requestId").(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated, string(body))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-id-1", resp.Header.Get(RequestIDHeader))
}
