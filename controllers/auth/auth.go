package authController

import (
	"time"

	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/validators"
	authValidator "capitalrise/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc  *ledger.Service
	auth *middleware.Auth
	log  *logrus.Logger
}

func New(svc *ledger.Service, auth *middleware.Auth, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, auth: auth, log: log}
}

func (h *Handler) setCookie(c *fiber.Ctx, name, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.SignupRequest)

	user, err := h.svc.Register(c.UserContext(), ledger.RegisterInput{
		Name:      reqData.Name,
		Email:     reqData.Email,
		Mobile:    reqData.Mobile,
		Password:  reqData.Password,
		SponsorID: reqData.SponsorID,
		IP:        c.IP(),
		Device:    c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := h.auth.GenerateJWT(user.UserID, user.Name, user.Email)
	if err != nil {
		h.log.WithError(err).Error("Error generating JWT")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	h.setCookie(c, middleware.UserCookie, token, h.auth.UserTTL())

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	user, err := h.svc.Login(c.UserContext(), ledger.LoginInput{
		Login:    reqData.Login,
		Password: reqData.Password,
		IP:       c.IP(),
		Device:   c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := h.auth.GenerateJWT(user.UserID, user.Name, user.Email)
	if err != nil {
		h.log.WithError(err).Error("Error generating JWT")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	h.setCookie(c, middleware.UserCookie, token, h.auth.UserTTL())

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) AdminLogin(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	admin, err := h.svc.AdminLogin(c.UserContext(), ledger.LoginInput{
		Login:    reqData.Login,
		Password: reqData.Password,
		IP:       c.IP(),
		Device:   c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := h.auth.GenerateAdminJWT(admin.AdminID, admin.Name, string(admin.Role), admin.Email)
	if err != nil {
		h.log.WithError(err).Error("Error generating admin JWT")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	h.setCookie(c, middleware.AdminCookie, token, h.auth.AdminTTL())

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"admin": admin,
		"token": token,
	})
}

// Logout clears both auth cookies. Bearer tokens simply expire.
func (h *Handler) Logout(c *fiber.Ctx) error {
	for _, name := range []string{middleware.UserCookie, middleware.AdminCookie} {
		c.Cookie(&fiber.Cookie{Name: name, Value: "", Path: "/", Expires: time.Unix(0, 0), HTTPOnly: true})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

func (h *Handler) LoginHistoryList(c *fiber.Ctx) error {
	page := validators.GetPage(c)
	history, total, err := h.svc.LoginHistory(c.UserContext(), middleware.GetPrincipal(c), page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.ListResponse(c, "Login history fetched successfully.", "history", history, total, page)
}

func (h *Handler) ChangeLoginPassword(c *fiber.Ctx) error {
	reqData := c.Locals("validatedChangePassword").(*authValidator.ChangePasswordRequest)
	if err := h.svc.ChangePassword(c.UserContext(), middleware.GetPrincipal(c), reqData.CurrentPassword, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
