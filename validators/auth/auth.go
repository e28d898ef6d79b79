package authValidator

import (
	"strings"

	"capitalrise/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name      string `json:"name" validate:"required,min=3,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Mobile    string `json:"mobile" validate:"required,mobile"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	SponsorID string `json:"sponsorId" validate:"omitempty,max=36"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.SponsorID = strings.ToUpper(strings.TrimSpace(reqData.SponsorID))

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// LoginRequest is shared by user and admin login. Login is an id or an email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}

func ChangeLoginPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangePasswordRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedChangePassword", reqData)
		return c.Next()
	}
}
