package middleware

import (
	"fmt"
	"strings"
	"time"

	"capitalrise/config"
	"capitalrise/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenTypeUser  = "user"
	tokenTypeAdmin = "admin"

	// UserCookie and AdminCookie carry the token for browser clients.
	UserCookie  = "token"
	AdminCookie = "admin_token"

	principalKey = "principal"
)

// Claims is the token payload shared by user and admin tokens.
type Claims struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Auth issues and verifies tokens.
type Auth struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

func NewAuth(cfg *config.Config) *Auth {
	return &Auth{
		secret:   []byte(cfg.JWTKey),
		userTTL:  time.Duration(cfg.UserTokenTTLHrs) * time.Hour,
		adminTTL: time.Duration(cfg.AdminTokenTTLHrs) * time.Hour,
		now:      time.Now,
	}
}

// UserTTL is the lifetime of user tokens, also used for the cookie.
func (a *Auth) UserTTL() time.Duration { return a.userTTL }

// AdminTTL is the lifetime of admin tokens.
func (a *Auth) AdminTTL() time.Duration { return a.adminTTL }

// GenerateJWT generates a JWT token for the user
func (a *Auth) GenerateJWT(userID, name, email string) (string, error) {
	return a.sign(userID, name, string(ledger.RoleUser), email, tokenTypeUser, a.userTTL)
}

// GenerateAdminJWT generates a JWT token for an admin
func (a *Auth) GenerateAdminJWT(adminID, name, role, email string) (string, error) {
	return a.sign(adminID, name, role, email, tokenTypeAdmin, a.adminTTL)
}

func (a *Auth) sign(subject, name, role, email, typ string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Name:  name,
		Role:  role,
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Check if the token method is valid
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// JWTMiddleware accepts user tokens from the Authorization header or the token cookie.
func (a *Auth) JWTMiddleware() fiber.Handler {
	return a.middleware(tokenTypeUser, UserCookie)
}

// AdminJWTMiddleware accepts admin tokens only.
func (a *Auth) AdminJWTMiddleware() fiber.Handler {
	return a.middleware(tokenTypeAdmin, AdminCookie)
}

func (a *Auth) middleware(typ, cookie string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(cookie)
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// The token should be prefixed with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
			}
			tokenString = authHeader[len("Bearer "):]
		}
		if tokenString == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		claims, err := a.parse(tokenString)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}
		if claims.Type != typ || claims.Subject == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
		}

		c.Locals(principalKey, ledger.Principal{
			ID:     claims.Subject,
			Name:   claims.Name,
			Role:   ledger.Role(claims.Role),
			IP:     c.IP(),
			Device: c.Get(fiber.HeaderUserAgent),
		})
		return c.Next()
	}
}

// GetPrincipal returns the caller set by the JWT middleware.
func GetPrincipal(c *fiber.Ctx) ledger.Principal {
	p, _ := c.Locals(principalKey).(ledger.Principal)
	return p
}
