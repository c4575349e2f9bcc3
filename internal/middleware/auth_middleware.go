package middleware

import (
	"errors"
	"strings"

	"go-storefront/internal/model"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Keys of the session values stored in fiber locals
const (
	LocalUserID    = "user_id"
	LocalUserLogin = "user_login"
	LocalUserName  = "user_name"
	LocalRole      = "role"
)

// bearerToken extracts the token from "Bearer <token>"; ok is false when
// the header is present but malformed.
func bearerToken(c *fiber.Ctx) (token string, present bool, ok bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false, true
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", true, false
	}
	return parts[1], true, true
}

func setSession(c *fiber.Ctx, session *service.SessionInfo) {
	c.Locals(LocalUserID, session.User.ID)
	c.Locals(LocalUserLogin, session.User.Login)
	c.Locals(LocalUserName, session.User.FullName)
	c.Locals(LocalRole, session.Role)
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, present, ok := bearerToken(c)
		if !present {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		session, err := authService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged out or logged in elsewhere)"})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		setSession(c, session)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through as guests. A token that is
// sent must still be valid.
func OptionalAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, present, ok := bearerToken(c)
		if !present {
			c.Locals(LocalRole, model.RoleGuest)
			return c.Next()
		}
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		session, err := authService.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		setSession(c, session)
		return c.Next()
	}
}

// RoleFrom returns the session role, guest when none was set
func RoleFrom(c *fiber.Ctx) model.Role {
	if role, ok := c.Locals(LocalRole).(model.Role); ok {
		return role
	}
	return model.RoleGuest
}

// UserIDFrom returns the authenticated user id
func UserIDFrom(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}

// RequireRole checks the session role against allowed
func RequireRole(allowed func(model.Role) bool, what string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !allowed(RoleFrom(c)) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: your role may not " + what,
			})
		}
		return c.Next()
	}
}

func RequireManager() fiber.Handler {
	return RequireRole(model.Role.CanViewOrders, "view orders")
}

func RequireAdmin() fiber.Handler {
	return RequireRole(model.Role.CanManage, "manage records")
}
