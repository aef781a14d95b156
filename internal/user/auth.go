package user

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ContextKey is where the parsed *jwt.Token lives in fiber locals.
const ContextKey = "user"

// Protected returns the JWT middleware guarding authenticated routes.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

// OptionalAuth parses a bearer token when one is sent and otherwise lets
// the request through anonymously. A token that is sent but invalid is
// rejected rather than silently downgraded to a guest.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		c.Locals(ContextKey, tok)
		return c.Next()
	}
}

// RequireAdmin must run after Protected.
func RequireAdmin(c *fiber.Ctx) error {
	if GetRoleFromCtx(c) != RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", fiber.ErrUnauthorized
	}
	return id, nil
}

func GetRoleFromCtx(c *fiber.Ctx) Role {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return Role(role)
}
