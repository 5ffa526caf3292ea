package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
)

const (
	ctxUserID = applog.UserIDKey
	ctxClaims = "claims"
)

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func authenticate(c *fiber.Ctx, tokens *services.TokenService) (*services.Claims, error) {
	if cl, ok := c.Locals(ctxClaims).(*services.Claims); ok {
		return cl, nil
	}
	raw := bearer(c)
	if raw == "" {
		applog.Security(c, "auth.token.missing", nil)
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	cl, err := tokens.Parse(raw)
	if err != nil {
		applog.Security(c, "auth.token.invalid", nil)
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	c.Locals(ctxClaims, cl)
	c.Locals(ctxUserID, cl.UserID())
	return cl, nil
}

// RequireUser admits any caller with a valid bearer token.
func RequireUser(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authenticate(c, tokens); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin admits only tokens carrying the admin role.
func RequireAdmin(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl, err := authenticate(c, tokens)
		if err != nil {
			return err
		}
		if !cl.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
