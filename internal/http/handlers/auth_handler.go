package handlers

import (
	"github.com/gofiber/fiber/v2"

	"expressbuy/internal/domain"
	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	return h.register(c, domain.RoleUser)
}

// RegisterAdminBootstrap is the open admin sign-up; it closes once any admin exists.
func (h *AuthHandler) RegisterAdminBootstrap(c *fiber.Ctx) error {
	open, err := h.Auth.AdminBootstrapOpen()
	if err != nil {
		return err
	}
	if !open {
		applog.Security(c, "auth.admin.bootstrap.closed", nil)
		return fiber.NewError(fiber.StatusForbidden, "Admin registration is closed")
	}
	return h.register(c, domain.RoleAdmin)
}

// RegisterAdmin lets an authenticated admin create another admin.
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	return h.register(c, domain.RoleAdmin)
}

func (h *AuthHandler) register(c *fiber.Ctx, role string) error {
	var in services.Registration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	var (
		u   *domain.User
		err error
	)
	if role == domain.RoleAdmin {
		u, err = h.Auth.RegisterAdmin(in)
	} else {
		u, err = h.Auth.Register(in)
	}
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"role": role, "reason": publicReason(err)})
		return err
	}
	applog.Audit(c, "auth.register", map[string]any{"user": u.ID, "role": role})
	return reply(c, fiber.StatusCreated, "User registered successfully", u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	u, tok, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return err
	}
	c.Locals(ctxUserID, u.ID)
	applog.Audit(c, "auth.login.success", nil)
	return reply(c, fiber.StatusOK, "Login successful", fiber.Map{"user": u, "token": tok})
}
