package handlers

import (
	"github.com/gofiber/fiber/v2"

	"expressbuy/internal/domain"
	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
	"expressbuy/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

func (h *CheckoutHandler) Initialize(c *fiber.Ctx) error {
	res, err := h.Checkout.Initialize(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	applog.Audit(c, "checkout.initialize", map[string]any{
		"reference": res.Transaction.Reference,
		"amount":    res.Transaction.Amount.String(),
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":            "Payment Initialized Successfully",
		"data":               res.Payment,
		"transactionDetails": res.Transaction,
	})
}

func (h *CheckoutHandler) Finalize(c *fiber.Ctx) error {
	ref, ok := validate.Reference(c.Query("reference"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "reference"})
		return fiber.NewError(fiber.StatusBadRequest, "A valid payment reference is required")
	}
	t, err := h.Checkout.Finalize(c.UserContext(), userID(c), ref)
	if err != nil {
		return err
	}
	applog.Audit(c, "checkout.finalize", map[string]any{"reference": ref, "status": t.Status})
	if t.Status != domain.StatusSuccess {
		return reply(c, fiber.StatusBadRequest, "Payment Failed", t)
	}
	return reply(c, fiber.StatusOK, "Checkout Successful", t)
}

func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	list, err := h.Checkout.History(userID(c))
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Your transactions", list)
}
