package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
	"expressbuy/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func productParam(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}
	return id, nil
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	pid, err := productParam(c)
	if err != nil {
		return err
	}
	qty := validate.Qty(c.Query("quantity"))
	cart, err := h.Cart.Add(userID(c), pid, qty)
	if err != nil {
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"product": pid, "qty": qty})
	return reply(c, fiber.StatusCreated, "Products added to cart", cart)
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.View(userID(c))
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Your cart", cart)
}

func (h *CartHandler) ListAll(c *fiber.Ctx) error {
	carts, err := h.Cart.ListAll()
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "All Products in the cart", carts)
}

func (h *CartHandler) Reduce(c *fiber.Ctx) error {
	pid, err := productParam(c)
	if err != nil {
		return err
	}
	cart, err := h.Cart.Reduce(userID(c), pid)
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Product quantity reduced", cart)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, err := productParam(c)
	if err != nil {
		return err
	}
	cart, err := h.Cart.Remove(userID(c), pid)
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Product removed from cart", cart)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cart, err := h.Cart.Clear(userID(c))
	if err != nil {
		return err
	}
	applog.Info(c, "cart.clear", nil)
	return reply(c, fiber.StatusOK, "Cart cleared", cart)
}
