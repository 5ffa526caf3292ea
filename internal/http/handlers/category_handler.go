package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
	"expressbuy/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func categoryParam(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("categoryId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "categoryId"})
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid category id")
	}
	return id, nil
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	cat, err := h.Catalog.CreateCategory(in.Name)
	if err != nil {
		return err
	}
	applog.Audit(c, "category.create", map[string]any{"category": cat.ID, "name": cat.Name})
	return reply(c, fiber.StatusCreated, "Category created successfully", cat)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "All categories", cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := categoryParam(c)
	if err != nil {
		return err
	}
	cat, err := h.Catalog.GetCategory(id)
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Category found", cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := categoryParam(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteCategory(id); err != nil {
		return err
	}
	applog.Audit(c, "category.delete", map[string]any{"category": id})
	return reply(c, fiber.StatusOK, "Category deleted successfully", nil)
}
