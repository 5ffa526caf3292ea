package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// Create expects multipart form fields description, price and productImage.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	catID, err := categoryParam(c)
	if err != nil {
		return err
	}
	img, err := c.FormFile("productImage")
	if err != nil && !errors.Is(err, fasthttp.ErrMissingFile) {
		return fiber.NewError(fiber.StatusBadRequest, "Expected a multipart form")
	}
	p, err := h.Catalog.CreateProduct(services.ProductInput{
		CategoryID:  catID,
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Image:       img,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product": p.ID, "category": catID, "price": p.Price.String()})
	return reply(c, fiber.StatusCreated, "Product created successfully", p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.Catalog.ListProducts()
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "All products", list)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := productParam(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return err
	}
	return reply(c, fiber.StatusOK, "Product found", p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	pid, err := productParam(c)
	if err != nil {
		return err
	}
	catID, err := categoryParam(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(pid, catID); err != nil {
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product": pid, "category": catID})
	return reply(c, fiber.StatusOK, "Product deleted successfully", nil)
}

// Export streams the catalog as an xlsx download.
func (h *ProductHandler) Export(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products-`+time.Now().UTC().Format("20060102")+`.xlsx"`)
	n, err := h.Catalog.ExportProducts(c.Response().BodyWriter())
	if err != nil {
		c.Response().ResetBody()
		c.Response().Header.Del(fiber.HeaderContentDisposition)
		return err
	}
	applog.Audit(c, "product.export", map[string]any{"rows": n})
	return nil
}
