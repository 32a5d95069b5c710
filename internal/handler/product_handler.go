package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type ProductHandler struct {
	service service.CatalogService
	log     zerolog.Logger
}

func NewProductHandler(s service.CatalogService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: s, log: log}
}

// GetProducts lists products with derived stock.
// @Summary list products
// @Tags products
// @Produce json
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "page size, at most 100" default(8)
// @Param search query string false "case-insensitive substring of sku or title"
// @Success 200 {object} model.Page[model.ProductStock]
// @Failure 500 {object} map[string]string
// @Router /api/products [get]
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	page, limit, search := pageQuery(c)

	result, err := h.service.ListProducts(c.UserContext(), model.PageQuery{Page: page, Limit: limit, Search: search})
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching products")
	}
	return c.JSON(result)
}

// GetProduct returns one product with derived stock.
// @Summary get product
// @Tags products
// @Produce json
// @Param sku path string true "product sku"
// @Success 200 {object} model.ProductStock
// @Failure 404 {object} map[string]string
// @Router /api/products/{sku} [get]
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching product details")
	}
	return c.JSON(product)
}

// UpsertProduct creates the product or overwrites the one with the same SKU.
// @Summary upsert product
// @Tags products
// @Accept json
// @Produce json
// @Param product body model.UpsertProductRequest true "product"
// @Success 200 {object} model.ProductStock
// @Failure 400 {object} map[string]string
// @Router /api/products [post]
func (h *ProductHandler) UpsertProduct(c *fiber.Ctx) error {
	var req model.UpsertProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.UpsertProduct(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while creating or updating the product")
	}
	return c.JSON(product)
}

// DeleteProduct removes a product that has no transactions.
// @Summary delete product
// @Tags products
// @Produce json
// @Param sku path string true "product sku"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "product has transactions"
// @Router /api/products/{sku} [delete]
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("sku")); err != nil {
		return respondError(c, h.log, err, "An error occurred while deleting the product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ImportProducts seeds the catalog from the external feed, skipping existing SKUs.
// @Summary import products from the external feed
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{} "message and model.ImportResult under data"
// @Failure 502 {object} map[string]string "feed unavailable"
// @Router /api/products/import [post]
func (h *ProductHandler) ImportProducts(c *fiber.Ctx) error {
	result, err := h.service.ImportProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching products from external API")
	}
	return c.JSON(fiber.Map{"message": "Products imported", "data": result})
}
