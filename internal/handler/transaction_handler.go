package handler

import (
	"strconv"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	service service.LedgerService
	log     zerolog.Logger
}

func NewTransactionHandler(s service.LedgerService, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{service: s, log: log}
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetTransactions lists adjustments, newest first, with the total page count.
// @Summary list transactions
// @Tags transactions
// @Produce json
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "page size, at most 100" default(10)
// @Param search query string false "case-insensitive substring of sku or title"
// @Success 200 {object} model.Page[model.TransactionView]
// @Failure 500 {object} map[string]string
// @Router /api/transactions [get]
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	page, limit, search := pageQuery(c)

	result, err := h.service.ListAdjustments(c.UserContext(), model.PageQuery{Page: page, Limit: limit, Search: search})
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching transactions")
	}
	return c.JSON(result)
}

// GetTransaction returns one adjustment with its product title.
// @Summary get transaction
// @Tags transactions
// @Produce json
// @Param id path int true "transaction id"
// @Success 200 {object} model.TransactionView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/transactions/id/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetAdjustment(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching the transaction details")
	}
	return c.JSON(tx)
}

// GetTransactionsBySKU returns the full history of a SKU.
// @Summary transactions of a sku, oldest first
// @Tags transactions
// @Produce json
// @Param sku path string true "product sku"
// @Success 200 {array} model.Transaction
// @Router /api/transactions/sku/{sku} [get]
func (h *TransactionHandler) GetTransactionsBySKU(c *fiber.Ctx) error {
	txs, err := h.service.AdjustmentsBySKU(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while fetching the transaction details")
	}
	return c.JSON(txs)
}

// CreateTransaction records a signed stock adjustment.
// @Summary create adjustment
// @Tags transactions
// @Accept json
// @Produce json
// @Param adjustment body model.AdjustmentRequest true "signed quantity"
// @Success 201 {object} model.Transaction
// @Failure 400 {object} map[string]string "validation or insufficient stock"
// @Failure 404 {object} map[string]string
// @Router /api/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req model.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.service.CreateAdjustment(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while creating the transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

// UpdateTransaction edits an adjustment in place.
// @Summary edit adjustment
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "transaction id"
// @Param adjustment body model.AdjustmentRequest true "signed quantity"
// @Success 200 {object} model.Transaction
// @Failure 400 {object} map[string]string "validation or insufficient stock"
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req model.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.service.EditAdjustment(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, h.log, err, "An error occurred while updating the transaction")
	}
	return c.JSON(tx)
}

// DeleteTransaction removes an adjustment.
// @Summary delete adjustment
// @Tags transactions
// @Produce json
// @Param id path int true "transaction id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "insufficient stock"
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.service.DeleteAdjustment(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err, "An error occurred while deleting the transaction")
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
