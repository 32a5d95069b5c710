package handler

import (
	"errors"
	"strings"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// respondError maps domain errors to a status and message. Anything unrecognized is logged and
// answered with the generic fallback so store details never reach the caller.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, service.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	case errors.Is(err, service.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient stock"})
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	case errors.Is(err, service.ErrProductInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Product has transactions and cannot be deleted"})
	case errors.Is(err, service.ErrUpstreamFetch):
		log.Error().Err(err).Str("path", c.Path()).Msg("upstream fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": fallback})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return "Validation failed: " + strings.TrimPrefix(msg, prefix)
	}
	return "Validation failed"
}

// ErrorHandler answers errors returned (or panics recovered) outside the handlers, such as
// unknown routes, in the same JSON shape as the handlers.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func pageQuery(c *fiber.Ctx) (page, limit int, search string) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 0), strings.TrimSpace(c.Query("search"))
}
