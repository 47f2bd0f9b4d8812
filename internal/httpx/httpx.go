package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rupeelink/rupeelink/internal/ledger"
)

var validate = validator.New()

// ValidateInput checks a request schema against its validate tags.
func ValidateInput(input any) error {
	return validate.Struct(input)
}

// StatusFromError maps engine and store errors onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrWalletExists):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrWalletInactive):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrTransientStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnsupportedCurrency),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrSelfTransfer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error renders an engine error as a structured JSON response.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(StatusFromError(err)).JSON(fiber.Map{"error": err.Error()})
}
