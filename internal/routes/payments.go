package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rupeelink/rupeelink/internal/payments"
)

// RegisterPaymentRoutes wires money-movement endpoints. Transfers carry an
// extra per-account rate limit.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, transferLimiter fiber.Handler) {
	r.Post("/payments/deposit", h.Deposit)
	r.Post("/payments/withdraw", h.Withdraw)
	r.Post("/payments/transfer", transferLimiter, h.Transfer)
}
