package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rupeelink/rupeelink/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints for the authenticated account.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets/me", h.Details)
	r.Get("/wallets/me/balance", h.Balance)
	r.Get("/wallets/me/balances", h.AllBalances)
	r.Get("/wallets/me/transactions", h.Transactions)
}
