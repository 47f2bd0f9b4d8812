package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rupeelink/rupeelink/internal/admin"
)

// RegisterAdminRoutes wires the administrative reporting and moderation
// endpoints. The group is expected to carry the admin-key middleware.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/flagged-transactions", h.FlaggedTransactions)
	r.Get("/total-balances", h.TotalBalances)
	r.Get("/top-accounts/balance", h.TopAccountsByBalance)
	r.Get("/top-accounts/transactions", h.TopAccountsByActivity)
	r.Delete("/transactions/:id", h.SoftDeleteTransaction)
	r.Patch("/transactions/:id/restore", h.RestoreTransaction)
	r.Delete("/wallets/:id", h.DeactivateWallet)
	r.Patch("/wallets/:id/restore", h.ReactivateWallet)
}
