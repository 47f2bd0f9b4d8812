package admin

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/httpx"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

const topLimit = 10

// Handler exposes the administrative endpoints. Access control is enforced
// by the admin-key middleware in front of these routes.
type Handler struct {
	service *Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type flaggedResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Counterparty string          `json:"counterparty,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FlaggedTransactions lists flagged records, optionally bounded to one day
// via the ?day=2006-01-02 query parameter.
func (h *Handler) FlaggedTransactions(c *fiber.Ctx) error {
	var (
		flagged []ledger.Transaction
		err     error
	)
	if day := c.Query("day"); day != "" {
		from, parseErr := time.Parse("2006-01-02", day)
		if parseErr != nil {
			return fiber.NewError(http.StatusBadRequest, "day must be formatted as 2006-01-02")
		}
		flagged, err = h.service.FlaggedInRange(c.UserContext(), from, from.Add(24*time.Hour))
	} else {
		flagged, err = h.service.FlaggedTransactions(c.UserContext())
	}
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]flaggedResponse, 0, len(flagged))
	for _, txn := range flagged {
		out = append(out, flaggedResponse{
			ID:           txn.ID,
			AccountID:    txn.AccountID,
			Kind:         string(txn.Kind),
			Amount:       txn.Amount,
			Currency:     txn.Currency,
			Counterparty: txn.Counterparty,
			CreatedAt:    txn.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"transactions": out})
}

// TotalBalances aggregates every wallet's balances by currency.
func (h *Handler) TotalBalances(c *fiber.Ctx) error {
	totals, err := h.service.TotalBalances(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"total_balances": totals})
}

// TopAccountsByBalance lists the largest wallets in reference-currency terms.
func (h *Handler) TopAccountsByBalance(c *fiber.Ctx) error {
	ranked, err := h.service.TopAccountsByBalance(c.UserContext(), topLimit)
	if err != nil {
		return httpx.Error(c, err)
	}
	out := make([]fiber.Map, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, fiber.Map{"account_id": entry.AccountID, "total_balance": entry.Total})
	}
	return c.JSON(fiber.Map{"top_accounts": out})
}

// TopAccountsByActivity lists the busiest accounts by record count.
func (h *Handler) TopAccountsByActivity(c *fiber.Ctx) error {
	ranked, err := h.service.TopAccountsByActivity(c.UserContext(), topLimit)
	if err != nil {
		return httpx.Error(c, err)
	}
	out := make([]fiber.Map, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, fiber.Map{"account_id": entry.AccountID, "transaction_count": entry.Transactions})
	}
	return c.JSON(fiber.Map{"top_accounts": out})
}

// SoftDeleteTransaction hides a journal record from default listings.
func (h *Handler) SoftDeleteTransaction(c *fiber.Ctx) error {
	if err := h.service.SoftDeleteTransaction(c.UserContext(), c.Params("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction soft deleted"})
}

// RestoreTransaction reverses a soft delete.
func (h *Handler) RestoreTransaction(c *fiber.Ctx) error {
	if err := h.service.RestoreTransaction(c.UserContext(), c.Params("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction restored"})
}

// DeactivateWallet blocks engine operations for the account.
func (h *Handler) DeactivateWallet(c *fiber.Ctx) error {
	if err := h.service.DeactivateWallet(c.UserContext(), c.Params("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Wallet deactivated"})
}

// ReactivateWallet re-enables the account.
func (h *Handler) ReactivateWallet(c *fiber.Ctx) error {
	if err := h.service.ReactivateWallet(c.UserContext(), c.Params("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Wallet reactivated"})
}
