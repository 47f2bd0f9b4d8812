package wallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/httpx"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

// Handler exposes wallet HTTP endpoints. The authenticated account id is
// supplied by the auth middleware.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type walletResponse struct {
	AccountID string                     `json:"account_id"`
	Status    string                     `json:"status"`
	Balances  map[string]decimal.Decimal `json:"balances"`
	CreatedAt time.Time                  `json:"created_at"`
}

func newWalletResponse(w ledger.Wallet) walletResponse {
	return walletResponse{AccountID: w.AccountID, Status: w.Status, Balances: w.Balances, CreatedAt: w.CreatedAt}
}

type transactionResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Counterparty string          `json:"counterparty,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Flagged      bool            `json:"flagged"`
}

func newTransactionResponse(txn ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:           txn.ID,
		Kind:         string(txn.Kind),
		Amount:       txn.Amount,
		Currency:     txn.Currency,
		Counterparty: txn.Counterparty,
		CreatedAt:    txn.CreatedAt,
		Flagged:      txn.Flagged,
	}
}

func accountID(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals("account_id").(string)
	if id == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "missing authenticated account")
	}
	return id, nil
}

// Create provisions a wallet for the authenticated account.
func (h *Handler) Create(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	w, err := h.service.Create(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(http.StatusCreated).JSON(newWalletResponse(w))
}

// Balance returns the currencies the wallet holds.
func (h *Handler) Balance(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	balances, err := h.service.Balances(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"account_id": id, "balances": balances})
}

// AllBalances returns a zero-filled entry for every supported currency.
func (h *Handler) AllBalances(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	balances, err := h.service.AllBalances(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"balances": balances})
}

// Details returns the full wallet aggregate.
func (h *Handler) Details(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	w, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(newWalletResponse(w))
}

// Transactions lists the account's history, most recent first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	records, err := h.service.Transactions(c.UserContext(), id, false)
	if err != nil {
		return httpx.Error(c, err)
	}
	out := make([]transactionResponse, 0, len(records))
	for _, txn := range records {
		out = append(out, newTransactionResponse(txn))
	}
	return c.JSON(out)
}
