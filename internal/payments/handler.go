package payments

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/httpx"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

// Handler exposes the ledger engine's deposit, withdraw and transfer
// operations over HTTP. The request layer is thin: it authenticates, parses
// and validates, then defers every business rule to the engine.
type Handler struct {
	engine *ledger.Engine
}

// NewHandler builds a payments HTTP handler.
func NewHandler(engine *ledger.Engine) *Handler {
	return &Handler{engine: engine}
}

type amountRequest struct {
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Currency string           `json:"currency" validate:"required,len=3,alpha"`
}

type transferRequest struct {
	ToAccountID string           `json:"to_account_id" validate:"required,uuid4"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency" validate:"required,len=3,alpha"`
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

func actor(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals("account_id").(string)
	if id == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "missing authenticated account")
	}
	return id, nil
}

func parseAmountRequest(c *fiber.Ctx) (amountRequest, error) {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := httpx.ValidateInput(&req); err != nil {
		return req, fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return req, nil
}

// Deposit credits the authenticated account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	req, err := parseAmountRequest(c)
	if err != nil {
		return err
	}
	w, rec, err := h.engine.Deposit(c.UserContext(), id, *req.Amount, req.Currency)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"balances":    w.Balances,
		"transaction": newTransactionResponse(rec),
	})
}

// Withdraw debits the authenticated account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	req, err := parseAmountRequest(c)
	if err != nil {
		return err
	}
	w, rec, err := h.engine.Withdraw(c.UserContext(), id, *req.Amount, req.Currency)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"balances":    w.Balances,
		"transaction": newTransactionResponse(rec),
	})
}

// Transfer moves funds from the authenticated account to another wallet.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := httpx.ValidateInput(&req); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	res, err := h.engine.Transfer(c.UserContext(), id, req.ToAccountID, *req.Amount, req.Currency)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Transfer successful",
		"balances":    res.From.Balances,
		"transaction": newTransactionResponse(res.SenderRecord),
	})
}
