package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgCheckViolation = "23514"

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
    account_id UUID PRIMARY KEY,
    status     TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS wallet_balances (
    account_id UUID NOT NULL REFERENCES wallets (account_id),
    currency   TEXT NOT NULL,
    balance    NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
    PRIMARY KEY (account_id, currency)
);

CREATE TABLE IF NOT EXISTS transactions (
    id           UUID PRIMARY KEY,
    account_id   UUID NOT NULL REFERENCES wallets (account_id),
    kind         TEXT NOT NULL,
    amount       NUMERIC NOT NULL CHECK (amount > 0),
    currency     TEXT NOT NULL,
    counterparty UUID,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    flagged      BOOLEAN NOT NULL DEFAULT FALSE,
    deleted      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_created
    ON transactions (account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_flagged
    ON transactions (created_at) WHERE flagged AND NOT deleted;
`

// PostgresStore persists wallets and the journal in PostgreSQL. Atomic units
// map onto database transactions with row locks taken in sorted account order.
type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore constructs a Postgres-backed store. timeout bounds the
// duration of each atomic unit; on expiry the unit aborts and the caller sees
// ErrTransientStore.
func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostgresStore{db: db, timeout: timeout}
}

// Migrate creates the schema objects if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) Atomic(ctx context.Context, accountIDs []string, fn func(Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		accountID, err := uuid.Parse(id)
		if err != nil {
			return ErrWalletNotFound
		}
		// Missing rows simply lock nothing; the unit aborts on the wallet
		// existence check instead.
		if _, err := tx.Exec(ctx, `SELECT account_id FROM wallets WHERE account_id = $1 FOR UPDATE`, accountID); err != nil {
			return storeErr(err)
		}
	}

	if err := fn(&pgTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr maps driver timeouts and cancellations to ErrTransientStore so
// callers can distinguish retryable failures from business errors.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return err
}

type pgTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *pgTx) Wallet(accountID string) (Wallet, error) {
	return walletQuery(t.ctx, t.tx, accountID)
}

func (t *pgTx) Adjust(accountID, code string, delta decimal.Decimal) (Wallet, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	_, err = t.tx.Exec(t.ctx, `
        INSERT INTO wallet_balances (account_id, currency, balance)
        VALUES ($1, $2, $3::numeric)
        ON CONFLICT (account_id, currency)
        DO UPDATE SET balance = wallet_balances.balance + EXCLUDED.balance`,
		id, code, delta.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return Wallet{}, ErrInsufficientFunds
		}
		return Wallet{}, storeErr(err)
	}
	return walletQuery(t.ctx, t.tx, accountID)
}

func (t *pgTx) Append(txn Transaction) (Transaction, error) {
	accountID, err := uuid.Parse(txn.AccountID)
	if err != nil {
		return Transaction{}, ErrWalletNotFound
	}
	var counterparty *uuid.UUID
	if txn.Counterparty != "" {
		cp, err := uuid.Parse(txn.Counterparty)
		if err != nil {
			return Transaction{}, ErrWalletNotFound
		}
		counterparty = &cp
	}
	txn.ID = uuid.NewString()
	row := t.tx.QueryRow(t.ctx, `
        INSERT INTO transactions (id, account_id, kind, amount, currency, counterparty, flagged)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
        RETURNING created_at`,
		txn.ID, accountID, string(txn.Kind), txn.Amount.String(), txn.Currency, counterparty, txn.Flagged)
	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		return Transaction{}, storeErr(err)
	}
	txn.CreatedAt = createdAt.UTC()
	return txn, nil
}

func (t *pgTx) CountTransfersSince(accountID string, since time.Time) (int, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return 0, ErrWalletNotFound
	}
	var count int
	err = t.tx.QueryRow(t.ctx, `
        SELECT COUNT(*) FROM transactions
        WHERE account_id = $1 AND kind = 'transfer' AND created_at >= $2`,
		id, since).Scan(&count)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// querier covers both pool and transaction access for shared read helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func walletQuery(ctx context.Context, q querier, accountID string) (Wallet, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	w := Wallet{AccountID: accountID, Balances: make(map[string]decimal.Decimal)}
	var createdAt time.Time
	err = q.QueryRow(ctx, `SELECT status, created_at FROM wallets WHERE account_id = $1`, id).
		Scan(&w.Status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, storeErr(err)
	}
	w.CreatedAt = createdAt.UTC()

	rows, err := q.Query(ctx, `SELECT currency, balance::text FROM wallet_balances WHERE account_id = $1`, id)
	if err != nil {
		return Wallet{}, storeErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return Wallet{}, storeErr(err)
		}
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return Wallet{}, fmt.Errorf("decode balance for %s: %w", code, err)
		}
		w.Balances[code] = balance
	}
	return w, rows.Err()
}

func (s *PostgresStore) CreateWallet(ctx context.Context, accountID string) (Wallet, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return Wallet{}, fmt.Errorf("invalid account id: %w", err)
	}
	cmd, err := s.db.Exec(ctx, `INSERT INTO wallets (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`, id)
	if err != nil {
		return Wallet{}, storeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return Wallet{}, ErrWalletExists
	}
	return walletQuery(ctx, s.db, accountID)
}

func (s *PostgresStore) GetWallet(ctx context.Context, accountID string) (Wallet, error) {
	return walletQuery(ctx, s.db, accountID)
}

func (s *PostgresStore) SetWalletStatus(ctx context.Context, accountID, status string) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return ErrWalletNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE wallets SET status = $1 WHERE account_id = $2`, status, id)
	if err != nil {
		return storeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (s *PostgresStore) ListWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := s.db.Query(ctx, `
        SELECT w.account_id, w.status, w.created_at, b.currency, b.balance::text
        FROM wallets w
        LEFT JOIN wallet_balances b USING (account_id)
        ORDER BY w.account_id`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		var (
			id        uuid.UUID
			status    string
			createdAt time.Time
			code      *string
			raw       *string
		)
		if err := rows.Scan(&id, &status, &createdAt, &code, &raw); err != nil {
			return nil, storeErr(err)
		}
		if len(wallets) == 0 || wallets[len(wallets)-1].AccountID != id.String() {
			wallets = append(wallets, Wallet{
				AccountID: id.String(),
				Status:    status,
				CreatedAt: createdAt.UTC(),
				Balances:  make(map[string]decimal.Decimal),
			})
		}
		if code != nil && raw != nil {
			balance, err := decimal.NewFromString(*raw)
			if err != nil {
				return nil, fmt.Errorf("decode balance for %s: %w", *code, err)
			}
			wallets[len(wallets)-1].Balances[*code] = balance
		}
	}
	return wallets, rows.Err()
}

const transactionColumns = `id, account_id, kind, amount::text, currency, counterparty, created_at, flagged, deleted`

func scanTransaction(rows pgx.Rows) (Transaction, error) {
	var (
		txn          Transaction
		id           uuid.UUID
		accountID    uuid.UUID
		kind         string
		raw          string
		counterparty *uuid.UUID
		createdAt    time.Time
	)
	if err := rows.Scan(&id, &accountID, &kind, &raw, &txn.Currency, &counterparty, &createdAt, &txn.Flagged, &txn.Deleted); err != nil {
		return Transaction{}, storeErr(err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Transaction{}, fmt.Errorf("decode amount: %w", err)
	}
	txn.ID = id.String()
	txn.AccountID = accountID.String()
	txn.Kind = Kind(kind)
	txn.Amount = amount
	txn.CreatedAt = createdAt.UTC()
	if counterparty != nil {
		txn.Counterparty = counterparty.String()
	}
	return txn, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountID string, includeDeleted bool) ([]Transaction, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrWalletNotFound
	}
	rows, err := s.db.Query(ctx, `
        SELECT `+transactionColumns+` FROM transactions
        WHERE account_id = $1 AND (NOT deleted OR $2)
        ORDER BY created_at DESC`, id, includeDeleted)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListFlagged(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+transactionColumns+` FROM transactions
        WHERE flagged AND NOT deleted AND created_at >= $1 AND created_at < $2
        ORDER BY created_at`, from, to)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetDeleted(ctx context.Context, id string, deleted bool) error {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return ErrTransactionNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE transactions SET deleted = $1 WHERE id = $2`, deleted, txnID)
	if err != nil {
		return storeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (s *PostgresStore) TotalBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.db.Query(ctx, `SELECT currency, SUM(balance)::text FROM wallet_balances GROUP BY currency`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, storeErr(err)
		}
		total, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode total for %s: %w", code, err)
		}
		totals[code] = total
	}
	return totals, rows.Err()
}

func (s *PostgresStore) TransactionCounts(ctx context.Context, limit int) ([]AccountActivity, error) {
	rows, err := s.db.Query(ctx, `
        SELECT account_id, COUNT(*) FROM transactions
        GROUP BY account_id
        ORDER BY COUNT(*) DESC, account_id
        LIMIT $1`, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []AccountActivity
	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, AccountActivity{AccountID: id.String(), Transactions: count})
	}
	return out, rows.Err()
}
