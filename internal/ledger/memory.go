package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type walletState struct {
	status    string
	createdAt time.Time
	balances  map[string]decimal.Decimal
}

func (st *walletState) clone() *walletState {
	balances := make(map[string]decimal.Decimal, len(st.balances))
	for code, b := range st.balances {
		balances[code] = b
	}
	return &walletState{status: st.status, createdAt: st.createdAt, balances: balances}
}

func (st *walletState) snapshot(accountID string) Wallet {
	cl := st.clone()
	return Wallet{AccountID: accountID, Status: cl.status, Balances: cl.balances, CreatedAt: cl.createdAt}
}

type memoryStore struct {
	mu      sync.Mutex // guards wallets, journal and the lock table
	locks   map[string]*sync.Mutex
	wallets map[string]*walletState
	journal []*Transaction
}

// NewMemory creates a concurrency-safe in-memory store useful for unit tests
// and development mode. Atomic units serialize on per-account mutexes
// acquired in sorted account order.
func NewMemory() Store {
	return &memoryStore{
		locks:   make(map[string]*sync.Mutex),
		wallets: make(map[string]*walletState),
	}
}

func (s *memoryStore) lockFor(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[accountID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[accountID] = l
	return l
}

func (s *memoryStore) Atomic(_ context.Context, accountIDs []string, fn func(Tx) error) error {
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)
	held := make([]*sync.Mutex, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		l := s.lockFor(id)
		l.Lock()
		held = append(held, l)
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()

	tx := &memoryTx{store: s, staged: make(map[string]*walletState)}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range tx.staged {
		// Only balances are written back; status mutations travel through
		// SetWalletStatus and must not be clobbered here.
		if cur, ok := s.wallets[id]; ok {
			cur.balances = st.balances
		}
	}
	for i := range tx.appended {
		rec := tx.appended[i]
		s.journal = append(s.journal, &rec)
	}
	return nil
}

// memoryTx stages balance writes and journal appends until the unit commits.
type memoryTx struct {
	store    *memoryStore
	staged   map[string]*walletState
	appended []Transaction
}

func (tx *memoryTx) state(accountID string) (*walletState, error) {
	if st, ok := tx.staged[accountID]; ok {
		return st, nil
	}
	tx.store.mu.Lock()
	st, ok := tx.store.wallets[accountID]
	tx.store.mu.Unlock()
	if !ok {
		return nil, ErrWalletNotFound
	}
	cl := st.clone()
	tx.staged[accountID] = cl
	return cl, nil
}

func (tx *memoryTx) Wallet(accountID string) (Wallet, error) {
	st, err := tx.state(accountID)
	if err != nil {
		return Wallet{}, err
	}
	return st.snapshot(accountID), nil
}

func (tx *memoryTx) Adjust(accountID, code string, delta decimal.Decimal) (Wallet, error) {
	st, err := tx.state(accountID)
	if err != nil {
		return Wallet{}, err
	}
	next := st.balances[code].Add(delta)
	if next.Sign() < 0 {
		return Wallet{}, ErrInsufficientFunds
	}
	st.balances[code] = next
	return st.snapshot(accountID), nil
}

func (tx *memoryTx) Append(txn Transaction) (Transaction, error) {
	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now().UTC()
	tx.appended = append(tx.appended, txn)
	return txn, nil
}

func (tx *memoryTx) CountTransfersSince(accountID string, since time.Time) (int, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	count := 0
	for _, rec := range tx.store.journal {
		// Soft-deleted records still count: administrative deletes never
		// recompute heuristic history.
		if rec.AccountID == accountID && rec.Kind == KindTransfer && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) CreateWallet(_ context.Context, accountID string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wallets[accountID]; exists {
		return Wallet{}, ErrWalletExists
	}
	st := &walletState{
		status:    WalletStatusActive,
		createdAt: time.Now().UTC(),
		balances:  make(map[string]decimal.Decimal),
	}
	s.wallets[accountID] = st
	return st.snapshot(accountID), nil
}

func (s *memoryStore) GetWallet(_ context.Context, accountID string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.wallets[accountID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return st.snapshot(accountID), nil
}

func (s *memoryStore) SetWalletStatus(_ context.Context, accountID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.wallets[accountID]
	if !ok {
		return ErrWalletNotFound
	}
	st.status = status
	return nil
}

func (s *memoryStore) ListWallets(_ context.Context) ([]Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallets := make([]Wallet, 0, len(s.wallets))
	for id, st := range s.wallets {
		wallets = append(wallets, st.snapshot(id))
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].AccountID < wallets[j].AccountID })
	return wallets, nil
}

func (s *memoryStore) ListTransactions(_ context.Context, accountID string, includeDeleted bool) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Transaction
	for _, rec := range s.journal {
		if rec.AccountID != accountID {
			continue
		}
		if rec.Deleted && !includeDeleted {
			continue
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) ListFlagged(_ context.Context, from, to time.Time) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Transaction
	for _, rec := range s.journal {
		if !rec.Flagged || rec.Deleted {
			continue
		}
		if rec.CreatedAt.Before(from) || !rec.CreatedAt.Before(to) {
			continue
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) SetDeleted(_ context.Context, id string, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.journal {
		if rec.ID == id {
			rec.Deleted = deleted
			return nil
		}
	}
	return ErrTransactionNotFound
}

func (s *memoryStore) TotalBalances(_ context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, st := range s.wallets {
		for code, b := range st.balances {
			totals[code] = totals[code].Add(b)
		}
	}
	return totals, nil
}

func (s *memoryStore) TransactionCounts(_ context.Context, limit int) ([]AccountActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, rec := range s.journal {
		counts[rec.AccountID]++
	}
	activity := make([]AccountActivity, 0, len(counts))
	for id, n := range counts {
		activity = append(activity, AccountActivity{AccountID: id, Transactions: n})
	}
	sort.Slice(activity, func(i, j int) bool {
		if activity[i].Transactions != activity[j].Transactions {
			return activity[i].Transactions > activity[j].Transactions
		}
		return activity[i].AccountID < activity[j].AccountID
	})
	if limit > 0 && len(activity) > limit {
		activity = activity[:limit]
	}
	return activity, nil
}
