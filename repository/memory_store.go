package repository

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"go-wallet-ledger/model"
)

// MemoryAccountStore keeps accounts in process memory. It offers single-key
// compare-and-swap only.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	handles  map[string]string
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]model.Account),
		handles:  make(map[string]string),
	}
}

func (s *MemoryAccountStore) Get(ctx context.Context, id string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a.Clone()
	return &cp, nil
}

func (s *MemoryAccountStore) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.handles[handle]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s.accounts[id].Clone()
	return &cp, nil
}

func (s *MemoryAccountStore) Create(ctx context.Context, account *model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Balance < 0 {
		return ErrNegativeBalance
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.handles[account.Handle]; taken {
		return ErrAlreadyExists
	}
	if _, taken := s.accounts[account.ID]; taken {
		return ErrAlreadyExists
	}
	account.Version = 1
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.TransactionIDs == nil {
		account.TransactionIDs = []string{}
	}
	s.accounts[account.ID] = account.Clone()
	s.handles[account.Handle] = account.ID
	return nil
}

func (s *MemoryAccountStore) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, next model.Account) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if next.Balance < 0 {
		return nil, ErrNegativeBalance
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != expectedVersion {
		return nil, ErrVersionConflict
	}

	stored := current.Clone()
	stored.Balance = next.Balance
	stored.TransactionIDs = slices.Clone(next.TransactionIDs)
	stored.Version++
	s.accounts[id] = stored

	cp := stored.Clone()
	return &cp, nil
}

func (s *MemoryAccountStore) List(ctx context.Context) ([]*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		cp := a.Clone()
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.Account) int { return strings.Compare(a.Handle, b.Handle) })
	return out, nil
}

// MemoryTransactionLog is an append-only in-memory log.
type MemoryTransactionLog struct {
	mu      sync.RWMutex
	entries []model.Transaction
	byID    map[string]int
}

func NewMemoryTransactionLog() *MemoryTransactionLog {
	return &MemoryTransactionLog{byID: make(map[string]int)}
}

func (l *MemoryTransactionLog) Append(ctx context.Context, tx model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[tx.ID]; exists {
		return nil
	}
	l.byID[tx.ID] = len(l.entries)
	l.entries = append(l.entries, tx)
	return nil
}

func (l *MemoryTransactionLog) Get(ctx context.Context, id string) (*model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := l.entries[i]
	return &t, nil
}

func (l *MemoryTransactionLog) ListFor(ctx context.Context, accountID string) iter.Seq2[model.Transaction, error] {
	return l.list(ctx, func(t model.Transaction) bool { return t.Involves(accountID) })
}

func (l *MemoryTransactionLog) ListAll(ctx context.Context) iter.Seq2[model.Transaction, error] {
	return l.list(ctx, func(model.Transaction) bool { return true })
}

func (l *MemoryTransactionLog) list(ctx context.Context, keep func(model.Transaction) bool) iter.Seq2[model.Transaction, error] {
	return func(yield func(model.Transaction, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(model.Transaction{}, err)
			return
		}

		l.mu.RLock()
		var matched []model.Transaction
		for _, t := range l.entries {
			if keep(t) {
				matched = append(matched, t)
			}
		}
		l.mu.RUnlock()

		sortByCreation(matched)
		for _, t := range matched {
			if !yield(t, nil) {
				return
			}
		}
	}
}

var (
	_ IAccountStore   = (*MemoryAccountStore)(nil)
	_ ITransactionLog = (*MemoryTransactionLog)(nil)
)
