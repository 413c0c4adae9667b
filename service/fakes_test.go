package service

import (
	"context"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-wallet-ledger/model"
	"go-wallet-ledger/repository"

	"github.com/stretchr/testify/require"
)

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "hashed:" + secret, nil }
func (plainHasher) Verify(secret, digest string) bool {
	return strings.TrimPrefix(digest, "hashed:") == secret && strings.HasPrefix(digest, "hashed:")
}

type recordingPublisher struct {
	mu  sync.Mutex
	txs []model.Transaction
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, tx model.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs = append(p.txs, tx)
	return nil
}

func (p *recordingPublisher) published() []model.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Transaction(nil), p.txs...)
}

// faultyAccounts lets a test intercept single-account swaps.
type faultyAccounts struct {
	*repository.MemoryAccountStore

	mu        sync.Mutex
	casCalls  int
	beforeCAS func(call int, id string) error
	afterCAS  func(call int, id string)
	blockGet  bool
}

func (f *faultyAccounts) Get(ctx context.Context, id string) (*model.Account, error) {
	if f.blockGet {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.MemoryAccountStore.Get(ctx, id)
}

func (f *faultyAccounts) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, next model.Account) (*model.Account, error) {
	f.mu.Lock()
	f.casCalls++
	call := f.casCalls
	f.mu.Unlock()

	if f.beforeCAS != nil {
		if err := f.beforeCAS(call, id); err != nil {
			return nil, err
		}
	}
	stored, err := f.MemoryAccountStore.CompareAndSwap(ctx, id, expectedVersion, next)
	if err == nil && f.afterCAS != nil {
		f.afterCAS(call, id)
	}
	return stored, err
}

func (f *faultyAccounts) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.casCalls
}

type faultyLog struct {
	*repository.MemoryTransactionLog
	appendErr func() error
}

func (f *faultyLog) Append(ctx context.Context, tx model.Transaction) error {
	if f.appendErr != nil {
		if err := f.appendErr(); err != nil {
			return err
		}
	}
	return f.MemoryTransactionLog.Append(ctx, tx)
}

// atomicStore emulates a store with a multi-key commit primitive.
type atomicStore struct {
	*repository.MemoryAccountStore
	txLog *repository.MemoryTransactionLog

	mu        sync.Mutex
	commits   int
	directCAS int
	failFirst error
}

func (s *atomicStore) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, next model.Account) (*model.Account, error) {
	s.mu.Lock()
	s.directCAS++
	s.mu.Unlock()
	return s.MemoryAccountStore.CompareAndSwap(ctx, id, expectedVersion, next)
}

func (s *atomicStore) CommitAtomically(ctx context.Context, swaps []repository.Swap, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	if s.commits == 1 && s.failFirst != nil {
		return s.failFirst
	}
	for _, sw := range swaps {
		if _, err := s.MemoryAccountStore.CompareAndSwap(ctx, sw.ID, sw.ExpectedVersion, sw.Next); err != nil {
			return err
		}
	}
	return s.txLog.Append(ctx, tx)
}

// countingLog records how often each listing method is called.
type countingLog struct {
	*repository.MemoryTransactionLog
	listFor atomic.Int32
	listAll atomic.Int32
}

func (l *countingLog) ListFor(ctx context.Context, accountID string) iter.Seq2[model.Transaction, error] {
	l.listFor.Add(1)
	return l.MemoryTransactionLog.ListFor(ctx, accountID)
}

func (l *countingLog) ListAll(ctx context.Context) iter.Seq2[model.Transaction, error] {
	l.listAll.Add(1)
	return l.MemoryTransactionLog.ListAll(ctx)
}

func testLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxRetries:     5,
		AttemptTimeout: time.Second,
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}
}

func seedAccount(t *testing.T, store repository.IAccountStore, id, handle string, balance int64) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &model.Account{
		ID:           id,
		Handle:       handle,
		PasswordHash: "hashed:password123",
		PinHash:      "hashed:1234",
		Balance:      balance,
	}))
}

func balanceOf(t *testing.T, store repository.IAccountStore, id string) int64 {
	t.Helper()
	a, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func accountOf(t *testing.T, store repository.IAccountStore, id string) *model.Account {
	t.Helper()
	a, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

func historyOf(t *testing.T, txLog repository.ITransactionLog, id string) []model.Transaction {
	t.Helper()
	txs, err := repository.Collect(txLog.ListFor(context.Background(), id))
	require.NoError(t, err)
	return txs
}
