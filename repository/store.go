// file: repository/store.go

package repository

import (
	"context"
	"errors"
	"iter"
	"slices"

	"go-wallet-ledger/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrVersionConflict = errors.New("optimistic lock conflict")
	ErrNegativeBalance = errors.New("balance would become negative")
)

// IAccountStore is the durable account mapping. Every mutation goes through
// CompareAndSwap; there is no unconditional update.
type IAccountStore interface {
	Get(ctx context.Context, id string) (*model.Account, error)
	GetByHandle(ctx context.Context, handle string) (*model.Account, error)
	// Create stores a new account at version 1. It fails with ErrAlreadyExists
	// when the handle or id is taken.
	Create(ctx context.Context, account *model.Account) error
	// CompareAndSwap replaces balance and transaction references of account id
	// if its stored version equals expectedVersion, and returns the new state.
	// Identity fields (id, handle, hashes, created_at) are not swappable.
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, next model.Account) (*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error)
}

// ITransactionLog is append-only. Records are immutable once written.
type ITransactionLog interface {
	// Append is idempotent on the transaction id.
	Append(ctx context.Context, tx model.Transaction) error
	Get(ctx context.Context, id string) (*model.Transaction, error)
	// ListFor yields the account's transactions in ascending creation order.
	// Each range over the returned sequence reads the log again.
	ListFor(ctx context.Context, accountID string) iter.Seq2[model.Transaction, error]
	// ListAll yields every transaction in the same order as ListFor.
	ListAll(ctx context.Context) iter.Seq2[model.Transaction, error]
}

// Swap is a single conditional account write used by IAtomicCommitter.
type Swap struct {
	ID              string
	ExpectedVersion int64
	Next            model.Account
}

// IAtomicCommitter is implemented by stores that can apply several account
// swaps and a transaction append as one unit.
type IAtomicCommitter interface {
	CommitAtomically(ctx context.Context, swaps []Swap, tx model.Transaction) error
}

// Collect drains a transaction sequence, stopping at the first error.
func Collect(seq iter.Seq2[model.Transaction, error]) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func sortByCreation(txs []model.Transaction) {
	slices.SortStableFunc(txs, func(a, b model.Transaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
