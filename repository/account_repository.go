package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const accountColumns = `id, handle, password_hash, pin_hash, balance, version, transaction_ids, created_at`

// AccountRepository is the PostgreSQL account store.
type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("account_id", id).Error("Failed to execute get account query")
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE handle = $1`, handle)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("handle", handle).Error("Failed to execute get account by handle query")
		return nil, fmt.Errorf("get account by handle: %w", err)
	}
	return account, nil
}

// Create adds a new account to the database.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"handle":     account.Handle,
	})
	log.Info("Executing query to create a new account")

	if account.TransactionIDs == nil {
		account.TransactionIDs = []string{}
	}
	query := `INSERT INTO accounts (id, handle, password_hash, pin_hash, balance, version, transaction_ids)
		VALUES ($1, $2, $3, $4, $5, 1, $6) RETURNING version, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		account.ID, account.Handle, account.PasswordHash, account.PinHash, account.Balance, pq.Array(account.TransactionIDs),
	).Scan(&account.Version, &account.CreatedAt)
	if err != nil {
		if translated := translatePQError(err); translated != err {
			return translated
		}
		log.WithError(err).Error("Failed to execute create account query")
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, next model.Account) (*model.Account, error) {
	return compareAndSwap(ctx, r.DB, id, expectedVersion, next)
}

// CommitAtomically applies every swap and inserts tx inside one SQL transaction.
// Any conflict rolls the whole unit back.
func (r *AccountRepository) CommitAtomically(ctx context.Context, swaps []Swap, tx model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"swaps":          len(swaps),
	})

	sqlTx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, s := range swaps {
		if _, err := compareAndSwap(ctx, sqlTx, s.ID, s.ExpectedVersion, s.Next); err != nil {
			return err
		}
	}
	if err := insertTransaction(ctx, sqlTx, tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit ledger transaction")
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// List returns every account ordered by handle. For admin use only.
func (r *AccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	log := logger.Log
	log.Info("Executing query to get all accounts")

	rows, err := r.DB.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY handle`)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, fmt.Errorf("list accounts: scan: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: rows: %w", err)
	}
	return accounts, nil
}

func compareAndSwap(ctx context.Context, q queryer, id string, expectedVersion int64, next model.Account) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":       id,
		"expected_version": expectedVersion,
	})
	if next.Balance < 0 {
		return nil, ErrNegativeBalance
	}

	refs := next.TransactionIDs
	if refs == nil {
		refs = []string{}
	}
	query := `UPDATE accounts SET balance = $1, transaction_ids = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING ` + accountColumns
	account, err := scanAccount(q.QueryRowContext(ctx, query, next.Balance, pq.Array(refs), id, expectedVersion))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		if translated := translatePQError(err); translated != err {
			return nil, translated
		}
		log.WithError(err).Error("Failed to execute compare-and-swap query")
		return nil, fmt.Errorf("compare and swap: %w", err)
	}

	// No row matched: either the account is gone or its version moved on.
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("compare and swap: existence check: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	log.Debug("Version conflict on account swap")
	return nil, ErrVersionConflict
}

func scanAccount(s scanner) (*model.Account, error) {
	var a model.Account
	var refs pq.StringArray
	err := s.Scan(&a.ID, &a.Handle, &a.PasswordHash, &a.PinHash, &a.Balance, &a.Version, &refs, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.TransactionIDs = []string(refs)
	if a.TransactionIDs == nil {
		a.TransactionIDs = []string{}
	}
	return &a, nil
}

var (
	_ IAccountStore    = (*AccountRepository)(nil)
	_ IAtomicCommitter = (*AccountRepository)(nil)
)
