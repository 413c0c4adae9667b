package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"
	"iter"

	"github.com/sirupsen/logrus"
)

const transactionColumns = `id, idempotency_key, sender_id, receiver_id, amount, created_at`

// TransactionRepository is the PostgreSQL transaction log.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) Append(ctx context.Context, tx model.Transaction) error {
	return insertTransaction(ctx, r.DB, tx)
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (*model.Transaction, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListFor runs its query each time the sequence is ranged over.
func (r *TransactionRepository) ListFor(ctx context.Context, accountID string) iter.Seq2[model.Transaction, error] {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at ASC, id ASC`
	return r.list(ctx, logger.Log.WithField("account_id", accountID), query, accountID)
}

func (r *TransactionRepository) ListAll(ctx context.Context) iter.Seq2[model.Transaction, error] {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at ASC, id ASC`
	return r.list(ctx, logger.Log.WithField("scope", "all"), query)
}

func (r *TransactionRepository) list(ctx context.Context, log *logrus.Entry, query string, args ...any) iter.Seq2[model.Transaction, error] {
	return func(yield func(model.Transaction, error) bool) {
		rows, err := r.DB.QueryContext(ctx, query, args...)
		if err != nil {
			log.WithError(err).Error("Failed to execute query for transactions")
			yield(model.Transaction{}, fmt.Errorf("list transactions: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				log.WithError(err).Error("Failed to scan transaction row")
				yield(model.Transaction{}, fmt.Errorf("list transactions: scan: %w", err))
				return
			}
			if !yield(*t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Transaction{}, fmt.Errorf("list transactions: rows: %w", err))
		}
	}
}

// insertTransaction is a no-op when the id is already present.
func insertTransaction(ctx context.Context, q queryer, tx model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"sender_id":      tx.SenderID,
		"receiver_id":    tx.ReceiverID,
		"amount":         tx.Amount,
	})
	log.Info("Executing query to append a transaction")

	var key sql.NullString
	if tx.IdempotencyKey != "" {
		key = sql.NullString{String: tx.IdempotencyKey, Valid: true}
	}
	query := `INSERT INTO transactions (id, idempotency_key, sender_id, receiver_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, tx.ID, key, tx.SenderID, tx.ReceiverID, tx.Amount, tx.CreatedAt); err != nil {
		log.WithError(err).Error("Failed to execute append transaction query")
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var t model.Transaction
	var key sql.NullString
	if err := s.Scan(&t.ID, &key, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.IdempotencyKey = key.String
	return &t, nil
}

var _ ITransactionLog = (*TransactionRepository)(nil)
