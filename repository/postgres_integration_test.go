//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-wallet-ledger/db"
	"go-wallet-ledger/model"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("wallet_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database, "../db/migrations"))
	return database
}

func TestPostgresStores_Integration(t *testing.T) {
	database := setupPostgres(t)
	ctx := context.Background()
	accounts := NewAccountRepository(database)
	log := NewTransactionRepository(database)

	alice := &model.Account{ID: "a1", Handle: "alice", PasswordHash: "x", PinHash: "y", Balance: 1000}
	bob := &model.Account{ID: "b1", Handle: "bob", PasswordHash: "x", PinHash: "y"}
	require.NoError(t, accounts.Create(ctx, alice))
	require.NoError(t, accounts.Create(ctx, bob))
	assert.ErrorIs(t, accounts.Create(ctx, &model.Account{ID: "c1", Handle: "alice", PasswordHash: "x", PinHash: "y"}), ErrAlreadyExists)

	tx := model.Transaction{ID: "t1", SenderID: "a1", ReceiverID: "b1", Amount: 300, CreatedAt: time.Now().UTC()}
	swaps := []Swap{
		{ID: "a1", ExpectedVersion: alice.Version, Next: alice.WithTransaction(-300, tx.ID)},
		{ID: "b1", ExpectedVersion: bob.Version, Next: bob.WithTransaction(300, tx.ID)},
	}
	require.NoError(t, accounts.CommitAtomically(ctx, swaps, tx))

	t.Run("replaying the same versions conflicts", func(t *testing.T) {
		err := accounts.CommitAtomically(ctx, swaps, tx)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("balances and history", func(t *testing.T) {
		a, err := accounts.Get(ctx, "a1")
		require.NoError(t, err)
		b, err := accounts.Get(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, int64(700), a.Balance)
		assert.Equal(t, int64(300), b.Balance)
		assert.Equal(t, []string{"t1"}, a.TransactionIDs)

		for _, id := range []string{"a1", "b1"} {
			txs, err := Collect(log.ListFor(ctx, id))
			require.NoError(t, err)
			require.Len(t, txs, 1)
			assert.Equal(t, "t1", txs[0].ID)
		}
	})

	t.Run("check constraint blocks negative balances", func(t *testing.T) {
		_, err := database.ExecContext(ctx, `UPDATE accounts SET balance = -1 WHERE id = $1`, "a1")
		assert.ErrorIs(t, translatePQError(err), ErrNegativeBalance)
	})
}
