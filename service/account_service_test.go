// file: service/account_service_test.go

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-wallet-ledger/model"
	"go-wallet-ledger/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockCache is a mock implementation of ICacheClient.
type mockCache struct{ mock.Mock }

func (m *mockCache) Get(_ context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(keys)
	return args.Get(0).(*redis.IntCmd)
}

type serviceFixture struct {
	svc      *AccountService
	accounts *repository.MemoryAccountStore
	engine   *LedgerEngine
	auth     *AuthGateway
}

func newServiceFixture(t *testing.T, cache ICacheClient) serviceFixture {
	t.Helper()
	accounts := repository.NewMemoryAccountStore()
	txLog := repository.NewMemoryTransactionLog()
	auth, err := NewAuthGateway("test-secret", time.Hour)
	require.NoError(t, err)
	engine := NewLedgerEngine(accounts, txLog, plainHasher{}, nil, testLedgerConfig())
	isAdmin := func(handle string) bool { return handle == "root" }
	return serviceFixture{
		svc:      NewAccountService(accounts, engine, auth, plainHasher{}, cache, isAdmin),
		accounts: accounts,
		engine:   engine,
		auth:     auth,
	}
}

func TestAccountService_Signup(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	account, err := f.svc.Signup(ctx, model.SignupRequest{Handle: "alice", Password: "password123", Pin: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, int64(0), account.Balance)

	stored := accountOf(t, f.accounts, account.ID)
	assert.Equal(t, "alice", stored.Handle)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NotEqual(t, "1234", stored.PinHash)

	_, err = f.svc.Signup(ctx, model.SignupRequest{Handle: "alice", Password: "other-password", Pin: "5678"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAccountService_Login(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	alice, err := f.svc.Signup(ctx, model.SignupRequest{Handle: "alice", Password: "password123", Pin: "1234"})
	require.NoError(t, err)
	_, err = f.svc.Signup(ctx, model.SignupRequest{Handle: "root", Password: "password123", Pin: "0000"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		tok, err := f.svc.Login(ctx, model.LoginRequest{Handle: "alice", Password: "password123", Pin: "1234"})
		require.NoError(t, err)

		claims, err := f.auth.Verify(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, claims.AccountID)
		assert.Equal(t, model.RoleUser, claims.Role)
	})

	t.Run("configured admin", func(t *testing.T) {
		tok, err := f.svc.Login(ctx, model.LoginRequest{Handle: "root", Password: "password123", Pin: "0000"})
		require.NoError(t, err)

		claims, err := f.auth.Verify(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	failures := map[string]model.LoginRequest{
		"wrong password": {Handle: "alice", Password: "nope-nope", Pin: "1234"},
		"wrong pin":      {Handle: "alice", Password: "password123", Pin: "9999"},
		"unknown handle": {Handle: "mallory", Password: "password123", Pin: "1234"},
	}
	for name, req := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestAccountService_ProfileCacheAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates the cache", func(t *testing.T) {
		cache := new(mockCache)
		f := newServiceFixture(t, cache)
		seedAccount(t, f.accounts, "acc-a", "alice", 250)

		cache.On("Get", "profile:acc-a").Return(redis.NewStringResult("", redis.Nil)).Once()
		cache.On("Set", "profile:acc-a", mock.Anything, profileCacheTTL).Return(redis.NewStatusResult("OK", nil)).Once()

		profile, err := f.svc.Profile(ctx, "acc-a")

		require.NoError(t, err)
		assert.Equal(t, int64(250), profile.Balance)
		assert.Equal(t, "2.50", profile.BalanceDisplay)
		cache.AssertExpectations(t)
	})

	t.Run("hit at the current version is served", func(t *testing.T) {
		cache := new(mockCache)
		f := newServiceFixture(t, cache)
		seedAccount(t, f.accounts, "acc-a", "alice", 250)
		cached, _ := json.Marshal(profileCacheEntry{
			Version: accountOf(t, f.accounts, "acc-a").Version,
			Profile: model.Profile{AccountID: "acc-a", Handle: "alice", Balance: 999},
		})

		cache.On("Get", "profile:acc-a").Return(redis.NewStringResult(string(cached), nil)).Once()

		profile, err := f.svc.Profile(ctx, "acc-a")

		require.NoError(t, err)
		assert.Equal(t, int64(999), profile.Balance)
		cache.AssertExpectations(t)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("entry from an older version is rebuilt", func(t *testing.T) {
		cache := new(mockCache)
		f := newServiceFixture(t, cache)
		seedAccount(t, f.accounts, "acc-a", "alice", 100)

		// An entry written from a read taken before the deposit below,
		// landing after that deposit's invalidation.
		staleVersion := accountOf(t, f.accounts, "acc-a").Version
		stale, _ := json.Marshal(profileCacheEntry{
			Version: staleVersion,
			Profile: model.Profile{AccountID: "acc-a", Handle: "alice", Balance: 100},
		})
		_, err := f.engine.Deposit(ctx, "acc-a", 50, "1234", "")
		require.NoError(t, err)

		cache.On("Get", "profile:acc-a").Return(redis.NewStringResult(string(stale), nil)).Once()
		fresh := mock.MatchedBy(func(data []byte) bool {
			var entry profileCacheEntry
			return json.Unmarshal(data, &entry) == nil && entry.Version > staleVersion && entry.Profile.Balance == 150
		})
		cache.On("Set", "profile:acc-a", fresh, profileCacheTTL).Return(redis.NewStatusResult("OK", nil)).Once()

		profile, err := f.svc.Profile(ctx, "acc-a")

		require.NoError(t, err)
		assert.Equal(t, int64(150), profile.Balance)
		assert.Len(t, profile.Transactions, 1)
		cache.AssertExpectations(t)
	})

	t.Run("entry for a missing account falls back to the store", func(t *testing.T) {
		cache := new(mockCache)
		f := newServiceFixture(t, cache)
		cached, _ := json.Marshal(profileCacheEntry{Version: 1, Profile: model.Profile{AccountID: "acc-a", Balance: 999}})

		cache.On("Get", "profile:acc-a").Return(redis.NewStringResult(string(cached), nil)).Once()

		_, err := f.svc.Profile(ctx, "acc-a")

		assert.ErrorIs(t, err, ErrAccountNotFound)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("corrupt entry falls back to the store", func(t *testing.T) {
		cache := new(mockCache)
		f := newServiceFixture(t, cache)
		seedAccount(t, f.accounts, "acc-a", "alice", 10)

		cache.On("Get", "profile:acc-a").Return(redis.NewStringResult("{not json", nil)).Once()
		cache.On("Set", "profile:acc-a", mock.Anything, profileCacheTTL).Return(redis.NewStatusResult("", assert.AnError)).Once()

		profile, err := f.svc.Profile(ctx, "acc-a")

		require.NoError(t, err)
		assert.Equal(t, int64(10), profile.Balance)
		cache.AssertExpectations(t)
	})
}

func TestAccountService_InvalidatesAfterCommit(t *testing.T) {
	ctx := context.Background()
	cache := new(mockCache)
	f := newServiceFixture(t, cache)
	seedAccount(t, f.accounts, "acc-a", "alice", 100)
	seedAccount(t, f.accounts, "acc-b", "bob", 0)

	cache.On("Del", []string{"profile:acc-a"}).Return(redis.NewIntResult(1, nil)).Once()
	_, err := f.svc.Deposit(ctx, "acc-a", model.DepositRequest{Amount: 10, Pin: "1234"}, "")
	require.NoError(t, err)

	cache.On("Del", []string{"profile:acc-a", "profile:acc-b"}).Return(redis.NewIntResult(2, nil)).Once()
	res, err := f.svc.Transfer(ctx, "acc-a", model.TransferRequest{ReceiverHandle: "bob", Amount: 60}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Balance)

	_, err = f.svc.Transfer(ctx, "acc-a", model.TransferRequest{ReceiverHandle: "bob", Amount: 1000}, "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	cache.AssertExpectations(t)
}

func TestAccountService_WithoutCache(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	seedAccount(t, f.accounts, "acc-a", "alice", 0)

	_, err := f.svc.Deposit(ctx, "acc-a", model.DepositRequest{Amount: 75, Pin: "1234"}, "")
	require.NoError(t, err)

	profile, err := f.svc.Profile(ctx, "acc-a")
	require.NoError(t, err)
	assert.Equal(t, int64(75), profile.Balance)
	require.Len(t, profile.Transactions, 1)

	summaries, err := f.svc.AdminList(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
