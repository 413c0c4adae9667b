// file: service/account_service.go

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"
	"go-wallet-ledger/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountService translates API requests into ledger and store calls.
type AccountService struct {
	accounts repository.IAccountStore
	engine   *LedgerEngine
	auth     *AuthGateway
	hasher   CredentialHasher
	cache    ICacheClient
	isAdmin  func(handle string) bool
}

// NewAccountService wires the service. cache may be nil, in which case
// profiles are always read from the store.
func NewAccountService(accounts repository.IAccountStore, engine *LedgerEngine, auth *AuthGateway, hasher CredentialHasher, cache ICacheClient, isAdmin func(string) bool) *AccountService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AccountService{
		accounts: accounts,
		engine:   engine,
		auth:     auth,
		hasher:   hasher,
		cache:    cache,
		isAdmin:  isAdmin,
	}
}

// Signup creates an account with zero balance.
func (s *AccountService) Signup(ctx context.Context, req model.SignupRequest) (*model.Account, error) {
	log := logger.Log.WithField("handle", req.Handle)

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	pinHash, err := s.hasher.Hash(req.Pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Handle:         req.Handle,
		PasswordHash:   passwordHash,
		PinHash:        pinHash,
		TransactionIDs: []string{},
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			log.Warn("Signup rejected: handle taken")
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	log.WithField("account_id", account.ID).Info("Account created")
	return account, nil
}

// Login checks password and PIN and issues a session token. Every failure
// reports ErrInvalidCredential so callers cannot tell which factor was wrong.
func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	log := logger.Log.WithField("handle", req.Handle)

	account, err := s.accounts.GetByHandle(ctx, req.Handle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Login failed: unknown handle")
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !s.hasher.Verify(req.Password, account.PasswordHash) || !s.hasher.Verify(req.Pin, account.PinHash) {
		log.Warn("Login failed: credential mismatch")
		return nil, ErrInvalidCredential
	}

	role := model.RoleUser
	if s.isAdmin(account.Handle) {
		role = model.RoleAdmin
	}
	token, err := s.auth.IssueToken(account.ID, role)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"account_id": account.ID, "role": role}).Info("Login successful")
	return token, nil
}

func (s *AccountService) Deposit(ctx context.Context, accountID string, req model.DepositRequest, idempotencyKey string) (*model.LedgerResult, error) {
	result, err := s.engine.Deposit(ctx, accountID, req.Amount, req.Pin, idempotencyKey)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Transaction.ReceiverID)
	return result, nil
}

func (s *AccountService) Transfer(ctx context.Context, senderID string, req model.TransferRequest, idempotencyKey string) (*model.LedgerResult, error) {
	result, err := s.engine.Transfer(ctx, senderID, req.ReceiverHandle, req.Amount, idempotencyKey)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Transaction.SenderID, result.Transaction.ReceiverID)
	return result, nil
}

// Profile uses a cache-aside strategy when a cache is configured. A cached
// entry is served only while the account version it was built from is current.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*model.Profile, error) {
	key := profileCacheKey(accountID)

	if s.cache != nil {
		if profile := s.cachedProfile(ctx, key, accountID); profile != nil {
			return profile, nil
		}
	}

	profile, err := s.engine.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		entry := profileCacheEntry{Version: profile.Version, Profile: *profile}
		if data, err := json.Marshal(entry); err == nil {
			if err := s.cache.Set(ctx, key, data, profileCacheTTL).Err(); err != nil {
				logger.Log.WithError(err).WithField("account_id", accountID).Warn("Failed to cache profile")
			}
		}
	}
	return profile, nil
}

func (s *AccountService) cachedProfile(ctx context.Context, key, accountID string) *model.Profile {
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var entry profileCacheEntry
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		return nil
	}
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil || account.Version != entry.Version {
		return nil
	}
	entry.Profile.Version = entry.Version
	return &entry.Profile
}

// AdminList is never cached; administrators see live balances.
func (s *AccountService) AdminList(ctx context.Context) ([]model.AccountSummary, error) {
	return s.engine.AdminList(ctx)
}

// invalidate drops cached profiles of every real account touched by a commit.
func (s *AccountService) invalidate(ctx context.Context, accountIDs ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if id != model.ExternalFundingID {
			keys = append(keys, profileCacheKey(id))
		}
	}
	if err := s.cache.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Failed to invalidate profile cache")
	}
}
