// file: service/ledger_engine.go

package service

import (
	"context"
	"errors"
	"fmt"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"
	"go-wallet-ledger/repository"
	"math"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LedgerConfig bounds the optimistic retry loop.
type LedgerConfig struct {
	MaxRetries     int
	AttemptTimeout time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultLedgerConfig returns the settings used when none are configured.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxRetries:     5,
		AttemptTimeout: 2 * time.Second,
		BackoffInitial: 5 * time.Millisecond,
		BackoffMax:     200 * time.Millisecond,
	}
}

// EventPublisher receives every committed transaction. Publishing is best-effort.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, tx model.Transaction) error
}

// errRetry marks an attempt that lost an optimistic race and left no effect.
var errRetry = errors.New("attempt lost a version race")

// idempotencyNamespace scopes transaction ids derived from idempotency keys.
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("go-wallet-ledger.transactions"))

// LedgerEngine moves value between accounts. A deposit or transfer either
// updates every balance involved and appends exactly one transaction, or
// leaves no persisted effect.
//
// With a store implementing repository.IAtomicCommitter all writes of an
// attempt are committed as one unit. Otherwise accounts are swapped one at a
// time in ascending id order, and a later failure is undone by compensating
// writes that are retried until they succeed.
type LedgerEngine struct {
	accounts  repository.IAccountStore
	txLog     repository.ITransactionLog
	committer repository.IAtomicCommitter
	hasher    CredentialHasher
	events    EventPublisher
	cfg       LedgerConfig
	now       func() time.Time
}

// NewLedgerEngine fills zero config fields with defaults and detects atomic commit support on accounts.
func NewLedgerEngine(accounts repository.IAccountStore, txLog repository.ITransactionLog, hasher CredentialHasher, events EventPublisher, cfg LedgerConfig) *LedgerEngine {
	defaults := DefaultLedgerConfig()
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaults.AttemptTimeout
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = defaults.BackoffInitial
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = max(defaults.BackoffMax, cfg.BackoffInitial)
	}
	committer, _ := accounts.(repository.IAtomicCommitter)
	return &LedgerEngine{
		accounts:  accounts,
		txLog:     txLog,
		committer: committer,
		hasher:    hasher,
		events:    events,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// appliedSwap records a committed single-account write so it can be undone.
type appliedSwap struct {
	accountID string
	delta     int64
}

// Deposit credits amount to accountID from the external funding source after
// checking pin against the account's PIN hash.
func (e *LedgerEngine) Deposit(ctx context.Context, accountID string, amount int64, pin, idempotencyKey string) (*model.LedgerResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount,
	})
	log.Info("Starting deposit")

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	account, err := e.loadAccount(ctx, accountID, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	if !e.hasher.Verify(pin, account.PinHash) {
		log.Warn("Deposit rejected: PIN mismatch")
		return nil, ErrInvalidCredential
	}

	tx := e.newTransaction(accountID, model.ExternalFundingID, accountID, amount, idempotencyKey)
	if result, err := e.replay(ctx, tx, accountID); result != nil || err != nil {
		return result, err
	}

	result, err := e.withRetries(ctx, log, func(attemptCtx context.Context) (*model.LedgerResult, error) {
		return e.tryDeposit(ctx, attemptCtx, tx)
	})
	if err != nil {
		return nil, err
	}
	log.WithField("transaction_id", result.Transaction.ID).Info("Deposit committed")
	return result, nil
}

// Transfer moves amount from senderID to the account owning receiverHandle.
func (e *LedgerEngine) Transfer(ctx context.Context, senderID, receiverHandle string, amount int64, idempotencyKey string) (*model.LedgerResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"sender_id":       senderID,
		"receiver_handle": receiverHandle,
		"amount":          amount,
	})
	log.Info("Starting money transfer process")

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	receiver, err := e.accounts.GetByHandle(ctx, receiverHandle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}
	if receiver.ID == senderID {
		return nil, ErrSelfTransfer
	}

	tx := e.newTransaction(senderID, senderID, receiver.ID, amount, idempotencyKey)
	if result, err := e.replay(ctx, tx, senderID); result != nil || err != nil {
		return result, err
	}

	result, err := e.withRetries(ctx, log, func(attemptCtx context.Context) (*model.LedgerResult, error) {
		return e.tryTransfer(ctx, attemptCtx, tx)
	})
	if err != nil {
		return nil, err
	}
	log.WithField("transaction_id", result.Transaction.ID).Info("Transaction completed successfully")
	return result, nil
}

// Profile returns the account balance and its history in creation order.
func (e *LedgerEngine) Profile(ctx context.Context, accountID string) (*model.Profile, error) {
	account, err := e.loadAccount(ctx, accountID, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	views, err := e.history(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &model.Profile{
		AccountID:      account.ID,
		Handle:         account.Handle,
		Balance:        account.Balance,
		BalanceDisplay: model.FormatMinor(account.Balance),
		Transactions:   views,
		Version:        account.Version,
	}, nil
}

// AdminList summarises every account. Callers enforce who may see it.
func (e *LedgerEngine) AdminList(ctx context.Context) ([]model.AccountSummary, error) {
	accounts, err := e.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make(map[string][]model.TransactionView, len(accounts))
	for t, err := range e.txLog.ListAll(ctx) {
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		views[t.SenderID] = append(views[t.SenderID], model.NewTransactionView(t, t.SenderID))
		if t.ReceiverID != t.SenderID {
			views[t.ReceiverID] = append(views[t.ReceiverID], model.NewTransactionView(t, t.ReceiverID))
		}
	}

	summaries := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		history := views[a.ID]
		if history == nil {
			history = []model.TransactionView{}
		}
		summaries = append(summaries, model.AccountSummary{
			AccountID:      a.ID,
			Handle:         a.Handle,
			Balance:        a.Balance,
			BalanceDisplay: model.FormatMinor(a.Balance),
			Transactions:   history,
		})
	}
	return summaries, nil
}

// withRetries runs attempt until it stops reporting errRetry or the retry
// budget is spent. Cancellation is honored only between attempts, where no
// effect has been persisted.
func (e *LedgerEngine) withRetries(ctx context.Context, log *logrus.Entry, attempt func(context.Context) (*model.LedgerResult, error)) (*model.LedgerResult, error) {
	wait := e.newBackOff()
	for i := 1; i <= e.cfg.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		result, err := attempt(attemptCtx)
		cancel()
		if !errors.Is(err, errRetry) {
			return result, err
		}

		log.WithField("attempt", i).Debug("Version conflict, retrying")
		if i == e.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait.NextBackOff()):
		}
	}
	log.Warn("Retries exhausted")
	return nil, ErrContention
}

func (e *LedgerEngine) tryDeposit(ctx, attemptCtx context.Context, tx model.Transaction) (*model.LedgerResult, error) {
	account, err := e.loadAccount(attemptCtx, tx.ReceiverID, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	if account.HasTransaction(tx.ID) {
		return e.inFlight(ctx, tx, tx.ReceiverID)
	}
	if overflows(account.Balance, tx.Amount) {
		return nil, ErrBalanceOverflow
	}

	tx.CreatedAt = e.now()
	swaps := []repository.Swap{{
		ID:              account.ID,
		ExpectedVersion: account.Version,
		Next:            account.WithTransaction(tx.Amount, tx.ID),
	}}
	if err := e.commit(ctx, attemptCtx, swaps, []appliedSwap{{accountID: account.ID, delta: tx.Amount}}, tx); err != nil {
		return nil, err
	}
	return e.committed(ctx, tx, swaps[0].Next.Balance), nil
}

func (e *LedgerEngine) tryTransfer(ctx, attemptCtx context.Context, tx model.Transaction) (*model.LedgerResult, error) {
	sender, err := e.loadAccount(attemptCtx, tx.SenderID, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := e.loadAccount(attemptCtx, tx.ReceiverID, ErrReceiverNotFound)
	if err != nil {
		return nil, err
	}
	if sender.HasTransaction(tx.ID) || receiver.HasTransaction(tx.ID) {
		return e.inFlight(ctx, tx, tx.SenderID)
	}
	if sender.Balance < tx.Amount {
		return nil, ErrInsufficientBalance
	}
	if overflows(receiver.Balance, tx.Amount) {
		return nil, ErrBalanceOverflow
	}

	tx.CreatedAt = e.now()
	debit := repository.Swap{ID: sender.ID, ExpectedVersion: sender.Version, Next: sender.WithTransaction(-tx.Amount, tx.ID)}
	credit := repository.Swap{ID: receiver.ID, ExpectedVersion: receiver.Version, Next: receiver.WithTransaction(tx.Amount, tx.ID)}
	swaps := []repository.Swap{debit, credit}
	deltas := []appliedSwap{{accountID: sender.ID, delta: -tx.Amount}, {accountID: receiver.ID, delta: tx.Amount}}

	// Fixed global order by account id.
	if receiver.ID < sender.ID {
		slices.Reverse(swaps)
		slices.Reverse(deltas)
	}

	if err := e.commit(ctx, attemptCtx, swaps, deltas, tx); err != nil {
		return nil, err
	}
	return e.committed(ctx, tx, debit.Next.Balance), nil
}

// commit persists one attempt. It returns errRetry when the attempt lost a
// version race and nothing was left behind.
func (e *LedgerEngine) commit(ctx, attemptCtx context.Context, swaps []repository.Swap, deltas []appliedSwap, tx model.Transaction) error {
	if e.committer != nil {
		err := e.committer.CommitAtomically(attemptCtx, swaps, tx)
		if isRace(err) {
			return errRetry
		}
		if err != nil {
			return fmt.Errorf("commit ledger transaction: %w", err)
		}
		return nil
	}

	if err := attemptCtx.Err(); err != nil {
		return err
	}
	if _, err := e.accounts.CompareAndSwap(attemptCtx, swaps[0].ID, swaps[0].ExpectedVersion, swaps[0].Next); err != nil {
		if isRace(err) {
			return errRetry
		}
		return fmt.Errorf("update account %s: %w", swaps[0].ID, err)
	}

	// The first swap is visible. From here on caller cancellation is ignored:
	// the attempt either completes or is compensated.
	detached := context.WithoutCancel(ctx)
	applied := deltas[:1]
	for i := 1; i < len(swaps); i++ {
		if _, err := e.accounts.CompareAndSwap(detached, swaps[i].ID, swaps[i].ExpectedVersion, swaps[i].Next); err != nil {
			e.compensate(detached, tx, applied)
			if isRace(err) {
				return errRetry
			}
			return fmt.Errorf("update account %s: %w", swaps[i].ID, err)
		}
		applied = deltas[:i+1]
	}

	if err := e.txLog.Append(detached, tx); err != nil {
		e.compensate(detached, tx, applied)
		return fmt.Errorf("could not create transaction record: %w", err)
	}
	return nil
}

// compensate reverses applied swaps, newest first. Each reversal is retried
// until it succeeds; a reversal that would leave a negative balance waits for
// funds rather than breaking the non-negativity invariant.
func (e *LedgerEngine) compensate(ctx context.Context, tx model.Transaction, applied []appliedSwap) {
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		log := logger.Log.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"account_id":     a.accountID,
		})

		undo := func() error {
			current, err := e.accounts.Get(ctx, a.accountID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return backoff.Permanent(err)
				}
				return err
			}
			if !current.HasTransaction(tx.ID) {
				return nil
			}
			_, err = e.accounts.CompareAndSwap(ctx, a.accountID, current.Version, current.WithoutTransaction(a.delta, tx.ID))
			return err
		}
		notify := func(err error, next time.Duration) {
			log.WithError(err).WithField("next_attempt_in", next).Warn("Compensation attempt failed, retrying")
		}

		b := e.newBackOff()
		b.MaxElapsedTime = 0
		if err := backoff.RetryNotify(undo, b, notify); err != nil {
			log.WithError(err).Error("Compensation abandoned")
			continue
		}
		log.Info("Compensated partially applied transaction")
	}
}

// replay returns the stored outcome of an earlier request with the same
// idempotency key, or (nil, nil) when there is none.
func (e *LedgerEngine) replay(ctx context.Context, tx model.Transaction, actorID string) (*model.LedgerResult, error) {
	if tx.IdempotencyKey == "" {
		return nil, nil
	}
	existing, err := e.txLog.Get(ctx, tx.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing.SenderID != tx.SenderID || existing.ReceiverID != tx.ReceiverID || existing.Amount != tx.Amount {
		return nil, ErrIdempotencyMismatch
	}
	actor, err := e.loadAccount(ctx, actorID, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	return &model.LedgerResult{Transaction: *existing, Balance: actor.Balance, Replayed: true}, nil
}

// inFlight handles an account that already references tx: another request
// with the same idempotency key got there first.
func (e *LedgerEngine) inFlight(ctx context.Context, tx model.Transaction, actorID string) (*model.LedgerResult, error) {
	result, err := e.replay(ctx, tx, actorID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrIdempotencyInFlight
	}
	return result, nil
}

func (e *LedgerEngine) committed(ctx context.Context, tx model.Transaction, actorBalance int64) *model.LedgerResult {
	if e.events != nil {
		if err := e.events.PublishTransaction(context.WithoutCancel(ctx), tx); err != nil {
			logger.Log.WithError(err).WithField("transaction_id", tx.ID).Warn("Failed to publish transaction event")
		}
	}
	return &model.LedgerResult{Transaction: tx, Balance: actorBalance}
}

func (e *LedgerEngine) history(ctx context.Context, accountID string) ([]model.TransactionView, error) {
	views := []model.TransactionView{}
	for t, err := range e.txLog.ListFor(ctx, accountID) {
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		views = append(views, model.NewTransactionView(t, accountID))
	}
	return views, nil
}

func (e *LedgerEngine) loadAccount(ctx context.Context, id string, notFound error) (*model.Account, error) {
	account, err := e.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return account, nil
}

// newTransaction derives the id from actor and key when a key is given, so a
// retried request maps onto the same record.
func (e *LedgerEngine) newTransaction(actorID, senderID, receiverID string, amount int64, idempotencyKey string) model.Transaction {
	id := uuid.New()
	if idempotencyKey != "" {
		id = uuid.NewSHA1(idempotencyNamespace, []byte(actorID+"\x00"+idempotencyKey))
	}
	return model.Transaction{
		ID:             id.String(),
		IdempotencyKey: idempotencyKey,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Amount:         amount,
	}
}

func (e *LedgerEngine) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.BackoffInitial
	b.MaxInterval = e.cfg.BackoffMax
	b.Reset()
	return b
}

// overflows reports whether crediting amount to balance exceeds int64.
func overflows(balance, amount int64) bool {
	return balance > math.MaxInt64-amount
}

func isRace(err error) bool {
	return errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrNegativeBalance)
}
