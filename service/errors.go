package service

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrReceiverNotFound    = errors.New("receiver does not exist")
	ErrAlreadyExists       = errors.New("user already exists")
	ErrInvalidCredential   = errors.New("invalid credentials")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("amount would exceed the maximum balance")
	ErrSelfTransfer        = errors.New("cannot transfer money to yourself")
	ErrContention          = errors.New("account is busy, please retry")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrIdempotencyInFlight = errors.New("a request with this idempotency key is still in progress")
	ErrIdempotencyMismatch = errors.New("idempotency key was already used with different parameters")
)

// Error kinds exposed to API clients.
const (
	KindNotFound            = "not_found"
	KindAlreadyExists       = "already_exists"
	KindInvalidCredential   = "invalid_credential"
	KindAmountInvalid       = "amount_invalid"
	KindInsufficientBalance = "insufficient_balance"
	KindSelfTransfer        = "self_transfer"
	KindContention          = "contention"
	KindUnauthorized        = "unauthorized"
	KindConflict            = "conflict"
	KindCanceled            = "canceled"
	KindInternal            = "internal"
)

// KindOf classifies err into the public error taxonomy.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrReceiverNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrInvalidCredential):
		return KindInvalidCredential
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrBalanceOverflow):
		return KindAmountInvalid
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrSelfTransfer):
		return KindSelfTransfer
	case errors.Is(err, ErrContention):
		return KindContention
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrIdempotencyInFlight), errors.Is(err, ErrIdempotencyMismatch):
		return KindConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
