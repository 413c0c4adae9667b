package model

import (
	"slices"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is the ledger-side state of a wallet. Version increases by one on
// every successful compare-and-swap and is never exposed over the API.
type Account struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	PasswordHash   string    `json:"-"`
	PinHash        string    `json:"-"`
	Balance        int64     `json:"balance"`
	Version        int64     `json:"-"`
	TransactionIDs []string  `json:"transaction_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// Clone returns a copy that shares no memory with a.
func (a Account) Clone() Account {
	a.TransactionIDs = slices.Clone(a.TransactionIDs)
	return a
}

func (a Account) HasTransaction(id string) bool {
	return slices.Contains(a.TransactionIDs, id)
}

// WithTransaction returns the state after applying delta and recording the
// transaction reference. The receiver is left untouched.
func (a Account) WithTransaction(delta int64, txID string) Account {
	next := a.Clone()
	next.Balance += delta
	next.TransactionIDs = append(next.TransactionIDs, txID)
	return next
}

// WithoutTransaction reverses WithTransaction.
func (a Account) WithoutTransaction(delta int64, txID string) Account {
	next := a.Clone()
	next.Balance -= delta
	next.TransactionIDs = slices.DeleteFunc(next.TransactionIDs, func(id string) bool { return id == txID })
	return next
}
