package model

import "time"

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// TransactionView is a transaction as seen from one participant.
type TransactionView struct {
	ID             string    `json:"id"`
	Direction      Direction `json:"direction"`
	CounterpartyID string    `json:"counterparty_id"`
	Amount         int64     `json:"amount"`
	AmountDisplay  string    `json:"amount_display"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewTransactionView(t Transaction, viewerID string) TransactionView {
	v := TransactionView{
		ID:            t.ID,
		Direction:     DirectionIn,
		Amount:        t.Amount,
		AmountDisplay: FormatMinor(t.Amount),
		CreatedAt:     t.CreatedAt,
	}
	if t.SenderID == viewerID {
		v.Direction = DirectionOut
		v.CounterpartyID = t.ReceiverID
	} else {
		v.CounterpartyID = t.SenderID
	}
	return v
}

type Profile struct {
	AccountID      string            `json:"account_id"`
	Handle         string            `json:"handle"`
	Balance        int64             `json:"balance"`
	BalanceDisplay string            `json:"balance_display"`
	Transactions   []TransactionView `json:"transactions"`
	// Version is the account version the profile was read at.
	Version        int64             `json:"-"`
}

// AccountSummary is one row of the administrative listing.
type AccountSummary struct {
	AccountID      string            `json:"account_id"`
	Handle         string            `json:"handle"`
	Balance        int64             `json:"balance"`
	BalanceDisplay string            `json:"balance_display"`
	Transactions   []TransactionView `json:"transactions"`
}

// LedgerResult is returned by deposits and transfers.
type LedgerResult struct {
	Transaction Transaction `json:"transaction"`
	Balance     int64       `json:"balance"`
	Replayed    bool        `json:"replayed"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
