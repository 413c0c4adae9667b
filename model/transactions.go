package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExternalFundingID is the sender of every deposit. No account carries this id.
const ExternalFundingID = "external-funding"

type Transaction struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"-"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Amount         int64     `json:"amount"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t Transaction) Involves(accountID string) bool {
	return t.SenderID == accountID || t.ReceiverID == accountID
}

func (t Transaction) IsDeposit() bool {
	return t.SenderID == ExternalFundingID
}

// FormatMinor renders an amount held in the smallest currency unit with two decimals.
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
