package models

import "github.com/mmynk/hisab/internal/money"

// CashEntry is one line of a user's personal cash book: what the user and
// one counterparty owe each other outside any group.
type CashEntry struct {
	ID     string
	UserID string // book owner
	Name   string // counterparty

	// Receivable is what the counterparty owes the owner.
	Receivable money.Amount
	// Payable is what the owner owes the counterparty.
	Payable money.Amount

	CreatedAt int64
}

// Net is positive when the counterparty owes the owner on balance.
func (c CashEntry) Net() money.Amount {
	return c.Receivable.Sub(c.Payable)
}
