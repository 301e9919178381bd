package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one imported statement operation. Amount is never
// negative; the direction lives in Expense.
type TransactionRecord struct {
	Date        time.Time
	Amount      decimal.Decimal
	Currency    Currency
	Expense     bool
	Description string
	Note        string
	Category    string
	Source      string // institution or account label
	SourceColor uint32 // 0xRRGGBB
}

// Signed returns the amount with expenses negated.
func (r TransactionRecord) Signed() decimal.Decimal {
	if r.Expense {
		return r.Amount.Neg()
	}
	return r.Amount
}

// Direction returns "expense" or "income".
func (r TransactionRecord) Direction() string {
	if r.Expense {
		return "expense"
	}
	return "income"
}
