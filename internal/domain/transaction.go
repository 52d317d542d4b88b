package domain

import (
	"github.com/shopspring/decimal"
)

// Transaction is one row of an uploaded ledger.
// Amount follows the statement convention: positive values are expenses
// (debits), negative values are payments (credits).
type Transaction struct {
	Date        string          // raw text from the "Date" column, never reparsed
	Description string          // free-text merchant/payee line
	Amount      decimal.Decimal // signed, exact
	Category    string          // empty until categorized

	// Extra holds any further input columns verbatim, keyed by header.
	Extra map[string]string
}

// IsExpense reports whether the transaction is a debit.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsPositive()
}

// IsPayment reports whether the transaction is a credit.
func (t Transaction) IsPayment() bool {
	return t.Amount.IsNegative()
}

// WithCategory returns a copy of t labelled with category.
func (t Transaction) WithCategory(category string) Transaction {
	t.Category = category
	return t
}
