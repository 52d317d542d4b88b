// Package report partitions categorized transactions and builds the
// summary views shown to the user.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/budget-report/internal/domain"
)

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// DateTotal is the summed expense amount for one date.
type DateTotal struct {
	Date   string
	Amount decimal.Decimal
}

// Partition splits records by sign. Positive amounts are expenses, negative
// amounts are payments; zero amounts land in neither. Input order is kept.
func Partition(records []domain.Transaction) (expenses, payments []domain.Transaction) {
	expenses = []domain.Transaction{}
	payments = []domain.Transaction{}
	for _, r := range records {
		switch {
		case r.IsExpense():
			expenses = append(expenses, r)
		case r.IsPayment():
			payments = append(payments, r)
		}
	}
	return expenses, payments
}

// CategoryTotals sums expenses per category, largest total first. Equal
// totals are ordered by category name.
func CategoryTotals(expenses []domain.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for cat, amt := range sums {
		out = append(out, CategoryTotal{Category: cat, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TimeSeries sums expenses per raw date string, latest date first.
// Dates are compared as text, which is chronological for ISO dates.
func TimeSeries(expenses []domain.Transaction) []DateTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Date] = sums[e.Date].Add(e.Amount)
	}

	out := make([]DateTotal, 0, len(sums))
	for date, amt := range sums {
		out = append(out, DateTotal{Date: date, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// GrandTotal sums all expense amounts. It is zero for no expenses.
func GrandTotal(expenses []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
