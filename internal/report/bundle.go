package report

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/budget-report/internal/domain"
)

// Bundle is everything the presentation layer renders for one ledger.
type Bundle struct {
	Transactions   []domain.Transaction // every annotated record, input order
	Expenses       []domain.Transaction
	Payments       []domain.Transaction
	CategoryTotals []CategoryTotal
	TimeSeries     []DateTotal
	TotalExpenses  decimal.Decimal
}

// Assemble partitions the annotated records and computes every summary view.
func Assemble(annotated []domain.Transaction) *Bundle {
	records := make([]domain.Transaction, len(annotated))
	copy(records, annotated)

	expenses, payments := Partition(records)
	return &Bundle{
		Transactions:   records,
		Expenses:       expenses,
		Payments:       payments,
		CategoryTotals: CategoryTotals(expenses),
		TimeSeries:     TimeSeries(expenses),
		TotalExpenses:  GrandTotal(expenses),
	}
}

// Check verifies that the views of b agree with each other. It returns all
// violations joined together, or nil.
func (b *Bundle) Check() error {
	var errs []error

	var nonZero int
	for _, t := range b.Transactions {
		if !t.Amount.IsZero() {
			nonZero++
		}
	}
	if got := len(b.Expenses) + len(b.Payments); got != nonZero {
		errs = append(errs, fmt.Errorf("partition holds %d records, want %d non-zero records", got, nonZero))
	}
	for _, e := range b.Expenses {
		if !e.IsExpense() {
			errs = append(errs, fmt.Errorf("expense %q has non-positive amount %s", e.Description, e.Amount))
		}
	}
	for _, p := range b.Payments {
		if !p.IsPayment() {
			errs = append(errs, fmt.Errorf("payment %q has non-negative amount %s", p.Description, p.Amount))
		}
	}

	catSum := decimal.Zero
	for i, ct := range b.CategoryTotals {
		catSum = catSum.Add(ct.Amount)
		if i > 0 && ct.Amount.GreaterThan(b.CategoryTotals[i-1].Amount) {
			errs = append(errs, fmt.Errorf("category totals not descending at %q", ct.Category))
		}
	}
	if !catSum.Equal(b.TotalExpenses) {
		errs = append(errs, fmt.Errorf("category totals sum to %s, total expenses is %s", catSum, b.TotalExpenses))
	}

	dateSum := decimal.Zero
	for i, dt := range b.TimeSeries {
		dateSum = dateSum.Add(dt.Amount)
		if i > 0 && dt.Date >= b.TimeSeries[i-1].Date {
			errs = append(errs, fmt.Errorf("time series not descending at %q", dt.Date))
		}
	}
	if !dateSum.Equal(b.TotalExpenses) {
		errs = append(errs, fmt.Errorf("time series sums to %s, total expenses is %s", dateSum, b.TotalExpenses))
	}

	return errors.Join(errs...)
}
