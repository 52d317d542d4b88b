package report

import (
	"sort"

	"github.com/dvloznov/budget-report/internal/domain"
)

// TransactionView is the wire form of an annotated transaction.
type TransactionView struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Amount      string            `json:"amount"`
	Category    string            `json:"category"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// CategoryTotalView is one row of the expense summary table.
type CategoryTotalView struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// DateTotalView is one row of the expenses-over-time table.
type DateTotalView struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// View is the JSON representation of a Bundle. Amounts are rendered with two
// decimal places; currency symbols are left to the client.
type View struct {
	Columns        []string            `json:"columns"`
	Transactions   []TransactionView   `json:"transactions"`
	Expenses       []TransactionView   `json:"expenses"`
	Payments       []TransactionView   `json:"payments"`
	CategoryTotals []CategoryTotalView `json:"category_totals"`
	TimeSeries     []DateTotalView     `json:"time_series"`
	TotalExpenses  string              `json:"total_expenses"`
}

// View converts b into its wire form.
func (b *Bundle) View() View {
	v := View{
		Columns:        columns(b.Transactions),
		Transactions:   transactionViews(b.Transactions),
		Expenses:       transactionViews(b.Expenses),
		Payments:       transactionViews(b.Payments),
		CategoryTotals: make([]CategoryTotalView, 0, len(b.CategoryTotals)),
		TimeSeries:     make([]DateTotalView, 0, len(b.TimeSeries)),
		TotalExpenses:  b.TotalExpenses.StringFixed(2),
	}
	for _, ct := range b.CategoryTotals {
		v.CategoryTotals = append(v.CategoryTotals, CategoryTotalView{Category: ct.Category, Amount: ct.Amount.StringFixed(2)})
	}
	for _, dt := range b.TimeSeries {
		v.TimeSeries = append(v.TimeSeries, DateTotalView{Date: dt.Date, Amount: dt.Amount.StringFixed(2)})
	}
	return v
}

func transactionViews(records []domain.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(records))
	for _, r := range records {
		out = append(out, TransactionView{
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.Amount.StringFixed(2),
			Category:    r.Category,
			Extra:       r.Extra,
		})
	}
	return out
}

// columns lists the table headers: the required columns, any extra input
// columns in name order, then Category.
func columns(records []domain.Transaction) []string {
	extra := make(map[string]bool)
	for _, r := range records {
		for k := range r.Extra {
			extra[k] = true
		}
	}
	names := make([]string, 0, len(extra))
	for k := range extra {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := []string{"Date", "Description", "Amount"}
	cols = append(cols, names...)
	return append(cols, "Category")
}
