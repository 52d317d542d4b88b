package render

import (
	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/report"
)

func transactionsTable(columns []string, records []domain.Transaction, symbol string) string {
	t := newTable(columns...)
	for _, r := range records {
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			switch c {
			case "Date":
				row = append(row, r.Date)
			case "Description":
				row = append(row, r.Description)
			case "Amount":
				row = append(row, FormatAmount(r.Amount, symbol))
			case "Category":
				row = append(row, r.Category)
			default:
				row = append(row, r.Extra[c])
			}
		}
		t.Row(row...)
	}
	return t.String()
}

func categoryTable(totals []report.CategoryTotal, symbol string) string {
	t := newTable("Category", "Amount")
	for _, ct := range totals {
		t.Row(ct.Category, FormatAmount(ct.Amount, symbol))
	}
	return t.String()
}

func timeSeriesTable(totals []report.DateTotal, symbol string) string {
	t := newTable("Date", "Amount")
	for _, dt := range totals {
		t.Row(dt.Date, FormatAmount(dt.Amount, symbol))
	}
	return t.String()
}
