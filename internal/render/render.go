// Package render draws reports and rule tables for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/report"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9e2af")).MarginTop(1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	totalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a6e3a1"))
)

// Options control report rendering.
type Options struct {
	Heading        string
	CurrencySymbol string
}

// FormatAmount renders d with two decimals, thousands separators and the
// currency symbol after the sign, e.g. -£1,200.50.
func FormatAmount(d decimal.Decimal, symbol string) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	_, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + symbol + humanize.BigComma(d.BigInt()) + "." + frac
}

// Report writes the expenses and payments sections of b to w.
func Report(w io.Writer, b *report.Bundle, opts Options) error {
	var sb strings.Builder
	columns := b.View().Columns

	if opts.Heading != "" {
		sb.WriteString(headingStyle.Render(opts.Heading))
		sb.WriteString("\n")
	}

	sb.WriteString(sectionStyle.Render("Expenses (Debits)"))
	sb.WriteString("\n")
	sb.WriteString(transactionsTable(columns, b.Expenses, opts.CurrencySymbol))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Expense Summary by Category"))
	sb.WriteString("\n")
	sb.WriteString(categoryTable(b.CategoryTotals, opts.CurrencySymbol))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Expenses over Time"))
	sb.WriteString("\n")
	sb.WriteString(timeSeriesTable(b.TimeSeries, opts.CurrencySymbol))
	sb.WriteString("\n")

	sb.WriteString(totalStyle.Render("Total Expenses: " + FormatAmount(b.TotalExpenses, opts.CurrencySymbol)))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Payments (Credits)"))
	sb.WriteString("\n")
	sb.WriteString(transactionsTable(columns, b.Payments, opts.CurrencySymbol))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// Rules writes the rule table in evaluation order, followed by the
// fallback label.
func Rules(w io.Writer, c *categorize.Categorizer) error {
	rows := make([][]string, 0, len(c.Rules())+1)
	for i, r := range c.Rules() {
		rows = append(rows, []string{fmt.Sprint(i + 1), strings.Join(r.Keywords, ", "), r.Category})
	}
	rows = append(rows, []string{"-", "(no match)", c.Fallback()})

	_, err := io.WriteString(w, newTable("#", "Keywords", "Category").Rows(rows...).String()+"\n")
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
