package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/report"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in     string
		symbol string
		want   string
	}{
		{in: "0", symbol: "£", want: "£0.00"},
		{in: "9.99", symbol: "£", want: "£9.99"},
		{in: "1200.5", symbol: "£", want: "£1,200.50"},
		{in: "-2000", symbol: "£", want: "-£2,000.00"},
		{in: "1234567.891", symbol: "$", want: "$1,234,567.89"},
		{in: "-0.004", symbol: "", want: "0.00"},
		{in: "0.10", symbol: "", want: "0.10"},
		{in: "99999999999999999999.99", symbol: "£", want: "£99,999,999,999,999,999,999.99"},
		{in: "-9223372036854775808.50", symbol: "£", want: "-£9,223,372,036,854,775,808.50"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatAmount(decimal.RequireFromString(tt.in), tt.symbol); got != tt.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	records := categorize.New().Annotate([]domain.Transaction{
		{Date: "2024-01-05", Description: "TESCO STORES", Amount: decimal.RequireFromString("1250.00")},
		{Date: "2024-01-06", Description: "DELIVEROO LONDON", Amount: decimal.RequireFromString("18.00")},
		{Date: "2024-01-07", Description: "PAYMENT RECEIVED - THANK YOU", Amount: decimal.RequireFromString("-2000.00")},
	})

	var buf bytes.Buffer
	if err := Report(&buf, report.Assemble(records), Options{Heading: "Budgeting App", CurrencySymbol: "£"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Budgeting App",
		"Expenses (Debits)",
		"Payments (Credits)",
		"TESCO STORES",
		"£1,250.00",
		"-£2,000.00",
		categorize.TakeAway,
		"Total Expenses: £1,268.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Expenses (Debits)") > strings.Index(out, "Payments (Credits)") {
		t.Error("expenses section should come before payments")
	}
}

func TestReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Report(&buf, report.Assemble(nil), Options{CurrencySymbol: "£"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Total Expenses: £0.00") {
		t.Errorf("output missing zero total:\n%s", buf.String())
	}
}

func TestRules(t *testing.T) {
	var buf bytes.Buffer
	if err := Rules(&buf, categorize.New()); err != nil {
		t.Fatalf("Rules() error = %v", err)
	}
	out := buf.String()

	groceries := strings.Index(out, categorize.Groceries)
	travel := strings.Index(out, categorize.Travel)
	fallback := strings.Index(out, categorize.Miscellaneous)
	if groceries < 0 || travel < 0 || fallback < 0 {
		t.Fatalf("output missing labels:\n%s", out)
	}
	if !(groceries < travel && travel < fallback) {
		t.Errorf("rules not in evaluation order:\n%s", out)
	}
	if !strings.Contains(out, "payment received - thank you") {
		t.Errorf("output missing keyword:\n%s", out)
	}
}
