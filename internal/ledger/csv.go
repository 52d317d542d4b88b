// Package ledger reads transaction tables into domain records.
package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/budget-report/internal/domain"
)

// Required column headers.
const (
	ColumnDate        = "Date"
	ColumnDescription = "Description"
	ColumnAmount      = "Amount"
)

// RequiredColumns lists the headers every ledger must carry.
var RequiredColumns = []string{ColumnDate, ColumnDescription, ColumnAmount}

// maxAmountLen bounds the length of an amount cell.
const maxAmountLen = 32

var amountRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

var (
	errAmountEmpty    = errors.New("amount is empty")
	errAmountTooLong  = fmt.Errorf("amount is longer than %d characters", maxAmountLen)
	errAmountSyntax   = errors.New("amount is not a plain decimal number")
	errAmountSubPenny = errors.New("amount has more than two decimal places")
)

// Ledger is a parsed transaction table.
type Ledger struct {
	Columns []string // trimmed headers, input order
	Records []domain.Transaction
}

// ParseCSV reads a comma-separated ledger with a header row. Header names
// are trimmed before the required columns are checked. Every row must have
// a numeric Amount; the first bad row aborts parsing.
func ParseCSV(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Missing: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}
	if err := CheckColumns(columns); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}

	l := &Ledger{Columns: columns, Records: []domain.Transaction{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RecordError{Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("ParseCSV: read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if len(row) > len(columns) {
			return nil, &RecordError{Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(columns), len(row))}
		}
		cell := func(name string) string {
			if i := idx[name]; i < len(row) {
				return row[i]
			}
			return ""
		}

		rec, err := NewRecord(line, cell(ColumnDate), cell(ColumnDescription), cell(ColumnAmount))
		if err != nil {
			return nil, err
		}
		for i, c := range columns {
			if c == ColumnDate || c == ColumnDescription || c == ColumnAmount || i >= len(row) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[c] = row[i]
		}
		l.Records = append(l.Records, rec)
	}
	return l, nil
}

// CheckColumns returns a SchemaError naming every required column absent
// from columns.
func CheckColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, req := range RequiredColumns {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// NewRecord builds a transaction from raw cell text. line is used for error
// reporting only.
func NewRecord(line int, date, description, amount string) (domain.Transaction, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return domain.Transaction{}, &RecordError{Line: line, Column: ColumnAmount, Value: amount, Err: err}
	}
	return domain.Transaction{
		Date:        date,
		Description: description,
		Amount:      amt,
	}, nil
}

// ParseAmount parses a signed decimal amount, ignoring surrounding spaces.
// Only plain notation is accepted: no exponent, no thousands separators.
// Trailing zeros are fine but the value must be a whole number of pennies.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return decimal.Decimal{}, errAmountEmpty
	case len(s) > maxAmountLen:
		return decimal.Decimal{}, errAmountTooLong
	case !amountRe.MatchString(s):
		return decimal.Decimal{}, errAmountSyntax
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, errAmountSubPenny
	}
	return d, nil
}
