package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCSV(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2024-01-05,TESCO STORES,12.50\n" +
		"2024-01-06,\"DELIVEROO, LONDON\",18.00\n" +
		"2024-01-07,SALARY PAYMENT RECEIVED - THANK YOU,-2000.00\n"

	l, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(l.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(l.Records))
	}

	got := l.Records[1]
	if got.Date != "2024-01-06" || got.Description != "DELIVEROO, LONDON" || got.Amount.StringFixed(2) != "18.00" {
		t.Errorf("record 1 = %+v", got)
	}
	if got := l.Records[2].Amount.StringFixed(2); got != "-2000.00" {
		t.Errorf("record 2 amount = %s, want -2000.00", got)
	}
	if got.Category != "" {
		t.Errorf("category should be empty before categorization, got %q", got.Category)
	}
}

func TestParseCSV_TrimsHeaders(t *testing.T) {
	input := "\ufeff Date , Description,Amount  ,Balance\n2024-01-01,Tesco, 3.10 ,96.90\n"

	l, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Date", "Description", "Amount", "Balance"}, l.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if got := l.Records[0].Amount.StringFixed(2); got != "3.10" {
		t.Errorf("amount = %s, want 3.10", got)
	}
	if got := l.Records[0].Extra["Balance"]; got != "96.90" {
		t.Errorf("Extra[Balance] = %q, want 96.90", got)
	}
}

func TestParseCSV_ColumnOrderIndependent(t *testing.T) {
	input := "Amount,Date,Description\n-4.00,2024-03-01,Refund\n"

	l, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	r := l.Records[0]
	if r.Date != "2024-03-01" || r.Description != "Refund" || r.Amount.StringFixed(2) != "-4.00" {
		t.Errorf("record = %+v", r)
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	l, err := ParseCSV(strings.NewReader("Date,Description,Amount\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if l.Records == nil || len(l.Records) != 0 {
		t.Errorf("Records = %#v, want empty non-nil slice", l.Records)
	}
}

func TestParseCSV_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{name: "missing amount", input: "Date,Description\n2024-01-01,Tesco\n", missing: []string{"Amount"}},
		{name: "missing two", input: "Date,Memo,Value\n", missing: []string{"Description", "Amount"}},
		{name: "case sensitive", input: "date,description,amount\n", missing: []string{"Date", "Description", "Amount"}},
		{name: "empty input", input: "", missing: []string{"Date", "Description", "Amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("ParseCSV() error = %v, want SchemaError", err)
			}
			if diff := cmp.Diff(tt.missing, schemaErr.Missing); diff != "" {
				t.Errorf("Missing mismatch (-want +got):\n%s", diff)
			}
			if !IsDataError(err) {
				t.Error("IsDataError() = false, want true")
			}
		})
	}
}

func TestParseCSV_RecordErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantCol  string
	}{
		{name: "non numeric amount", input: "Date,Description,Amount\n2024-01-01,Tesco,1.00\n2024-01-02,Uber,abc\n", wantLine: 3, wantCol: "Amount"},
		{name: "empty amount", input: "Date,Description,Amount\n2024-01-01,Tesco,\n", wantLine: 2, wantCol: "Amount"},
		{name: "short row", input: "Date,Description,Amount\n2024-01-01,Tesco\n", wantLine: 2, wantCol: "Amount"},
		{name: "too many fields", input: "Date,Description,Amount\n2024-01-01,Tesco,1.00,extra\n", wantLine: 2},
		{name: "thousands separator", input: "Date,Description,Amount\n2024-01-01,Rent,\"1,200.00\"\n", wantLine: 2, wantCol: "Amount"},
		{name: "exponent", input: "Date,Description,Amount\n2024-01-01,Tesco,1e400000000\n", wantLine: 2, wantCol: "Amount"},
		{name: "sub penny", input: "Date,Description,Amount\n2024-01-01,Tesco,0.005\n", wantLine: 2, wantCol: "Amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			var recErr *RecordError
			if !errors.As(err, &recErr) {
				t.Fatalf("ParseCSV() error = %v, want RecordError", err)
			}
			if recErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", recErr.Line, tt.wantLine)
			}
			if recErr.Column != tt.wantCol {
				t.Errorf("Column = %q, want %q", recErr.Column, tt.wantCol)
			}
			if !IsDataError(err) {
				t.Error("IsDataError() = false, want true")
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "12.5", want: "12.50"},
		{in: " -2000 ", want: "-2000.00"},
		{in: "+3.10", want: "3.10"},
		{in: "12.500", want: "12.50"},
		{in: ".75", want: "0.75"},
		{in: "7.", want: "7.00"},
		{in: "", wantErr: errAmountEmpty},
		{in: "1e5", wantErr: errAmountSyntax},
		{in: "1E-2", wantErr: errAmountSyntax},
		{in: "NaN", wantErr: errAmountSyntax},
		{in: "Inf", wantErr: errAmountSyntax},
		{in: "0x10", wantErr: errAmountSyntax},
		{in: "--1", wantErr: errAmountSyntax},
		{in: strings.Repeat("9", maxAmountLen+1), wantErr: errAmountTooLong},
		{in: "0.005", wantErr: errAmountSubPenny},
		{in: "-19.999", wantErr: errAmountSubPenny},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAmount(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr == nil && got.StringFixed(2) != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestIsDataError_IOError(t *testing.T) {
	if IsDataError(errors.New("connection reset")) {
		t.Error("IsDataError() = true for plain error")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte("Date,Description,Amount\n2024-01-01,Lidl,9.99\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(l.Records) != 1 || l.Records[0].Description != "Lidl" {
		t.Errorf("Records = %+v", l.Records)
	}

	if _, err := (FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}).Load(context.Background()); err == nil {
		t.Error("Load() of missing file returned nil error")
	}
}

func TestReadAll_Limit(t *testing.T) {
	if _, err := ReadAll("upload.csv", strings.NewReader("0123456789"), 5); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ReadAll() over limit error = %v, want ErrTooLarge", err)
	}
	src, err := ReadAll("upload.csv", strings.NewReader("01234"), 5)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(src.Data) != "01234" || src.String() != "upload.csv" {
		t.Errorf("ReadAll() = %+v", src)
	}
}
