package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/ledger"
)

func TestParseTableURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    TableRef
		wantErr bool
	}{
		{name: "valid", uri: "bq://my-project-1.finance.ledger_2024", want: TableRef{Project: "my-project-1", Dataset: "finance", Table: "ledger_2024"}},
		{name: "wrong scheme", uri: "gs://a/b", wantErr: true},
		{name: "two parts", uri: "bq://my-project.finance", wantErr: true},
		{name: "four parts", uri: "bq://my-project.finance.t.x", wantErr: true},
		{name: "upper case project", uri: "bq://MyProject.finance.t", wantErr: true},
		{name: "injected table", uri: "bq://my-project.finance.t`;DROP", wantErr: true},
		{name: "empty dataset", uri: "bq://my-project..t", wantErr: true},
		{name: "longest table", uri: "bq://my-project.finance." + strings.Repeat("t", 1024), want: TableRef{Project: "my-project", Dataset: "finance", Table: strings.Repeat("t", 1024)}},
		{name: "table too long", uri: "bq://my-project.finance." + strings.Repeat("t", 1025), wantErr: true},
		{name: "dataset too long", uri: "bq://my-project." + strings.Repeat("d", 1025) + ".t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTableURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTableURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTableURI(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.uri {
				t.Errorf("String() = %q, want %q", got.String(), tt.uri)
			}
		})
	}
}

func ns(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: true}
}

func TestRowsToLedger(t *testing.T) {
	rows := []LedgerRow{
		{Date: ns("2024-01-05"), Description: ns("TESCO STORES"), Amount: ns("12.5")},
		{Date: ns("2024-01-07"), Description: bigquery.NullString{}, Amount: ns("-2000")},
	}

	l, err := rowsToLedger(rows)
	if err != nil {
		t.Fatalf("rowsToLedger() error = %v", err)
	}
	if len(l.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(l.Records))
	}
	if got := l.Records[0].Amount.StringFixed(2); got != "12.50" {
		t.Errorf("amount = %s, want 12.50", got)
	}
	if got := l.Records[1].Description; got != "" {
		t.Errorf("null description = %q, want empty", got)
	}
}

func TestRowsToLedger_NullAmount(t *testing.T) {
	rows := []LedgerRow{
		{Date: ns("2024-01-05"), Description: ns("a"), Amount: ns("1")},
		{Date: ns("2024-01-06"), Description: ns("b"), Amount: bigquery.NullString{}},
	}

	_, err := rowsToLedger(rows)
	var recErr *ledger.RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("rowsToLedger() error = %v, want RecordError", err)
	}
	if recErr.Line != 3 {
		t.Errorf("Line = %d, want 3", recErr.Line)
	}
}

func TestRowsToLedger_Empty(t *testing.T) {
	l, err := rowsToLedger(nil)
	if err != nil {
		t.Fatalf("rowsToLedger() error = %v", err)
	}
	if l.Records == nil || len(l.Records) != 0 {
		t.Errorf("Records = %#v, want empty non-nil", l.Records)
	}
}

func TestLedgerInsertRow_Save(t *testing.T) {
	rec, err := ledger.NewRecord(2, "2024-01-05", "Uber", "7.80")
	if err != nil {
		t.Fatal(err)
	}
	row, insertID, err := ledgerInsertRow{tx: rec}.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if insertID != bigquery.NoDedupeID {
		t.Errorf("insertID = %q", insertID)
	}
	if row["Amount"] != "7.8" || row["Date"] != "2024-01-05" || row["Description"] != "Uber" {
		t.Errorf("Save() = %v", row)
	}
}

type mockLedgerRepository struct {
	ledger   *ledger.Ledger
	err      error
	appended []domain.Transaction
}

func (m *mockLedgerRepository) LoadLedger(ctx context.Context, ref TableRef) (*ledger.Ledger, error) {
	return m.ledger, m.err
}

func (m *mockLedgerRepository) AppendLedger(ctx context.Context, ref TableRef, records []domain.Transaction) error {
	m.appended = append(m.appended, records...)
	return m.err
}

func TestLedgerSource(t *testing.T) {
	ref := TableRef{Project: "my-project", Dataset: "finance", Table: "ledger"}
	want := &ledger.Ledger{Columns: ledger.RequiredColumns}

	src := LedgerSource{Repo: &mockLedgerRepository{ledger: want}, Ref: ref}
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() returned a different ledger")
	}
	if src.String() != "bq://my-project.finance.ledger" {
		t.Errorf("String() = %q", src.String())
	}

	schemaErr := &ledger.SchemaError{Missing: []string{"Amount"}}
	_, err = LedgerSource{Repo: &mockLedgerRepository{err: schemaErr}, Ref: ref}.Load(context.Background())
	if !ledger.IsDataError(err) {
		t.Errorf("Load() error = %v, want data error", err)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "404", err: fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusNotFound}), want: true},
		{name: "403", err: &googleapi.Error{Code: http.StatusForbidden}},
		{name: "plain", err: errors.New("not found")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerSchema(t *testing.T) {
	var names []string
	for _, f := range LedgerSchema {
		names = append(names, f.Name)
	}
	if err := ledger.CheckColumns(names); err != nil {
		t.Errorf("LedgerSchema does not satisfy ledger columns: %v", err)
	}
}
