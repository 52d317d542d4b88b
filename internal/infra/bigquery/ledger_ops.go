package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/ledger"
)

// QueryLedger reads every row of the referenced table.
func QueryLedger(ctx context.Context, ref TableRef) (*ledger.Ledger, error) {
	client, err := bigquery.NewClient(ctx, ref.Project)
	if err != nil {
		return nil, fmt.Errorf("QueryLedger: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryLedgerWithClient(ctx, client, ref)
}

// QueryLedgerWithClient checks the table schema, then reads every row using
// the provided client. Rows are ordered so repeated reads agree.
func QueryLedgerWithClient(ctx context.Context, client *bigquery.Client, ref TableRef) (*ledger.Ledger, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("QueryLedger: %w", err)
	}

	md, err := client.DatasetInProject(ref.Project, ref.Dataset).Table(ref.Table).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryLedger: table metadata: %w", err)
	}
	columns := make([]string, 0, len(md.Schema))
	for _, f := range md.Schema {
		columns = append(columns, f.Name)
	}
	if err := ledger.CheckColumns(columns); err != nil {
		return nil, err
	}

	q := client.Query(fmt.Sprintf(`
		SELECT
			CAST(Date AS STRING) AS Date,
			CAST(Description AS STRING) AS Description,
			CAST(Amount AS STRING) AS Amount
		FROM %s
		ORDER BY Date, Description, Amount
	`, ref.sqlName()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryLedger: query read: %w", err)
	}

	var rows []LedgerRow
	for {
		var r LedgerRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryLedger: iter next: %w", err)
		}
		rows = append(rows, r)
	}

	return rowsToLedger(rows)
}

// rowsToLedger converts query rows into a ledger. Line numbers in errors
// count a virtual header line, matching CSV input.
func rowsToLedger(rows []LedgerRow) (*ledger.Ledger, error) {
	l := &ledger.Ledger{
		Columns: append([]string(nil), ledger.RequiredColumns...),
		Records: make([]domain.Transaction, 0, len(rows)),
	}
	for i, r := range rows {
		rec, err := ledger.NewRecord(i+2, r.Date.StringVal, r.Description.StringVal, r.Amount.StringVal)
		if err != nil {
			return nil, err
		}
		l.Records = append(l.Records, rec)
	}
	return l, nil
}

// InsertLedger appends records to the referenced table.
func InsertLedger(ctx context.Context, ref TableRef, records []domain.Transaction) error {
	client, err := bigquery.NewClient(ctx, ref.Project)
	if err != nil {
		return fmt.Errorf("InsertLedger: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertLedgerWithClient(ctx, client, ref, records)
}

// InsertLedgerWithClient appends records to the referenced table using the
// provided client. The table must already exist with Date, Description and
// Amount columns.
func InsertLedgerWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, records []domain.Transaction) error {
	if len(records) == 0 {
		return nil
	}
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("InsertLedger: %w", err)
	}

	rows := make([]ledgerInsertRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ledgerInsertRow{tx: r})
	}

	inserter := client.DatasetInProject(ref.Project, ref.Dataset).Table(ref.Table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertLedger: inserting rows: %w", err)
	}
	return nil
}

// LedgerSchema is the layout EnsureLedgerTable creates. Date stays a string
// so that the raw ledger text round-trips.
var LedgerSchema = bigquery.Schema{
	{Name: "Date", Type: bigquery.StringFieldType, Required: true},
	{Name: "Description", Type: bigquery.StringFieldType, Required: true},
	{Name: "Amount", Type: bigquery.NumericFieldType, Required: true},
}

// EnsureLedgerTableWithClient creates the referenced table with LedgerSchema
// unless it already exists. An existing table is left untouched.
func EnsureLedgerTableWithClient(ctx context.Context, client *bigquery.Client, ref TableRef) (created bool, err error) {
	if err := ref.Validate(); err != nil {
		return false, fmt.Errorf("EnsureLedgerTable: %w", err)
	}

	table := client.DatasetInProject(ref.Project, ref.Dataset).Table(ref.Table)
	if _, err := table.Metadata(ctx); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, fmt.Errorf("EnsureLedgerTable: table metadata: %w", err)
	}

	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: LedgerSchema}); err != nil {
		return false, fmt.Errorf("EnsureLedgerTable: create %s: %w", ref, err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
