package bigquery

import (
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/budget-report/internal/domain"
)

const (
	uriScheme    = "bq://"
	maxNameBytes = 1024
)

var (
	projectRe = regexp.MustCompile(`^[a-z][a-z0-9\-]{4,28}[a-z0-9]$`)
	nameRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// LedgerRow is one ledger row as read back from BigQuery. All columns are
// cast to STRING in the query so that DATE, NUMERIC and FLOAT64 tables
// read the same way.
type LedgerRow struct {
	Date        bigquery.NullString `bigquery:"Date"`
	Description bigquery.NullString `bigquery:"Description"`
	Amount      bigquery.NullString `bigquery:"Amount"`
}

// ledgerInsertRow adapts a domain transaction for streaming inserts.
type ledgerInsertRow struct {
	tx domain.Transaction
}

func (r ledgerInsertRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"Date":        r.tx.Date,
		"Description": r.tx.Description,
		"Amount":      r.tx.Amount.String(),
	}, bigquery.NoDedupeID, nil
}

// TableRef names a ledger table.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

// IsURI reports whether s looks like a bq:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, uriScheme)
}

// ParseTableURI parses bq://project.dataset.table.
func ParseTableURI(uri string) (TableRef, error) {
	if !IsURI(uri) {
		return TableRef{}, fmt.Errorf("invalid BigQuery URI: %s", uri)
	}
	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), ".")
	if len(parts) != 3 {
		return TableRef{}, fmt.Errorf("invalid BigQuery URI (want bq://project.dataset.table): %s", uri)
	}
	ref := TableRef{Project: parts[0], Dataset: parts[1], Table: parts[2]}
	if err := ref.Validate(); err != nil {
		return TableRef{}, err
	}
	return ref, nil
}

// Validate checks that every part of the reference is a legal identifier.
// The reference is interpolated into SQL, so this is required before use.
func (r TableRef) Validate() error {
	if !projectRe.MatchString(r.Project) {
		return fmt.Errorf("invalid BigQuery project id %q", r.Project)
	}
	if len(r.Dataset) > maxNameBytes || !nameRe.MatchString(r.Dataset) {
		return fmt.Errorf("invalid BigQuery dataset %q", r.Dataset)
	}
	if len(r.Table) > maxNameBytes || !nameRe.MatchString(r.Table) {
		return fmt.Errorf("invalid BigQuery table %q", r.Table)
	}
	return nil
}

// String formats the reference as a bq:// URI.
func (r TableRef) String() string {
	return uriScheme + r.Project + "." + r.Dataset + "." + r.Table
}

func (r TableRef) sqlName() string {
	return "`" + r.Project + "." + r.Dataset + "." + r.Table + "`"
}
