package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/ledger"
)

// LedgerRepository reads and writes ledger tables.
type LedgerRepository interface {
	LoadLedger(ctx context.Context, ref TableRef) (*ledger.Ledger, error)
	AppendLedger(ctx context.Context, ref TableRef, records []domain.Transaction) error
}

// BigQueryLedgerRepository is the concrete implementation of LedgerRepository
// that interacts with BigQuery through a shared client.
type BigQueryLedgerRepository struct {
	client *bigquery.Client
}

// NewBigQueryLedgerRepository creates a repository billed to projectID.
func NewBigQueryLedgerRepository(ctx context.Context, projectID string) (*BigQueryLedgerRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerRepository: creating client: %w", err)
	}
	return &BigQueryLedgerRepository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryLedgerRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// LoadLedger delegates to QueryLedgerWithClient with the shared client.
func (r *BigQueryLedgerRepository) LoadLedger(ctx context.Context, ref TableRef) (*ledger.Ledger, error) {
	return QueryLedgerWithClient(ctx, r.client, ref)
}

// AppendLedger delegates to InsertLedgerWithClient with the shared client.
func (r *BigQueryLedgerRepository) AppendLedger(ctx context.Context, ref TableRef, records []domain.Transaction) error {
	return InsertLedgerWithClient(ctx, r.client, ref, records)
}

// EnsureLedgerTable creates the table with LedgerSchema if it is missing.
func (r *BigQueryLedgerRepository) EnsureLedgerTable(ctx context.Context, ref TableRef) (bool, error) {
	return EnsureLedgerTableWithClient(ctx, r.client, ref)
}

// LedgerSource loads a ledger from a BigQuery table.
type LedgerSource struct {
	Repo LedgerRepository
	Ref  TableRef
}

func (s LedgerSource) Load(ctx context.Context) (*ledger.Ledger, error) {
	l, err := s.Repo.LoadLedger(ctx, s.Ref)
	if err != nil {
		return nil, fmt.Errorf("LedgerSource.Load: %w", err)
	}
	return l, nil
}

func (s LedgerSource) String() string { return s.Ref.String() }

var _ LedgerRepository = (*BigQueryLedgerRepository)(nil)
