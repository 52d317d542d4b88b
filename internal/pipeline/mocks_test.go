package pipeline_test

import (
	"context"
	"errors"
	"io"

	"github.com/dvloznov/budget-report/internal/domain"
	bq "github.com/dvloznov/budget-report/internal/infra/bigquery"
	"github.com/dvloznov/budget-report/internal/ledger"
)

// MockStorageService is a mock implementation of gcs.StorageService.
type MockStorageService struct {
	FetchFunc  func(ctx context.Context, uri string) ([]byte, error)
	UploadFunc func(ctx context.Context, bucket, object string, r io.Reader) error
}

func (m *MockStorageService) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return nil, errors.New("not found")
}

func (m *MockStorageService) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, bucket, object, r)
	}
	return nil
}

// MockLedgerRepository is a mock implementation of bigquery.LedgerRepository.
type MockLedgerRepository struct {
	LoadLedgerFunc   func(ctx context.Context, ref bq.TableRef) (*ledger.Ledger, error)
	AppendLedgerFunc func(ctx context.Context, ref bq.TableRef, records []domain.Transaction) error
}

func (m *MockLedgerRepository) LoadLedger(ctx context.Context, ref bq.TableRef) (*ledger.Ledger, error) {
	if m.LoadLedgerFunc != nil {
		return m.LoadLedgerFunc(ctx, ref)
	}
	return &ledger.Ledger{Columns: ledger.RequiredColumns, Records: []domain.Transaction{}}, nil
}

func (m *MockLedgerRepository) AppendLedger(ctx context.Context, ref bq.TableRef, records []domain.Transaction) error {
	if m.AppendLedgerFunc != nil {
		return m.AppendLedgerFunc(ctx, ref, records)
	}
	return nil
}
