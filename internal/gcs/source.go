package gcs

import (
	"context"
	"fmt"

	"github.com/dvloznov/budget-report/internal/ledger"
)

// LedgerSource loads a CSV ledger stored in Cloud Storage.
type LedgerSource struct {
	Storage StorageService
	URI     string
}

func (s LedgerSource) Load(ctx context.Context) (*ledger.Ledger, error) {
	data, err := s.Storage.Fetch(ctx, s.URI)
	if err != nil {
		return nil, fmt.Errorf("LedgerSource.Load: %w", err)
	}
	return ledger.BytesSource{Name: s.URI, Data: data}.Load(ctx)
}

func (s LedgerSource) String() string { return s.URI }
