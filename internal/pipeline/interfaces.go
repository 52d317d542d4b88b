package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/budget-report/internal/gcs"
	bq "github.com/dvloznov/budget-report/internal/infra/bigquery"
	"github.com/dvloznov/budget-report/internal/ledger"
)

// ErrSourceUnavailable is returned by Opener for URI schemes it has no
// backend for.
var ErrSourceUnavailable = errors.New("ledger source not available")

// Opener turns ledger URIs into sources. gs:// needs Storage, bq:// needs
// BigQuery, and plain paths need AllowFiles.
type Opener struct {
	Storage    gcs.StorageService
	BigQuery   bq.LedgerRepository
	AllowFiles bool
}

// Open resolves uri to a ledger source without reading it.
func (o Opener) Open(ctx context.Context, uri string) (ledger.Source, error) {
	switch {
	case gcs.IsURI(uri):
		if _, _, err := gcs.ParseURI(uri); err != nil {
			return nil, err
		}
		if o.Storage == nil {
			return nil, fmt.Errorf("Open: %s: %w", uri, ErrSourceUnavailable)
		}
		return gcs.LedgerSource{Storage: o.Storage, URI: uri}, nil

	case bq.IsURI(uri):
		ref, err := bq.ParseTableURI(uri)
		if err != nil {
			return nil, err
		}
		if o.BigQuery == nil {
			return nil, fmt.Errorf("Open: %s: %w", uri, ErrSourceUnavailable)
		}
		return bq.LedgerSource{Repo: o.BigQuery, Ref: ref}, nil

	case uri == "":
		return nil, fmt.Errorf("Open: empty source")

	default:
		if !o.AllowFiles {
			return nil, fmt.Errorf("Open: %s: %w", uri, ErrSourceUnavailable)
		}
		return ledger.FileSource{Path: uri}, nil
	}
}
