package gcs

import (
	"context"
	"io"
)

// StorageService is the subset of Cloud Storage the ledger sources and the
// CLI need. It exists so tests can substitute an in-memory fake.
type StorageService interface {
	// Upload writes r to gs://bucket/object.
	Upload(ctx context.Context, bucket, object string, r io.Reader) error

	// Fetch reads the object behind a gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
