// Package gcs reads and writes ledger files in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uriScheme = "gs://"

// ErrObjectTooLarge is returned by Fetch when an object exceeds the
// configured size limit.
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// Client talks to Cloud Storage using Application Default Credentials.
type Client struct {
	sc      *storage.Client
	maxSize int64
}

// NewClient creates a storage client. maxSize caps the bytes Fetch will read;
// zero disables the cap.
func NewClient(ctx context.Context, maxSize int64) (*Client, error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{sc: sc, maxSize: maxSize}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.sc.Close()
}

// Upload streams r into gs://bucket/object as text/csv.
func (c *Client) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := c.sc.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// Fetch downloads the object named by a gs://bucket/path URI.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := c.sc.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open %s: %w", uri, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if c.maxSize > 0 {
		r = io.LimitReader(rc, c.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read %s: %w", uri, err)
	}
	if c.maxSize > 0 && int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("Fetch: %s: %w", uri, ErrObjectTooLarge)
	}
	return data, nil
}

// IsURI reports whether s looks like a gs:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, uriScheme)
}

// ParseURI splits gs://bucket/path/to/object into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, uriScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// URI formats a gs:// URI.
func URI(bucket, object string) string {
	return uriScheme + bucket + "/" + object
}

var _ StorageService = (*Client)(nil)
