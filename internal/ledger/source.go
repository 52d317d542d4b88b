package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTooLarge is returned by ReadAll when the input exceeds its limit.
var ErrTooLarge = errors.New("ledger too large")

// Source yields a ledger from some backing store.
type Source interface {
	Load(ctx context.Context) (*Ledger, error)
	String() string
}

// FileSource reads a CSV ledger from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Ledger, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("FileSource.Load: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

func (s FileSource) String() string { return s.Path }

// BytesSource parses an in-memory CSV document, such as an uploaded file.
type BytesSource struct {
	Name string
	Data []byte
}

func (s BytesSource) Load(ctx context.Context) (*Ledger, error) {
	return ParseCSV(bytes.NewReader(s.Data))
}

func (s BytesSource) String() string { return s.Name }

// ReadAll buffers r into a BytesSource, failing when it exceeds limit bytes.
// A limit of zero or less disables the check.
func ReadAll(name string, r io.Reader, limit int64) (BytesSource, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return BytesSource{}, fmt.Errorf("ReadAll: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return BytesSource{}, fmt.Errorf("ReadAll: %s exceeds %d bytes: %w", name, limit, ErrTooLarge)
	}
	return BytesSource{Name: name, Data: data}, nil
}
