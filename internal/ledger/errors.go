package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from the input header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ledger is missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// RecordError reports a row that could not be read. Line is 1-based and
// counts the header.
type RecordError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// IsDataError reports whether err stems from the ledger content itself
// rather than from reading it. Data errors do not go away on retry.
func IsDataError(err error) bool {
	var schemaErr *SchemaError
	var recordErr *RecordError
	return errors.As(err, &schemaErr) || errors.As(err, &recordErr)
}
