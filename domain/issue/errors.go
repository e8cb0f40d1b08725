package issue

import (
	"errors"
	"fmt"
)

// ErrEmptyInput marks an export with a header but no data rows. Callers
// report it and exit cleanly without writing any files.
var ErrEmptyInput = errors.New("input has no data rows")

// MissingColumnError reports a required column name absent from the export
// header. It is fatal: without the column the run cannot proceed.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("could not find column %q", e.Column)
}

// MalformedRecordError reports a data row whose date or issue type could not
// be normalized. The default policy is fail-fast: the first malformed row
// aborts the run.
type MalformedRecordError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: field %q value %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
