package collection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means no record carries the requested chip.
	ErrNotFound = errors.New("chip not found")
	// ErrInvalidRange means the range start is after its end.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrEmptyRange means the chip exists but has no pickups in range.
	ErrEmptyRange = errors.New("no records in date range")
	// ErrUnsupportedSource means no Source handles the file type.
	ErrUnsupportedSource = errors.New("unsupported source type")
	// ErrEmptySource means the table has no header row.
	ErrEmptySource = errors.New("source has no header row")
)

// SchemaError reports required columns missing from the source table.
type SchemaError struct {
	Missing  []string
	Expected []string
}

func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.Expected))
	for i, name := range e.Expected {
		quoted[i] = "'" + name + "'"
	}
	return fmt.Sprintf("source is missing columns: %s | expected: %s",
		strings.Join(e.Missing, ", "), strings.Join(quoted, ", "))
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
