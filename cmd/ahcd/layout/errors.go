package layout

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaNotFound = errors.New("schema not found")
	ErrInvalidSchema  = errors.New("invalid schema")
)

// SchemaNotFoundError is returned when no layout is registered for a year.
type SchemaNotFoundError struct {
	Year int
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("%s: no layout registered for year %d", ErrSchemaNotFound, e.Year)
}

func (e *SchemaNotFoundError) Unwrap() error { return ErrSchemaNotFound }

func invalidf(year int, format string, args ...any) error {
	return fmt.Errorf("%w: year %d: %s", ErrInvalidSchema, year, fmt.Sprintf(format, args...))
}
