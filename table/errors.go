package table

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for paths whose extension names no known table format.
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrMalformed is returned when a file parses but does not describe a table.
	ErrMalformed = errors.New("malformed table")
	// ErrEmptyTable is returned when a table has no rows to analyse.
	ErrEmptyTable = errors.New("table has no rows")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("column not found")
	// ErrMissingValue is returned when a row has no value in a required column.
	ErrMissingValue = errors.New("missing value")
	// ErrNotNumeric is returned when a vector cell holds something other than numbers.
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrNotVector is returned when a cell has more than one non-singleton axis.
	ErrNotVector = errors.New("value is not a vector")
	// ErrRaggedCell is returned when nested arrays inside one cell have different lengths.
	ErrRaggedCell = errors.New("nested arrays have inconsistent lengths")
	// ErrInconsistentDimension is returned when rows carry vectors of different lengths.
	ErrInconsistentDimension = errors.New("inconsistent vector dimension")
	// ErrColumnExists is returned when appending a column whose name is already taken.
	ErrColumnExists = errors.New("column already exists")
	// ErrShapeMismatch is returned when appended values do not match the table's shape.
	ErrShapeMismatch = errors.New("values do not match table shape")
)

// LoadError reports that a table could not be read from Path.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load table %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError reports a table whose columns or cells do not have the expected shape.
//
// Row is the zero-based row index, or -1 when the problem is not tied to one row.
type SchemaError struct {
	Column string
	Row    int
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("column %q, row %d: %v", e.Column, e.Row, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// WriteError reports that a table could not be persisted to Path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write table %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
