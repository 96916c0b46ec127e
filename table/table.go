// Package table holds sample tables: ordered rows of named values, one column of which
// carries an embedding vector per sample. It reads and writes tables as JSON (pandas
// "split" or "records" layout), JSON Lines and CSV, optionally zstd or lz4 compressed.
package table

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// DefaultEmbeddingColumn is the column holding each sample's embedding vector.
const DefaultEmbeddingColumn = "embedding"

// Row maps column names to cell values.
type Row map[string]any

// Table is an ordered collection of rows sharing an ordered set of columns.
// Rows never change position; columns are only ever appended.
type Table struct {
	columns  []string
	position map[string]int
	rows     []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{position: make(map[string]int)}
	for _, column := range columns {
		t.addColumn(column)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.position[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row. The returned map is shared with the table.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the cell at row i in column, or nil when the row has no such value.
func (t *Table) Value(i int, column string) any {
	return t.rows[i][column]
}

// Append adds a row at the end of the table. Keys the table has not seen before become
// new columns, added in sorted order so that map iteration order never leaks into output.
func (t *Table) Append(row Row) {
	var unseen []string
	for key := range row {
		if !t.HasColumn(key) {
			unseen = append(unseen, key)
		}
	}
	sort.Strings(unseen)
	for _, key := range unseen {
		t.addColumn(key)
	}
	t.rows = append(t.rows, row)
}

func (t *Table) addColumn(name string) bool {
	if t.HasColumn(name) {
		return false
	}
	t.position[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return true
}

// Labels renders column as one display string per row. Missing cells become "".
// When the column does not exist, rows are labelled by their index.
func (t *Table) Labels(column string) []string {
	labels := make([]string, t.Len())
	for i, row := range t.rows {
		if !t.HasColumn(column) {
			labels[i] = strconv.Itoa(i)
			continue
		}
		if value, ok := row[column]; ok && value != nil {
			labels[i] = fmt.Sprint(value)
		}
	}
	return labels
}

// EmbeddingMatrix stacks the vectors in column into a (rows x dimension) matrix, row i
// holding sample i. Cells may be flat vectors or nested arrays with singleton axes, which
// are squeezed away.
func (t *Table) EmbeddingMatrix(column string) (*mat.Dense, error) {
	if !t.HasColumn(column) {
		return nil, &SchemaError{Column: column, Row: -1, Err: ErrMissingColumn}
	}
	if t.Len() == 0 {
		return nil, &SchemaError{Column: column, Row: -1, Err: ErrEmptyTable}
	}

	var data []float64
	dimension := -1
	for i, row := range t.rows {
		cell, ok := row[column]
		if !ok || cell == nil {
			return nil, &SchemaError{Column: column, Row: i, Err: ErrMissingValue}
		}

		vector, err := ParseVector(cell)
		if err != nil {
			return nil, &SchemaError{Column: column, Row: i, Err: err}
		}

		if dimension < 0 {
			dimension = len(vector)
			data = make([]float64, 0, dimension*t.Len())
		} else if len(vector) != dimension {
			return nil, &SchemaError{
				Column: column,
				Row:    i,
				Err:    fmt.Errorf("%w: expected %d, got %d", ErrInconsistentDimension, dimension, len(vector)),
			}
		}

		data = append(data, vector...)
	}

	return mat.NewDense(t.Len(), dimension, data), nil
}

// AppendColumns adds one column per name, filled from the matching column of values.
// values must have exactly one row per table row. No existing column is ever overwritten.
func (t *Table) AppendColumns(names []string, values mat.Matrix) error {
	rows, cols := values.Dims()
	if rows != t.Len() || cols != len(names) {
		return &SchemaError{
			Column: "",
			Row:    -1,
			Err:    fmt.Errorf("%w: table is %d rows, %d names, values are %dx%d", ErrShapeMismatch, t.Len(), len(names), rows, cols),
		}
	}

	if err := t.CheckNewColumns(names); err != nil {
		return err
	}

	for j, name := range names {
		t.addColumn(name)
		for i, row := range t.rows {
			row[name] = values.At(i, j)
		}
	}
	return nil
}

// CheckNewColumns reports a *SchemaError wrapping ErrColumnExists when any of names is
// already a column or appears twice.
func (t *Table) CheckNewColumns(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if t.HasColumn(name) || seen[name] {
			return &SchemaError{Column: name, Row: -1, Err: ErrColumnExists}
		}
		seen[name] = true
	}
	return nil
}

// ComponentColumnNames returns prefix1 … prefixN, e.g. PCA_1 … PCA_N.
func ComponentColumnNames(prefix string, count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = prefix + strconv.Itoa(i+1)
	}
	return names
}
