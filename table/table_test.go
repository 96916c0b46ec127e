package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleTable() *Table {
	t := New("sid", "solubility", DefaultEmbeddingColumn)
	t.Append(Row{"sid": "P1", "solubility": 0.5, DefaultEmbeddingColumn: []float64{1, 2, 3}})
	t.Append(Row{"sid": "P2", "solubility": 0.1, DefaultEmbeddingColumn: []any{4.0, 5.0, 6.0}})
	t.Append(Row{"sid": "P3", "solubility": 0.9, DefaultEmbeddingColumn: []float32{7, 8, 9}})
	return t
}

func TestEmbeddingMatrix_PreservesRowOrder(t *testing.T) {
	matrix, err := sampleTable().EmbeddingMatrix(DefaultEmbeddingColumn)
	require.NoError(t, err)

	expected := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.True(t, mat.Equal(expected, matrix))
}

func TestEmbeddingMatrix_SqueezesSingletonAxes(t *testing.T) {
	tbl := New(DefaultEmbeddingColumn)
	tbl.Append(Row{DefaultEmbeddingColumn: []any{[]any{1.0, 2.0, 3.0}}})
	tbl.Append(Row{DefaultEmbeddingColumn: []any{[]any{4.0}, []any{5.0}, []any{6.0}}})
	tbl.Append(Row{DefaultEmbeddingColumn: "[[7 8 9]]"})

	matrix, err := tbl.EmbeddingMatrix(DefaultEmbeddingColumn)
	require.NoError(t, err)

	rows, cols := matrix.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{4, 5, 6}, mat.Row(nil, 1, matrix))
	assert.Equal(t, []float64{7, 8, 9}, mat.Row(nil, 2, matrix))
}

func TestEmbeddingMatrix_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rows     []Row
		column   string
		expected error
		row      int
	}{
		{
			name:     "missing column",
			rows:     []Row{{"other": 1.0}},
			column:   DefaultEmbeddingColumn,
			expected: ErrMissingColumn,
			row:      -1,
		},
		{
			name:     "inconsistent dimension",
			rows:     []Row{{DefaultEmbeddingColumn: []float64{1, 2}}, {DefaultEmbeddingColumn: []float64{1, 2, 3}}},
			column:   DefaultEmbeddingColumn,
			expected: ErrInconsistentDimension,
			row:      1,
		},
		{
			name:     "non-numeric",
			rows:     []Row{{DefaultEmbeddingColumn: []any{1.0, "x"}}},
			column:   DefaultEmbeddingColumn,
			expected: ErrNotNumeric,
			row:      0,
		},
		{
			name:     "matrix cell",
			rows:     []Row{{DefaultEmbeddingColumn: []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}}},
			column:   DefaultEmbeddingColumn,
			expected: ErrNotVector,
			row:      0,
		},
		{
			name:     "ragged cell",
			rows:     []Row{{DefaultEmbeddingColumn: []any{[]any{1.0, 2.0}, []any{3.0}}}},
			column:   DefaultEmbeddingColumn,
			expected: ErrRaggedCell,
			row:      0,
		},
		{
			name:     "missing value",
			rows:     []Row{{DefaultEmbeddingColumn: []float64{1}}, {"other": 2.0}},
			column:   DefaultEmbeddingColumn,
			expected: ErrMissingValue,
			row:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New()
			for _, row := range tt.rows {
				tbl.Append(row)
			}

			_, err := tbl.EmbeddingMatrix(tt.column)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.row, schemaErr.Row)
		})
	}
}

func TestEmbeddingMatrix_EmptyTable(t *testing.T) {
	_, err := New(DefaultEmbeddingColumn).EmbeddingMatrix(DefaultEmbeddingColumn)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestAppendColumns(t *testing.T) {
	tbl := sampleTable()
	values := mat.NewDense(3, 2, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})

	require.NoError(t, tbl.AppendColumns(ComponentColumnNames("PCA_", 2), values))

	assert.Equal(t, []string{"sid", "solubility", DefaultEmbeddingColumn, "PCA_1", "PCA_2"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "P3", tbl.Value(2, "sid"))
	assert.Equal(t, 0.5, tbl.Value(2, "PCA_1"))
	assert.Equal(t, 0.2, tbl.Value(0, "PCA_2"))
}

func TestAppendColumns_RejectsCollisions(t *testing.T) {
	tbl := sampleTable()
	require.NoError(t, tbl.AppendColumns([]string{"PCA_1"}, mat.NewDense(3, 1, nil)))

	err := tbl.AppendColumns([]string{"PCA_1", "PCA_2"}, mat.NewDense(3, 2, nil))
	assert.ErrorIs(t, err, ErrColumnExists)
	assert.False(t, tbl.HasColumn("PCA_2"), "a failed append must not add any column")

	err = tbl.AppendColumns([]string{"X", "X"}, mat.NewDense(3, 2, nil))
	assert.ErrorIs(t, err, ErrColumnExists)
}

func TestCheckNewColumns(t *testing.T) {
	tbl := sampleTable()
	assert.NoError(t, tbl.CheckNewColumns([]string{"PCA_1", "PCA_2"}))

	err := tbl.CheckNewColumns([]string{"PCA_1", "sid"})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "sid", schemaErr.Column)
	assert.ErrorIs(t, err, ErrColumnExists)
	assert.False(t, tbl.HasColumn("PCA_1"), "checking must not add columns")
}

func TestAppendColumns_RejectsShapeMismatch(t *testing.T) {
	err := sampleTable().AppendColumns([]string{"PCA_1"}, mat.NewDense(2, 1, nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAppend_NewKeysBecomeSortedColumns(t *testing.T) {
	tbl := New("a")
	tbl.Append(Row{"a": 1, "z": 2, "m": 3})

	assert.Equal(t, []string{"a", "m", "z"}, tbl.Columns())
}

func TestLabels(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []string{"P1", "P2", "P3"}, tbl.Labels("sid"))
	assert.Equal(t, []string{"0", "1", "2"}, tbl.Labels("missing"))
}

func TestComponentColumnNames(t *testing.T) {
	assert.Equal(t, []string{"PCA_1", "PCA_2", "PCA_3"}, ComponentColumnNames("PCA_", 3))
	assert.Empty(t, ComponentColumnNames("PCA_", 0))
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		name     string
		cell     any
		expected []float64
		err      error
	}{
		{"json text", "[0.1, 0.2]", []float64{0.1, 0.2}, nil},
		{"numpy text", "[0.1 0.2\n 0.3]", []float64{0.1, 0.2, 0.3}, nil},
		{"nested numpy text", "[[1. 2.]]", []float64{1, 2}, nil},
		{"scalar", 3.5, []float64{3.5}, nil},
		{"column vector", []any{[]any{1.0}, []any{2.0}}, []float64{1, 2}, nil},
		{"garbage text", "protein", nil, ErrNotNumeric},
		{"empty text", "  ", nil, ErrNotNumeric},
		{"bool", true, nil, ErrNotNumeric},
		{"empty array", []any{}, nil, ErrNotVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVector(tt.cell)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.expected, got, 1e-12)
		})
	}
}
