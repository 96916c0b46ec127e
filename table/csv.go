package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// readCSV reads a header row followed by data rows. Every cell is kept as a string;
// vector cells are parsed on demand by ParseVector.
func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: CSV file is empty", ErrMalformed)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	t := New(header...)
	if len(t.columns) != len(header) {
		return nil, fmt.Errorf("%w: duplicate column names", ErrMalformed)
	}

	for _, record := range records[1:] {
		row := make(Row, len(header))
		for j, value := range record {
			row[header[j]] = value
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func writeCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.columns); err != nil {
		return err
	}

	record := make([]string, len(t.columns))
	for _, row := range t.rows {
		for j, column := range t.columns {
			cell, err := formatCSVCell(row[column])
			if err != nil {
				return fmt.Errorf("column %q: %w", column, err)
			}
			record[j] = cell
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCSVCell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case []any, []float64, []float32, map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	default:
		return fmt.Sprint(v), nil
	}
}
