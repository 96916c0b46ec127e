package table

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// splitDocument is the pandas DataFrame.to_json(orient="split") layout.
type splitDocument struct {
	Columns []string `json:"columns"`
	Index   []any    `json:"index,omitempty"`
	Data    [][]any  `json:"data"`
}

func readJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	switch trimmed[0] {
	case '{':
		return readSplitJSON(trimmed)
	case '[':
		return readRecordsJSON(trimmed)
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrMalformed)
	}
}

func readSplitJSON(data []byte) (*Table, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var document splitDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(document.Columns) == 0 {
		return nil, fmt.Errorf("%w: split document has no columns", ErrMalformed)
	}

	t := New(document.Columns...)
	if len(t.columns) != len(document.Columns) {
		return nil, fmt.Errorf("%w: duplicate column names", ErrMalformed)
	}

	for i, values := range document.Data {
		if len(values) != len(document.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrMalformed, i, len(values), len(document.Columns))
		}
		row := make(Row, len(values))
		for j, value := range values {
			row[document.Columns[j]] = value
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func readRecordsJSON(data []byte) (*Table, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := expectDelim(decoder, '['); err != nil {
		return nil, err
	}

	t := New()
	for decoder.More() {
		if err := readRecord(decoder, t); err != nil {
			return nil, fmt.Errorf("record %d: %w", t.Len(), err)
		}
	}

	if err := expectDelim(decoder, ']'); err != nil {
		return nil, err
	}
	return t, nil
}

func readJSONLines(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	// Embedding rows easily exceed bufio's 64KiB default
	scanner.Buffer(make([]byte, 0, 1024*1024), 256*1024*1024)

	t := New()
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		decoder := json.NewDecoder(bytes.NewReader(line))
		decoder.UseNumber()
		if err := readRecord(decoder, t); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// readRecord decodes one JSON object into a new row, registering unseen keys as columns
// in the order they appear.
func readRecord(decoder *json.Decoder, t *Table) error {
	if err := expectDelim(decoder, '{'); err != nil {
		return err
	}

	row := make(Row)
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("%w: expected an object key, got %v", ErrMalformed, token)
		}

		var value any
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("%w: value of %q: %v", ErrMalformed, key, err)
		}

		t.addColumn(key)
		row[key] = value
	}

	if err := expectDelim(decoder, '}'); err != nil {
		return err
	}
	t.rows = append(t.rows, row)
	return nil
}

func expectDelim(decoder *json.Decoder, expected json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != expected {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformed, expected, token)
	}
	return nil
}

func writeJSON(w io.Writer, t *Table) error {
	document := splitDocument{
		Columns: t.Columns(),
		Index:   make([]any, t.Len()),
		Data:    make([][]any, t.Len()),
	}
	for i, row := range t.rows {
		document.Index[i] = i
		values := make([]any, len(t.columns))
		for j, column := range t.columns {
			values[j] = row[column]
		}
		document.Data[i] = values
	}

	return json.NewEncoder(w).Encode(document)
}

// writeJSONLines writes one object per row with keys in column order, which a map
// encoding would not preserve.
func writeJSONLines(w io.Writer, t *Table) error {
	buffered := bufio.NewWriter(w)
	for _, row := range t.rows {
		buffered.WriteByte('{')
		for j, column := range t.columns {
			if j > 0 {
				buffered.WriteByte(',')
			}
			key, err := json.Marshal(column)
			if err != nil {
				return err
			}
			value, err := json.Marshal(row[column])
			if err != nil {
				return fmt.Errorf("column %q: %w", column, err)
			}
			buffered.Write(key)
			buffered.WriteByte(':')
			buffered.Write(value)
		}
		buffered.WriteString("}\n")
	}
	return buffered.Flush()
}
