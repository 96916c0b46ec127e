package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Read decodes a table in the given format from r.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatJSONLines:
		return readJSONLines(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write encodes t to w in the given format.
func Write(w io.Writer, format Format, t *Table) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, t)
	case FormatJSONLines:
		return writeJSONLines(w, t)
	case FormatCSV:
		return writeCSV(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Load reads the table stored at path, choosing format and compression from its name.
// Every failure is reported as a *LoadError.
func Load(path string) (*Table, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	reader, err := decompress(file, compression)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer reader.Close()

	t, err := Read(reader, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// Save writes t to path, choosing format and compression from its name. Missing parent
// directories are created. The data is written to a temporary file in the same directory
// and renamed into place, so a failed write never leaves a truncated table behind. Every
// failure is reported as a *WriteError.
func Save(path string, t *Table) error {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	temporaryFile, err := os.CreateTemp(directory, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	temporaryPath := temporaryFile.Name()

	writeErr := func() error {
		if err := temporaryFile.Chmod(0o644); err != nil {
			return err
		}
		writer, err := compress(temporaryFile, compression)
		if err != nil {
			return err
		}
		if err := Write(writer, format, t); err != nil {
			writer.Close()
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		return temporaryFile.Close()
	}()
	if writeErr != nil {
		temporaryFile.Close()
		os.Remove(temporaryPath)
		return &WriteError{Path: path, Err: writeErr}
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
