package table

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies how a table is laid out on disk.
type Format string

const (
	// FormatJSON is a pandas-style JSON document, "split" or "records" oriented.
	FormatJSON Format = "json"
	// FormatJSONLines holds one record object per line.
	FormatJSONLines Format = "jsonl"
	// FormatCSV is a header row followed by one row per sample.
	FormatCSV Format = "csv"
)

// Compression identifies an optional compression layer around a table file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// DetectFormat derives the table format and compression from a file name such as
// "eSol_Test.json", "eSol_Test.csv.zst" or "eSol_Test.jsonl.lz4".
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		compression = CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		compression = CompressionLZ4
	}
	if compression != CompressionNone {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compression, nil
	case ".jsonl", ".ndjson":
		return FormatJSONLines, compression, nil
	case ".csv":
		return FormatCSV, compression, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// decompress wraps r so that reads yield the uncompressed table bytes.
func decompress(r io.Reader, compression Compression) (io.ReadCloser, error) {
	switch compression {
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return decoder.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// compress wraps w so that written table bytes are compressed. Close flushes the
// compressor but leaves w open.
func compress(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return encoder, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
