package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ParseVector converts a cell into a flat vector.
//
// Accepted cells are numeric slices, nested arrays whose axes are all of length one except
// at most one (e.g. [[0.1, 0.2]] or [[0.1], [0.2]]), single numbers, and strings holding
// either a JSON array or a numpy-style bracketed list such as "[0.1 0.2 0.3]".
func ParseVector(cell any) ([]float64, error) {
	if text, ok := cell.(string); ok {
		return parseVectorText(text)
	}

	values, shape, err := flatten(cell)
	if err != nil {
		return nil, err
	}
	if err := checkVectorShape(shape); err != nil {
		return nil, err
	}
	return values, nil
}

func flatten(cell any) ([]float64, []int, error) {
	switch v := cell.(type) {
	case []float64:
		return slices.Clone(v), []int{len(v)}, nil
	case []float32:
		values := make([]float64, len(v))
		for i, f := range v {
			values[i] = float64(f)
		}
		return values, []int{len(v)}, nil
	case []any:
		var values []float64
		var childShape []int
		for i, child := range v {
			childValues, shape, err := flatten(child)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				childShape = shape
			} else if !slices.Equal(shape, childShape) {
				return nil, nil, ErrRaggedCell
			}
			values = append(values, childValues...)
		}
		return values, append([]int{len(v)}, childShape...), nil
	default:
		f, err := toFloat(cell)
		if err != nil {
			return nil, nil, err
		}
		return []float64{f}, nil, nil
	}
}

// checkVectorShape accepts shapes with at most one axis longer than one, mirroring a
// squeeze of singleton axes.
func checkVectorShape(shape []int) error {
	nonSingleton := 0
	for _, size := range shape {
		if size == 0 {
			return fmt.Errorf("%w: empty array", ErrNotVector)
		}
		if size != 1 {
			nonSingleton++
		}
	}
	if nonSingleton > 1 {
		return fmt.Errorf("%w: shape %v", ErrNotVector, shape)
	}
	return nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, value)
	}
}

func parseVectorText(text string) ([]float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty string", ErrNotNumeric)
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		if _, isText := decoded.(string); !isText {
			return ParseVector(decoded)
		}
	}

	// numpy prints arrays with spaces and wraps long rows, e.g. "[[0.1 0.2\n  0.3]]"
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '[' || r == ']' || r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrNotVector)
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, field)
		}
		values[i] = f
	}
	return values, nil
}
