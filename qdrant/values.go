package qdrant

import (
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
)

// valueToCell converts a payload value into the plain Go value a table cell holds:
// nil, float64, int64, string, bool, map[string]any or []any.
func valueToCell(value *pb.Value) any {
	switch kind := value.GetKind().(type) {
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_StructValue:
		fields := make(map[string]any, len(kind.StructValue.GetFields()))
		for key, field := range kind.StructValue.GetFields() {
			fields[key] = valueToCell(field)
		}
		return fields
	case *pb.Value_ListValue:
		items := make([]any, len(kind.ListValue.GetValues()))
		for index, item := range kind.ListValue.GetValues() {
			items[index] = valueToCell(item)
		}
		return items
	default:
		return nil
	}
}

// pointIDToCell returns a UUID point ID as a string and a numeric one as uint64.
func pointIDToCell(pointID *pb.PointId) any {
	switch options := pointID.GetPointIdOptions().(type) {
	case *pb.PointId_Uuid:
		return options.Uuid
	case *pb.PointId_Num:
		return options.Num
	default:
		return nil
	}
}

// pointIDFromCell reverses pointIDToCell. It also accepts the shapes an ID takes
// after a round trip through a table file: numeric strings, json.Number and
// whole float64 values.
func pointIDFromCell(cell any) (*pb.PointId, error) {
	switch value := cell.(type) {
	case uint64:
		return pb.NewIDNum(value), nil
	case int:
		if value >= 0 {
			return pb.NewIDNum(uint64(value)), nil
		}
	case int64:
		if value >= 0 {
			return pb.NewIDNum(uint64(value)), nil
		}
	case float64:
		if value >= 0 && value == math.Trunc(value) && value < math.MaxUint64 {
			return pb.NewIDNum(uint64(value)), nil
		}
	case json.Number:
		return pointIDFromCell(value.String())
	case string:
		if parsed, err := uuid.Parse(value); err == nil {
			return pb.NewIDUUID(parsed.String()), nil
		}
		if number, err := strconv.ParseUint(value, 10, 64); err == nil {
			return pb.NewIDNum(number), nil
		}
	}
	return nil, fmt.Errorf("%v (%T) is not a point ID", cell, cell)
}
