package qdrant

import (
	"context"
	"fmt"

	"github.com/alDuncanson/latentpca/table"

	pb "github.com/qdrant/go-client/qdrant"
)

// WriteComponents sets the named component columns of every row as payload fields
// on the point identified by the row's id column. Existing payload fields with
// other names are left untouched.
func (client *Client) WriteComponents(ctx context.Context, reduced *table.Table, componentColumns []string) error {
	if !reduced.HasColumn(IDColumn) {
		return fmt.Errorf("write components: table has no %q column", IDColumn)
	}
	for _, column := range componentColumns {
		if !reduced.HasColumn(column) {
			return fmt.Errorf("write components: table has no %q column", column)
		}
	}

	for rowIndex := 0; rowIndex < reduced.Len(); rowIndex++ {
		pointID, err := pointIDFromCell(reduced.Value(rowIndex, IDColumn))
		if err != nil {
			return fmt.Errorf("write components: row %d: %w", rowIndex, err)
		}

		payload := make(map[string]*pb.Value, len(componentColumns))
		for _, column := range componentColumns {
			coordinate, ok := reduced.Value(rowIndex, column).(float64)
			if !ok {
				return fmt.Errorf("write components: row %d column %q is not a float64", rowIndex, column)
			}
			payload[column] = pb.NewValueDouble(coordinate)
		}

		_, err = client.pointsClient.SetPayload(ctx, &pb.SetPayloadPoints{
			CollectionName: client.collectionName,
			Wait:           pb.PtrOf(true),
			Payload:        payload,
			PointsSelector: pb.NewPointsSelector(pointID),
		})
		if err != nil {
			return fmt.Errorf("set payload for point %v: %w", pointIDToCell(pointID), err)
		}
	}

	return nil
}
