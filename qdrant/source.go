package qdrant

import (
	"context"
	"fmt"
	"sort"

	"github.com/alDuncanson/latentpca/table"

	pb "github.com/qdrant/go-client/qdrant"
)

// LoadTable scrolls through every point in the collection and returns one row per
// point. The id column comes first. Payload fields and embeddingColumn, which holds
// the point's vector, follow in sorted order.
func (client *Client) LoadTable(ctx context.Context, embeddingColumn string) (*table.Table, error) {
	loaded := table.New(IDColumn)
	var nextOffset *pb.PointId

	for {
		scrollResponse, err := client.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: client.collectionName,
			Offset:         nextOffset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    client.vectorSelector(),
			Limit:          pb.PtrOf(client.pageSize),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, retrievedPoint := range scrollResponse.GetResult() {
			row, err := client.rowFromPoint(retrievedPoint, embeddingColumn)
			if err != nil {
				return nil, err
			}
			loaded.Append(row)
		}

		nextOffset = scrollResponse.GetNextPageOffset()
		if nextOffset == nil || len(scrollResponse.GetResult()) == 0 {
			break
		}
	}

	return loaded, nil
}

func (client *Client) vectorSelector() *pb.WithVectorsSelector {
	if client.vectorName == "" {
		return &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}}
	}
	return pb.NewWithVectorsInclude(client.vectorName)
}

// rowFromPoint converts a retrieved point into a table row.
func (client *Client) rowFromPoint(retrievedPoint *pb.RetrievedPoint, embeddingColumn string) (table.Row, error) {
	pointID := pointIDToCell(retrievedPoint.GetId())

	row := table.Row{IDColumn: pointID}

	// Map iteration order is random, so payload keys are added in sorted order
	payloadKeys := make([]string, 0, len(retrievedPoint.GetPayload()))
	for key := range retrievedPoint.GetPayload() {
		payloadKeys = append(payloadKeys, key)
	}
	sort.Strings(payloadKeys)
	for _, key := range payloadKeys {
		if key == IDColumn || key == embeddingColumn {
			continue
		}
		row[key] = valueToCell(retrievedPoint.GetPayload()[key])
	}

	vector := client.pointVector(retrievedPoint.GetVectors())
	if vector == nil {
		return nil, fmt.Errorf("point %v has no vector named %q", pointID, client.vectorName)
	}
	row[embeddingColumn] = widenVector(vector)

	return row, nil
}

// pointVector returns the dense vector selected by the client's vector name.
func (client *Client) pointVector(vectors *pb.VectorsOutput) []float32 {
	var vectorOutput *pb.VectorOutput
	if client.vectorName == "" {
		vectorOutput = vectors.GetVector()
	} else {
		vectorOutput = vectors.GetVectors().GetVectors()[client.vectorName]
	}
	if vectorOutput == nil {
		return nil
	}
	if dense := vectorOutput.GetDense(); dense != nil {
		return dense.GetData()
	}
	return vectorOutput.GetData()
}

func widenVector(vector []float32) []float64 {
	widened := make([]float64, len(vector))
	for index, value := range vector {
		widened[index] = float64(value)
	}
	return widened
}
