package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/alDuncanson/latentpca/table"

	json "github.com/goccy/go-json"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc"
)

// fakePointsClient serves scroll pages from memory and records payload updates.
// Methods the tests never call are left to the embedded nil interface.
type fakePointsClient struct {
	pb.PointsClient
	pages         [][]*pb.RetrievedPoint
	scrollCalls   []*pb.ScrollPoints
	setPayloads   []*pb.SetPayloadPoints
	setPayloadErr error
}

func (fake *fakePointsClient) Scroll(_ context.Context, request *pb.ScrollPoints, _ ...grpc.CallOption) (*pb.ScrollResponse, error) {
	pageIndex := 0
	if request.Offset != nil {
		pageIndex = int(request.Offset.GetNum())
	}
	fake.scrollCalls = append(fake.scrollCalls, request)

	response := &pb.ScrollResponse{Result: fake.pages[pageIndex]}
	if pageIndex+1 < len(fake.pages) {
		response.NextPageOffset = pb.NewIDNum(uint64(pageIndex + 1))
	}
	return response, nil
}

func (fake *fakePointsClient) SetPayload(_ context.Context, request *pb.SetPayloadPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	if fake.setPayloadErr != nil {
		return nil, fake.setPayloadErr
	}
	fake.setPayloads = append(fake.setPayloads, request)
	return &pb.PointsOperationResponse{}, nil
}

func densePoint(pointID *pb.PointId, payload map[string]*pb.Value, vector ...float32) *pb.RetrievedPoint {
	return &pb.RetrievedPoint{
		Id:      pointID,
		Payload: payload,
		Vectors: &pb.VectorsOutput{
			VectorsOptions: &pb.VectorsOutput_Vector{
				Vector: &pb.VectorOutput{Vector: &pb.VectorOutput_Dense{Dense: &pb.DenseVector{Data: vector}}},
			},
		},
	}
}

func TestLoadTable_ScrollsEveryPage(t *testing.T) {
	fake := &fakePointsClient{pages: [][]*pb.RetrievedPoint{
		{
			densePoint(pb.NewIDNum(7), map[string]*pb.Value{"gene": pb.NewValueString("aaeR"), "solubility": pb.NewValueDouble(0.25)}, 1, 2, 3),
			densePoint(pb.NewIDUUID("5c56c793-69f3-4fbf-87e6-c4bf54c28c26"), map[string]*pb.Value{"gene": pb.NewValueString("aaeX")}, 4, 5, 6),
		},
		{
			densePoint(pb.NewIDNum(9), nil, 7, 8, 9),
		},
	}}
	client := newClient(fake, nil, "proteins", Options{PageSize: 2})

	loaded, err := client.LoadTable(context.Background(), table.DefaultEmbeddingColumn)
	require.NoError(t, err)

	require.Len(t, fake.scrollCalls, 2)
	assert.Equal(t, uint32(2), fake.scrollCalls[0].GetLimit())
	assert.Nil(t, fake.scrollCalls[0].Offset)

	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, []string{IDColumn, table.DefaultEmbeddingColumn, "gene", "solubility"}, loaded.Columns())
	assert.Equal(t, uint64(7), loaded.Value(0, IDColumn))
	assert.Equal(t, "5c56c793-69f3-4fbf-87e6-c4bf54c28c26", loaded.Value(1, IDColumn))
	assert.Nil(t, loaded.Value(2, "gene"))

	matrix, err := loaded.EmbeddingMatrix(table.DefaultEmbeddingColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9}, mat.Row(nil, 2, matrix))
}

func TestLoadTable_NamedVector(t *testing.T) {
	named := &pb.RetrievedPoint{
		Id: pb.NewIDNum(1),
		Vectors: &pb.VectorsOutput{
			VectorsOptions: &pb.VectorsOutput_Vectors{
				Vectors: &pb.NamedVectorsOutput{Vectors: map[string]*pb.VectorOutput{
					"esm": {Vector: &pb.VectorOutput_Dense{Dense: &pb.DenseVector{Data: []float32{0.5, 1.5}}}},
				}},
			},
		},
	}
	fake := &fakePointsClient{pages: [][]*pb.RetrievedPoint{{named}}}

	loaded, err := newClient(fake, nil, "proteins", Options{VectorName: "esm"}).LoadTable(context.Background(), "embedding")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, loaded.Value(0, "embedding"))

	_, err = newClient(fake, nil, "proteins", Options{VectorName: "other"}).LoadTable(context.Background(), "embedding")
	assert.Error(t, err)
}

func TestWriteComponents(t *testing.T) {
	reduced := table.New(IDColumn)
	reduced.Append(table.Row{IDColumn: uint64(7)})
	reduced.Append(table.Row{IDColumn: "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"})
	require.NoError(t, reduced.AppendColumns([]string{"PCA_1", "PCA_2"}, mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})))

	fake := &fakePointsClient{}
	client := newClient(fake, nil, "proteins", Options{})
	require.NoError(t, client.WriteComponents(context.Background(), reduced, []string{"PCA_1", "PCA_2"}))

	require.Len(t, fake.setPayloads, 2)
	first := fake.setPayloads[0]
	assert.Equal(t, "proteins", first.CollectionName)
	assert.True(t, first.GetWait())
	assert.Equal(t, 0.2, first.Payload["PCA_2"].GetDoubleValue())
	assert.Equal(t, uint64(7), first.GetPointsSelector().GetPoints().GetIds()[0].GetNum())
	assert.Equal(t, "5c56c793-69f3-4fbf-87e6-c4bf54c28c26", fake.setPayloads[1].GetPointsSelector().GetPoints().GetIds()[0].GetUuid())
}

func TestWriteComponents_Errors(t *testing.T) {
	reduced := table.New(IDColumn)
	reduced.Append(table.Row{IDColumn: uint64(1)})
	require.NoError(t, reduced.AppendColumns([]string{"PCA_1"}, mat.NewDense(1, 1, []float64{0.5})))

	client := newClient(&fakePointsClient{}, nil, "proteins", Options{})
	assert.Error(t, client.WriteComponents(context.Background(), reduced, []string{"PCA_9"}))
	assert.Error(t, client.WriteComponents(context.Background(), table.New("gene"), nil))

	failing := newClient(&fakePointsClient{setPayloadErr: errors.New("unavailable")}, nil, "proteins", Options{})
	assert.ErrorContains(t, failing.WriteComponents(context.Background(), reduced, []string{"PCA_1"}), "unavailable")
}

func TestValueToCell(t *testing.T) {
	structValue := pb.NewValueFromFields(map[string]*pb.Value{"organism": pb.NewValueString("E. coli")})
	listValue := pb.NewValueFromList(pb.NewValueInt(1), pb.NewValueBool(true))

	assert.Nil(t, valueToCell(pb.NewValueNull()))
	assert.Nil(t, valueToCell(nil))
	assert.Equal(t, 0.5, valueToCell(pb.NewValueDouble(0.5)))
	assert.Equal(t, int64(3), valueToCell(pb.NewValueInt(3)))
	assert.Equal(t, "aaeR", valueToCell(pb.NewValueString("aaeR")))
	assert.Equal(t, map[string]any{"organism": "E. coli"}, valueToCell(structValue))
	assert.Equal(t, []any{int64(1), true}, valueToCell(listValue))
}

func TestPointIDFromCell(t *testing.T) {
	tests := []struct {
		name string
		cell any
		num  uint64
		uuid string
		err  bool
	}{
		{"uint64", uint64(12), 12, "", false},
		{"whole float", 12.0, 12, "", false},
		{"json number", json.Number("12"), 12, "", false},
		{"numeric string", "12", 12, "", false},
		{"uuid", "5C56C793-69F3-4FBF-87E6-C4BF54C28C26", 0, "5c56c793-69f3-4fbf-87e6-c4bf54c28c26", false},
		{"fraction", 1.5, 0, "", true},
		{"negative", -1, 0, "", true},
		{"text", "aaeR", 0, "", true},
		{"missing", nil, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pointID, err := pointIDFromCell(tt.cell)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.num, pointID.GetNum())
			assert.Equal(t, tt.uuid, pointID.GetUuid())
		})
	}
}
