package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

func TestSplitsResponseParsing(t *testing.T) {
	jsonData := `{"splits":[{"dataset":"test/dataset","config":"default","split":"train"},{"dataset":"test/dataset","config":"default","split":"test"}]}`

	var resp SplitsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(resp.Splits) != 2 {
		t.Errorf("expected 2 splits, got %d", len(resp.Splits))
	}

	if resp.Splits[0].Config != "default" {
		t.Errorf("expected config 'default', got %s", resp.Splits[0].Config)
	}
}

func TestRowsResponseParsing(t *testing.T) {
	jsonData := `{"features":[{"feature_idx":0,"name":"gene"},{"feature_idx":1,"name":"embedding"}],"rows":[{"row_idx":0,"row":{"gene":"aaeR","embedding":[0.1,0.2]}}],"num_rows_total":1}`

	var resp RowsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(resp.Features) != 2 || resp.Features[1].Name != "embedding" {
		t.Errorf("unexpected features: %+v", resp.Features)
	}

	if resp.Rows[0].Row["gene"] != "aaeR" {
		t.Errorf("expected 'aaeR', got %v", resp.Rows[0].Row["gene"])
	}
}

// newDatasetServer serves a split of totalRows rows, each with a 2-dimensional
// embedding, and counts /rows requests. The dataset lists default/train and
// default/test; rows are only served for a listed split.
func newDatasetServer(t *testing.T, totalRows int, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer hf_test" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/splits":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"splits":[{"dataset":"org/esol","config":"default","split":"train"},{"dataset":"org/esol","config":"default","split":"test"}]}`)
			return
		case "/rows":
		default:
			http.NotFound(w, r)
			return
		}
		*requests++

		if query := r.URL.Query(); query.Get("config") != "default" || (query.Get("split") != "train" && query.Get("split") != "test") {
			http.Error(w, `{"error":"unknown split"}`, http.StatusNotFound)
			return
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))

		response := RowsResponse{
			Features:     []Feature{{FeatureIdx: 0, Name: "gene"}, {FeatureIdx: 1, Name: "embedding"}},
			NumRowsTotal: totalRows,
		}
		for rowIndex := offset; rowIndex < offset+length && rowIndex < totalRows; rowIndex++ {
			response.Rows = append(response.Rows, RowWrapper{
				RowIdx: rowIndex,
				Row: map[string]any{
					"gene":      fmt.Sprintf("g%d", rowIndex),
					"embedding": []float64{float64(rowIndex), float64(rowIndex * rowIndex)},
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestLoadTable_Paginates(t *testing.T) {
	requests := 0
	server := newDatasetServer(t, 250, &requests)
	defer server.Close()

	client := NewClient(server.URL, "hf_test")
	loaded, err := client.LoadTable(context.Background(), "org/esol", "default", "test", 0)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if loaded.Len() != 250 {
		t.Errorf("expected 250 rows, got %d", loaded.Len())
	}
	if requests != 3 {
		t.Errorf("expected 3 page requests, got %d", requests)
	}

	columns := loaded.Columns()
	if len(columns) != 2 || columns[0] != "gene" || columns[1] != "embedding" {
		t.Errorf("expected feature column order, got %v", columns)
	}

	matrix, err := loaded.EmbeddingMatrix("embedding")
	if err != nil {
		t.Fatalf("EmbeddingMatrix failed: %v", err)
	}
	if got := mat.Row(nil, 120, matrix); got[0] != 120 || got[1] != 14400 {
		t.Errorf("row 120 out of order: %v", got)
	}
}

func TestLoadTable_MaxRows(t *testing.T) {
	requests := 0
	server := newDatasetServer(t, 250, &requests)
	defer server.Close()

	loaded, err := NewClient(server.URL, "hf_test").LoadTable(context.Background(), "org/esol", "default", "test", 130)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if loaded.Len() != 130 {
		t.Errorf("expected 130 rows, got %d", loaded.Len())
	}
	if requests != 2 {
		t.Errorf("expected 2 page requests, got %d", requests)
	}
}

func TestLoadTable_APIError(t *testing.T) {
	requests := 0
	server := newDatasetServer(t, 10, &requests)
	defer server.Close()

	_, err := NewClient(server.URL, "wrong").LoadTable(context.Background(), "org/esol", "default", "test", 0)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
}

func TestResolveSplit(t *testing.T) {
	requests := 0
	server := newDatasetServer(t, 10, &requests)
	defer server.Close()
	client := NewClient(server.URL, "hf_test")

	tests := []struct {
		name          string
		config, split string
		expected      Split
		err           error
	}{
		{"exact match", "default", "test", Split{Dataset: "org/esol", Config: "default", Split: "test"}, nil},
		{"empty split takes first", "default", "", Split{Dataset: "org/esol", Config: "default", Split: "train"}, nil},
		{"empty config matches split", "", "test", Split{Dataset: "org/esol", Config: "default", Split: "test"}, nil},
		{"unknown split", "default", "validation", Split{}, ErrSplitNotFound},
		{"unknown config", "plus", "train", Split{}, ErrSplitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.ResolveSplit(context.Background(), "org/esol", tt.config, tt.split)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestLoadTable_UnknownSplitRequestsNoRows(t *testing.T) {
	requests := 0
	server := newDatasetServer(t, 10, &requests)
	defer server.Close()

	_, err := NewClient(server.URL, "hf_test").LoadTable(context.Background(), "org/esol", "default", "validation", 0)
	if !errors.Is(err, ErrSplitNotFound) {
		t.Fatalf("expected ErrSplitNotFound, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no row requests, got %d", requests)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("", "")
	if client.httpClient == nil {
		t.Error("expected non-nil http client")
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", client.baseURL)
	}
	if NewClient("http://localhost:8080/", "").baseURL != "http://localhost:8080" {
		t.Error("expected trailing slash to be trimmed")
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("org/esol", "default", "test"); got != "hf://org/esol/default/test" {
		t.Errorf("unexpected description %s", got)
	}
}
