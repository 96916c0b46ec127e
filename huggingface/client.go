// Package huggingface provides a client for the Hugging Face Dataset Viewer API.
// It pages through a dataset split via REST and turns the rows into a table.
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alDuncanson/latentpca/table"

	json "github.com/goccy/go-json"
)

// DefaultBaseURL is the public Dataset Viewer endpoint.
const DefaultBaseURL = "https://datasets-server.huggingface.co"

// maxPageLength is the largest page the /rows endpoint serves.
const maxPageLength = 100

// ErrSplitNotFound is returned when a dataset does not serve the requested config and split.
var ErrSplitNotFound = errors.New("split not found")

// Client interacts with the Hugging Face Dataset Viewer API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new Hugging Face API client. An empty baseURL means
// DefaultBaseURL. The token is only needed for gated or private datasets.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// APIError is returned when the API answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// SplitsResponse represents the response from the /splits endpoint.
type SplitsResponse struct {
	Splits []Split `json:"splits"`
}

// Split represents a dataset split.
type Split struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// RowsResponse represents the response from the /rows endpoint.
type RowsResponse struct {
	Features     []Feature    `json:"features"`
	Rows         []RowWrapper `json:"rows"`
	NumRowsTotal int          `json:"num_rows_total"`
}

// Feature describes one dataset column.
type Feature struct {
	FeatureIdx int    `json:"feature_idx"`
	Name       string `json:"name"`
}

// RowWrapper wraps an individual row from the dataset.
type RowWrapper struct {
	RowIdx int            `json:"row_idx"`
	Row    map[string]any `json:"row"`
}

// GetSplits fetches available splits for a dataset.
func (c *Client) GetSplits(ctx context.Context, dataset string) (*SplitsResponse, error) {
	query := url.Values{"dataset": {dataset}}

	var result SplitsResponse
	if err := c.get(ctx, "/splits", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResolveSplit checks that dataset serves config and split. An empty config or split
// matches the first one the API lists.
func (c *Client) ResolveSplit(ctx context.Context, dataset, config, split string) (Split, error) {
	splits, err := c.GetSplits(ctx, dataset)
	if err != nil {
		return Split{}, fmt.Errorf("splits of %s: %w", dataset, err)
	}

	available := make([]string, 0, len(splits.Splits))
	for _, candidate := range splits.Splits {
		if (config == "" || candidate.Config == config) && (split == "" || candidate.Split == split) {
			return candidate, nil
		}
		available = append(available, candidate.Config+"/"+candidate.Split)
	}
	return Split{}, fmt.Errorf("%w: %s/%s in %s (available: %s)", ErrSplitNotFound, config, split, dataset, strings.Join(available, ", "))
}

// GetRows fetches rows from a dataset split.
func (c *Client) GetRows(ctx context.Context, dataset, config, split string, offset, length int) (*RowsResponse, error) {
	query := url.Values{
		"dataset": {dataset},
		"config":  {config},
		"split":   {split},
		"offset":  {strconv.Itoa(offset)},
		"length":  {strconv.Itoa(length)},
	}

	var result RowsResponse
	if err := c.get(ctx, "/rows", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// get performs a GET request and decodes the JSON body into result. Numbers are kept
// as json.Number so large embedding values survive unchanged until parsing.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// LoadTable fetches every row of a dataset split into a table whose columns follow
// the dataset's feature order. It paginates through the dataset in chunks of 100
// rows (API max). A positive maxRows caps the number of rows fetched. The split is
// checked with ResolveSplit before any rows are requested.
func (c *Client) LoadTable(ctx context.Context, dataset, config, split string, maxRows int) (*table.Table, error) {
	resolved, err := c.ResolveSplit(ctx, dataset, config, split)
	if err != nil {
		return nil, err
	}

	var loaded *table.Table
	offset := 0

	for {
		if maxRows > 0 && offset >= maxRows {
			break
		}

		remaining := maxPageLength
		if maxRows > 0 && offset+maxPageLength > maxRows {
			remaining = maxRows - offset
		}

		rows, err := c.GetRows(ctx, dataset, resolved.Config, resolved.Split, offset, remaining)
		if err != nil {
			return nil, fmt.Errorf("rows %d..%d: %w", offset, offset+remaining, err)
		}

		// The first page fixes the column order
		if loaded == nil {
			loaded = table.New(featureNames(rows.Features)...)
		}

		if len(rows.Rows) == 0 {
			break
		}

		for _, wrapper := range rows.Rows {
			loaded.Append(table.Row(wrapper.Row))
		}

		offset += len(rows.Rows)

		if len(rows.Rows) < remaining || (rows.NumRowsTotal > 0 && offset >= rows.NumRowsTotal) {
			break
		}
	}

	if loaded == nil {
		loaded = table.New()
	}
	return loaded, nil
}

// Describe names a dataset split for logs, e.g. "hf://org/name/default/train".
func Describe(dataset, config, split string) string {
	return "hf://" + dataset + "/" + config + "/" + split
}

func featureNames(features []Feature) []string {
	names := make([]string, len(features))
	for index, feature := range features {
		names[index] = feature.Name
	}
	return names
}
