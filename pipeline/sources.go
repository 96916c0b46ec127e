package pipeline

import (
	"context"

	"github.com/alDuncanson/latentpca/huggingface"
	"github.com/alDuncanson/latentpca/table"
)

// FileSource reads a table file. The format follows the file extension.
type FileSource struct {
	Path string
}

// LoadTable implements Source.
func (source FileSource) LoadTable(_ context.Context, _ string) (*table.Table, error) {
	return table.Load(source.Path)
}

// Describe implements Source.
func (source FileSource) Describe() string {
	return source.Path
}

// HuggingFaceSource reads a dataset split through the Dataset Viewer API.
type HuggingFaceSource struct {
	Client  *huggingface.Client
	Dataset string
	Config  string
	Split   string
	MaxRows int
}

// LoadTable implements Source.
func (source HuggingFaceSource) LoadTable(ctx context.Context, _ string) (*table.Table, error) {
	return source.Client.LoadTable(ctx, source.Dataset, source.Config, source.Split, source.MaxRows)
}

// Describe implements Source.
func (source HuggingFaceSource) Describe() string {
	return huggingface.Describe(source.Dataset, source.Config, source.Split)
}
