// Package pipeline runs a variance-threshold PCA over a table of embeddings: it
// loads the table, finds how many principal components explain the requested share
// of variance, shows the cumulative variance curve, and writes the table back out
// with one PCA_i column per kept component.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alDuncanson/latentpca/logging"
	"github.com/alDuncanson/latentpca/projection"
	"github.com/alDuncanson/latentpca/table"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Stage names reported by StageError.
const (
	StageLoad          = "load"
	StageSchema        = "schema"
	StageDecomposition = "decomposition"
	StageDisplay       = "display"
	StageWrite         = "write"
	StageWriteBack     = "write-back"
	StageReport        = "report"
)

// DefaultComponentPrefix names the reduced columns PCA_1, PCA_2, ...
const DefaultComponentPrefix = "PCA_"

// StageError records which step of a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + " failed: " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Source produces the input table.
type Source interface {
	LoadTable(ctx context.Context, embeddingColumn string) (*table.Table, error)
	Describe() string
}

// Visualizer displays the explained variance of a run before the reduction is
// written. Show blocks until the display is done.
type Visualizer interface {
	Show(ctx context.Context, analysis *Analysis) error
}

// ComponentWriter pushes the reduced coordinates back to where the rows came from.
type ComponentWriter interface {
	WriteComponents(ctx context.Context, reduced *table.Table, componentColumns []string) error
}

// Analysis is what visualizers see: the full decomposition, the selected component
// count, and every sample placed on the first two components.
type Analysis struct {
	Selection *projection.Selection
	Points    []projection.Point2D
	Samples   int
	Features  int
}

// Options configures a run.
type Options struct {
	Source          Source
	OutputPath      string
	EmbeddingColumn string
	// LabelColumn names the column used to label scatter points. Row indexes are
	// used when it is empty or missing.
	LabelColumn     string
	ComponentPrefix string
	Threshold       float64
	Visualizers     []Visualizer
	ComponentWriter ComponentWriter
	// ReportPath, when set, receives the run report as JSON.
	ReportPath string
	// Stdout receives the human-readable status lines. Nil discards them.
	Stdout io.Writer
	Logger *logging.Logger
}

func (options *Options) applyDefaults() {
	if options.EmbeddingColumn == "" {
		options.EmbeddingColumn = table.DefaultEmbeddingColumn
	}
	if options.ComponentPrefix == "" {
		options.ComponentPrefix = DefaultComponentPrefix
	}
	if options.Threshold == 0 {
		options.Threshold = projection.DefaultVarianceThreshold
	}
	if options.Stdout == nil {
		options.Stdout = io.Discard
	}
	if options.Logger == nil {
		options.Logger = logging.NoopLogger()
	}
}

// Run executes the whole analysis and returns its report. Errors are *StageError
// values wrapping the typed errors of the table and projection packages.
func Run(ctx context.Context, options Options) (*Report, error) {
	options.applyDefaults()
	startedAt := time.Now()
	runID := uuid.NewString()
	logger := options.Logger.WithRunID(runID)

	// Load the input table and turn its embedding column into an N×D matrix
	loaded, err := options.Source.LoadTable(ctx, options.EmbeddingColumn)
	logger.LogLoad(ctx, options.Source.Describe(), tableLength(loaded), err)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	embeddingMatrix, err := loaded.EmbeddingMatrix(options.EmbeddingColumn)
	if err != nil {
		return nil, &StageError{Stage: StageSchema, Err: err}
	}
	numberOfSamples, numberOfFeatures := embeddingMatrix.Dims()
	logger = logger.WithShape(numberOfSamples, numberOfFeatures)
	fmt.Fprintf(options.Stdout, "Shape of embeddings: (%d, %d)\n", numberOfSamples, numberOfFeatures)

	// Fit every component and pick the smallest count reaching the threshold
	selection, err := projection.SelectComponents(embeddingMatrix, options.Threshold)
	if err != nil {
		return nil, &StageError{Stage: StageDecomposition, Err: err}
	}
	fmt.Fprintf(options.Stdout, "Number of components needed for %s%% variance: %d\n", projection.ThresholdPercent(options.Threshold), selection.Components)
	logger.LogSelection(ctx, options.Threshold, selection.Components, selection.Cumulative[selection.Components-1])

	componentColumns := table.ComponentColumnNames(options.ComponentPrefix, selection.Components)
	if err := loaded.CheckNewColumns(componentColumns); err != nil {
		return nil, &StageError{Stage: StageSchema, Err: err}
	}

	// Show the variance curve before anything is written
	if len(options.Visualizers) > 0 {
		analysis, err := newAnalysis(selection, embeddingMatrix, loaded.Labels(options.LabelColumn))
		if err != nil {
			return nil, &StageError{Stage: StageDecomposition, Err: err}
		}
		for _, visualizer := range options.Visualizers {
			if err := visualizer.Show(ctx, analysis); err != nil {
				return nil, &StageError{Stage: StageDisplay, Err: err}
			}
		}
	}

	// Project onto the selected components and append them as new columns
	reducedMatrix, _, err := projection.Reduce(embeddingMatrix, selection.Components)
	if err != nil {
		return nil, &StageError{Stage: StageDecomposition, Err: err}
	}
	reducedRows, reducedColumns := reducedMatrix.Dims()
	fmt.Fprintf(options.Stdout, "Shape of reduced embeddings: (%d, %d)\n", reducedRows, reducedColumns)

	if err := loaded.AppendColumns(componentColumns, reducedMatrix); err != nil {
		return nil, &StageError{Stage: StageSchema, Err: err}
	}

	err = table.Save(options.OutputPath, loaded)
	logger.LogWrite(ctx, options.OutputPath, loaded.Len(), len(loaded.Columns()), err)
	if err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}

	if options.ComponentWriter != nil {
		if err := options.ComponentWriter.WriteComponents(ctx, loaded, componentColumns); err != nil {
			return nil, &StageError{Stage: StageWriteBack, Err: err}
		}
		logger.InfoContext(ctx, "components written back", "source", options.Source.Describe(), "columns", len(componentColumns))
	}

	report := newReport(runID, options, selection, numberOfSamples, numberOfFeatures, startedAt)
	if options.ReportPath != "" {
		if err := report.Save(options.ReportPath); err != nil {
			return nil, &StageError{Stage: StageReport, Err: err}
		}
	}

	return report, nil
}

// newAnalysis places every sample on the first two principal components of the
// full fit. A one-dimensional fit puts every point on the X axis.
func newAnalysis(selection *projection.Selection, embeddingMatrix *mat.Dense, labels []string) (*Analysis, error) {
	fullProjection, err := selection.Full.Transform(embeddingMatrix)
	if err != nil {
		return nil, err
	}

	numberOfSamples, numberOfComponents := fullProjection.Dims()
	planeColumns := min(2, numberOfComponents)
	plane := fullProjection.Slice(0, numberOfSamples, 0, planeColumns)

	return &Analysis{
		Selection: selection,
		Points:    projection.PointsFromProjection(plane, labels),
		Samples:   numberOfSamples,
		Features:  selection.Full.NumberOfFeatures,
	}, nil
}

func tableLength(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
