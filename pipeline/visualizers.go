package pipeline

import (
	"context"

	"github.com/alDuncanson/latentpca/plot"
	"github.com/alDuncanson/latentpca/tui"
)

// TerminalVisualizer shows the interactive variance viewer and returns once the
// user quits it.
type TerminalVisualizer struct {
	Version string
}

// Show implements Visualizer.
func (visualizer TerminalVisualizer) Show(ctx context.Context, analysis *Analysis) error {
	model, err := tui.NewModel(varianceForView(analysis), analysis.Points, visualizer.Version)
	if err != nil {
		return err
	}
	return tui.Run(ctx, model)
}

func varianceForView(analysis *Analysis) tui.Variance {
	return tui.Variance{
		Ratios:     analysis.Selection.Full.ExplainedVarianceRatio,
		Cumulative: analysis.Selection.Cumulative,
		Threshold:  analysis.Selection.Threshold,
		Components: analysis.Selection.Components,
		Samples:    analysis.Samples,
		Features:   analysis.Features,
	}
}

// FigureVisualizer saves the cumulative variance curve as an image file.
type FigureVisualizer struct {
	Path string
}

// Show implements Visualizer.
func (visualizer FigureVisualizer) Show(_ context.Context, analysis *Analysis) error {
	return plot.SaveVarianceCurve(
		visualizer.Path,
		analysis.Selection.Cumulative,
		analysis.Selection.Threshold,
		analysis.Selection.Components,
	)
}
