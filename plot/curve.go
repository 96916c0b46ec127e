// Package plot renders the cumulative explained variance curve as a static figure
// for runs without a terminal.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alDuncanson/latentpca/projection"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Figure dimensions.
const (
	FigureWidth  = 8 * vg.Inch
	FigureHeight = 5 * vg.Inch
)

var (
	thresholdColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	selectionColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// VarianceCurve builds the figure: cumulative ratio against the 1-indexed component
// number, a horizontal line at the threshold and a vertical line at the selected
// component count.
func VarianceCurve(cumulative []float64, threshold float64, components int) (*gonumplot.Plot, error) {
	if len(cumulative) == 0 {
		return nil, errors.New("no explained variance to plot")
	}
	if components < 1 || components > len(cumulative) {
		return nil, fmt.Errorf("selected component count %d outside 1..%d", components, len(cumulative))
	}

	figure := gonumplot.New()
	figure.Title.Text = "PCA: Cumulative Explained Variance"
	figure.X.Label.Text = "Number of Principal Components"
	figure.Y.Label.Text = "Cumulative Explained Variance"
	figure.Y.Min = 0
	figure.Y.Max = 1.05
	figure.X.Min = 0
	figure.X.Max = float64(len(cumulative)) + 1
	figure.Add(plotter.NewGrid())

	curvePoints := make(plotter.XYs, len(cumulative))
	for componentIndex, value := range cumulative {
		curvePoints[componentIndex].X = float64(componentIndex + 1)
		curvePoints[componentIndex].Y = value
	}
	curveLine, curveMarkers, err := plotter.NewLinePoints(curvePoints)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}

	thresholdLine, err := plotter.NewLine(plotter.XYs{
		{X: figure.X.Min, Y: threshold},
		{X: figure.X.Max, Y: threshold},
	})
	if err != nil {
		return nil, fmt.Errorf("threshold line: %w", err)
	}
	thresholdLine.Color = thresholdColor
	thresholdLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	selectionLine, err := plotter.NewLine(plotter.XYs{
		{X: float64(components), Y: figure.Y.Min},
		{X: float64(components), Y: figure.Y.Max},
	})
	if err != nil {
		return nil, fmt.Errorf("selection line: %w", err)
	}
	selectionLine.Color = selectionColor
	selectionLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	figure.Add(curveLine, curveMarkers, thresholdLine, selectionLine)
	figure.Legend.Add(ThresholdLabel(threshold), thresholdLine)
	figure.Legend.Add(fmt.Sprintf("%d Components", components), selectionLine)
	figure.Legend.Top = false
	figure.Legend.Left = false

	return figure, nil
}

// ThresholdLabel formats the legend entry for the threshold line, e.g.
// "95% Explained Variance".
func ThresholdLabel(threshold float64) string {
	return projection.ThresholdPercent(threshold) + "% Explained Variance"
}

// SaveVarianceCurve writes the figure to path, creating the parent directory if
// needed. The image format follows the file extension (png, svg, pdf, jpg, tif, eps)
// and defaults to png.
func SaveVarianceCurve(path string, cumulative []float64, threshold float64, components int) error {
	if directory := filepath.Dir(path); directory != "." {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("save figure %s: %w", path, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save figure %s: %w", path, err)
	}
	if err := WriteVarianceCurve(file, formatFromPath(path), cumulative, threshold, components); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("save figure %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("save figure %s: %w", path, err)
	}
	return nil
}

// WriteVarianceCurve encodes the figure to w in the given format ("png", "svg", ...).
func WriteVarianceCurve(w io.Writer, format string, cumulative []float64, threshold float64, components int) error {
	figure, err := VarianceCurve(cumulative, threshold, components)
	if err != nil {
		return err
	}

	writerTo, err := figure.WriterTo(FigureWidth, FigureHeight, strings.TrimPrefix(format, "."))
	if err != nil {
		return fmt.Errorf("encode figure: %w", err)
	}
	_, err = writerTo.WriteTo(w)
	return err
}

// formatFromPath returns the image format implied by path's extension, or "png"
// when the path has none.
func formatFromPath(path string) string {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if extension == "" {
		return "png"
	}
	return extension
}
