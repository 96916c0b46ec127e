package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleCumulative = []float64{0.4, 0.65, 0.8, 0.9, 0.96, 0.98, 1}

func TestVarianceCurve_Labels(t *testing.T) {
	figure, err := VarianceCurve(sampleCumulative, 0.95, 5)
	require.NoError(t, err)

	assert.Equal(t, "PCA: Cumulative Explained Variance", figure.Title.Text)
	assert.Equal(t, "Number of Principal Components", figure.X.Label.Text)
	assert.Equal(t, "Cumulative Explained Variance", figure.Y.Label.Text)
	assert.Equal(t, "95% Explained Variance", ThresholdLabel(0.95))
	assert.Equal(t, "57% Explained Variance", ThresholdLabel(0.57))
	assert.Equal(t, "99.5% Explained Variance", ThresholdLabel(0.995))
}

func TestVarianceCurve_RejectsBadInput(t *testing.T) {
	_, err := VarianceCurve(nil, 0.95, 1)
	assert.Error(t, err)

	_, err = VarianceCurve(sampleCumulative, 0.95, 0)
	assert.Error(t, err)

	_, err = VarianceCurve(sampleCumulative, 0.95, len(sampleCumulative)+1)
	assert.Error(t, err)
}

func TestSaveVarianceCurve_WritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variance.png")
	require.NoError(t, SaveVarianceCurve(path, sampleCumulative, 0.95, 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "expected a PNG signature")
}

func TestSaveVarianceCurve_FormatFollowsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures", "nested", "variance.SVG")
	require.NoError(t, SaveVarianceCurve(path, sampleCumulative, 0.9, 4))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestSaveVarianceCurve_UnknownFormatLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	err := SaveVarianceCurve(filepath.Join(dir, "variance.bmp"), sampleCumulative, 0.95, 5)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestWriteVarianceCurve_SVG(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, WriteVarianceCurve(&buffer, "svg", sampleCumulative, 0.9, 4))
	assert.Contains(t, buffer.String(), "<svg")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "png", formatFromPath("figure"))
	assert.Equal(t, "svg", formatFromPath("out/figure.SVG"))
}
