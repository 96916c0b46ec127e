package projection

import (
	"gonum.org/v1/gonum/mat"
)

// Selection is the outcome of analysing the full decomposition of a dataset.
type Selection struct {
	// Full is the decomposition with every component kept.
	Full *PCA

	// Cumulative is the running sum of Full.ExplainedVarianceRatio.
	Cumulative []float64

	// Threshold is the variance fraction the selection had to reach.
	Threshold float64

	// Components is the smallest number of leading components reaching Threshold.
	Components int
}

// SelectComponents fits a full decomposition of dataMatrix and picks how many leading
// components are needed to explain threshold of its variance.
func SelectComponents(dataMatrix mat.Matrix, threshold float64) (*Selection, error) {
	fullDecomposition, err := Fit(dataMatrix, 0)
	if err != nil {
		return nil, err
	}

	selectedComponentCount, err := SelectComponentCount(fullDecomposition.ExplainedVarianceRatio, threshold)
	if err != nil {
		return nil, err
	}

	return &Selection{
		Full:       fullDecomposition,
		Cumulative: fullDecomposition.CumulativeExplainedVarianceRatio(),
		Threshold:  threshold,
		Components: selectedComponentCount,
	}, nil
}

// Reduce re-fits dataMatrix keeping numberOfComponents axes and returns the projection of
// every row onto them, shaped (samples x numberOfComponents), along with the fitted model.
func Reduce(dataMatrix mat.Matrix, numberOfComponents int) (*mat.Dense, *PCA, error) {
	if numberOfComponents <= 0 {
		numberOfSamples, numberOfFeatures := dataMatrix.Dims()
		return nil, nil, &DecompositionError{
			Op:       "reduce",
			Samples:  numberOfSamples,
			Features: numberOfFeatures,
			Err:      ErrInvalidComponentCount,
		}
	}

	reducedDecomposition, err := Fit(dataMatrix, numberOfComponents)
	if err != nil {
		return nil, nil, err
	}

	projectedCoordinates, err := reducedDecomposition.Transform(dataMatrix)
	if err != nil {
		return nil, nil, err
	}

	return projectedCoordinates, reducedDecomposition, nil
}
