// Package projection provides dimensionality reduction for high-dimensional embedding vectors.
//
// # Principal Component Analysis (PCA) Overview
//
// PCA re-expresses data along orthogonal axes (principal components) ordered by how much of
// the dataset's variance each one captures. Protein-sequence embeddings typically have
// hundreds or thousands of dimensions, but most of their spread lies on or near a much
// smaller subspace; PCA finds that subspace and tells us how many axes we need to keep.
//
// # Why We Use Singular Value Decomposition (SVD)
//
// While PCA can be computed by finding eigenvectors of the covariance matrix, SVD is numerically
// more stable. For a centered data matrix X, the right singular vectors (V) give us the principal
// components directly, without needing to compute X^T * X explicitly.
//
// The mathematical relationship is:
//   - X = U * Σ * V^T  (SVD decomposition)
//   - The columns of V are the principal components (directions of maximum variance)
//   - The squared singular values σ_i² are proportional to the variance captured by component i
//   - Projecting data: X_projected = X * V[:, 0:k] gives us the k-dimensional representation
//
// # Sign Convention
//
// Singular vectors are only defined up to sign. Fit flips each component so that its
// largest-magnitude loading is positive, which makes results repeatable for identical input.
// Orientation is still not comparable between fits on different datasets.
package projection

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA holds a fitted principal component decomposition.
type PCA struct {
	// Components holds the principal axes as rows (numberOfComponents x NumberOfFeatures),
	// ordered by descending explained variance.
	Components *mat.Dense

	// Mean is the per-feature mean subtracted before decomposition.
	Mean []float64

	// SingularValues of the centered data for each kept component.
	SingularValues []float64

	// ExplainedVariance is the sample variance (denominator N-1) along each kept component.
	ExplainedVariance []float64

	// ExplainedVarianceRatio is the fraction of total variance captured by each kept component.
	// The denominator is always the variance of the full decomposition, so the ratios of a
	// truncated fit are the leading entries of the full fit's ratios.
	ExplainedVarianceRatio []float64

	NumberOfSamples  int
	NumberOfFeatures int
}

// NumberOfComponents returns how many principal axes the fit kept.
func (pca *PCA) NumberOfComponents() int {
	return len(pca.SingularValues)
}

// CumulativeExplainedVarianceRatio returns the running sum of ExplainedVarianceRatio.
func (pca *PCA) CumulativeExplainedVarianceRatio() []float64 {
	return CumulativeSum(pca.ExplainedVarianceRatio)
}

// Fit computes the principal components of dataMatrix, whose rows are samples and whose
// columns are features.
//
// numberOfComponents selects how many components to keep. A value <= 0 keeps all of them,
// which is min(samples, features) since a centered matrix cannot have more non-trivial axes.
func Fit(dataMatrix mat.Matrix, numberOfComponents int) (*PCA, error) {
	if dataMatrix == nil {
		return nil, &DecompositionError{Op: "fit", Err: ErrEmptyOrConstantInput}
	}

	numberOfSamples, numberOfFeatures := dataMatrix.Dims()
	newError := func(cause error) error {
		return &DecompositionError{Op: "fit", Samples: numberOfSamples, Features: numberOfFeatures, Err: cause}
	}

	if numberOfSamples == 0 || numberOfFeatures == 0 {
		return nil, newError(ErrEmptyOrConstantInput)
	}

	if !allValuesAreFinite(dataMatrix) {
		return nil, newError(ErrNonFiniteInput)
	}

	// The sample variance uses N-1 in the denominator, so a single row carries no variance
	if numberOfSamples < 2 {
		return nil, newError(ErrTooFewSamples)
	}

	maximumComponents := min(numberOfSamples, numberOfFeatures)
	if numberOfComponents <= 0 {
		numberOfComponents = maximumComponents
	}
	if numberOfComponents > maximumComponents {
		return nil, newError(ErrInvalidComponentCount)
	}

	// Step 1: Center the data by subtracting the mean of each feature column
	centeredDataMatrix := mat.DenseCopyOf(dataMatrix)
	columnMeans, constantColumnCount := centerDataMatrixBySubtractingColumnMeans(centeredDataMatrix)
	if constantColumnCount == numberOfFeatures {
		return nil, newError(ErrEmptyOrConstantInput)
	}

	// Step 2: Factorize the centered matrix. The thin SVD is enough: it yields
	// min(samples, features) singular triplets, which is every non-trivial component.
	var svdDecomposition mat.SVD
	if !svdDecomposition.Factorize(centeredDataMatrix, mat.SVDThin) {
		return nil, newError(ErrFactorizationFailed)
	}

	singularValues := svdDecomposition.Values(nil)
	squaredSingularValues := make([]float64, len(singularValues))
	for componentIndex, singularValue := range singularValues {
		squaredSingularValues[componentIndex] = singularValue * singularValue
	}

	totalSumOfSquares := floats.Sum(squaredSingularValues)
	if totalSumOfSquares == 0 {
		return nil, newError(ErrEmptyOrConstantInput)
	}

	// Step 3: Extract V (features x components); its columns are the principal axes
	var rightSingularVectors mat.Dense
	svdDecomposition.VTo(&rightSingularVectors)

	componentMatrix := extractLeadingPrincipalComponents(&rightSingularVectors, numberOfComponents)

	// Step 4: Compute variance bookkeeping for the kept components
	degreesOfFreedom := float64(numberOfSamples - 1)
	keptSingularValues := make([]float64, numberOfComponents)
	explainedVariance := make([]float64, numberOfComponents)
	explainedVarianceRatio := make([]float64, numberOfComponents)
	for componentIndex := 0; componentIndex < numberOfComponents; componentIndex++ {
		keptSingularValues[componentIndex] = singularValues[componentIndex]
		explainedVariance[componentIndex] = squaredSingularValues[componentIndex] / degreesOfFreedom
		explainedVarianceRatio[componentIndex] = squaredSingularValues[componentIndex] / totalSumOfSquares
	}

	return &PCA{
		Components:             componentMatrix,
		Mean:                   columnMeans,
		SingularValues:         keptSingularValues,
		ExplainedVariance:      explainedVariance,
		ExplainedVarianceRatio: explainedVarianceRatio,
		NumberOfSamples:        numberOfSamples,
		NumberOfFeatures:       numberOfFeatures,
	}, nil
}

// Transform projects dataMatrix onto the fitted principal axes.
//
// Mathematically: ProjectedData = (Data - Mean) × Components^T
//
// Where:
//   - Data is (numberOfSamples x NumberOfFeatures)
//   - Components^T is (NumberOfFeatures x numberOfComponents)
//   - ProjectedData is (numberOfSamples x numberOfComponents)
func (pca *PCA) Transform(dataMatrix mat.Matrix) (*mat.Dense, error) {
	numberOfSamples, numberOfFeatures := dataMatrix.Dims()
	if numberOfFeatures != pca.NumberOfFeatures {
		return nil, &DecompositionError{
			Op:       "transform",
			Samples:  numberOfSamples,
			Features: numberOfFeatures,
			Err:      ErrFeatureMismatch,
		}
	}

	centeredDataMatrix := mat.DenseCopyOf(dataMatrix)
	for rowIndex := 0; rowIndex < numberOfSamples; rowIndex++ {
		row := centeredDataMatrix.RawRowView(rowIndex)
		floats.Sub(row, pca.Mean)
	}

	var projectedCoordinates mat.Dense
	projectedCoordinates.Mul(centeredDataMatrix, pca.Components.T())
	return &projectedCoordinates, nil
}

func allValuesAreFinite(dataMatrix mat.Matrix) bool {
	numberOfRows, numberOfColumns := dataMatrix.Dims()
	for rowIndex := 0; rowIndex < numberOfRows; rowIndex++ {
		for columnIndex := 0; columnIndex < numberOfColumns; columnIndex++ {
			value := dataMatrix.At(rowIndex, columnIndex)
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return false
			}
		}
	}
	return true
}

// centerDataMatrixBySubtractingColumnMeans modifies the matrix in-place to have zero mean
// for each column and returns the subtracted means along with the number of constant columns.
//
// A constant column is centered to exact zeros rather than to the rounding residue of its
// computed mean, so it contributes exactly nothing to the decomposition.
func centerDataMatrixBySubtractingColumnMeans(dataMatrix *mat.Dense) ([]float64, int) {
	numberOfRows, numberOfColumns := dataMatrix.Dims()
	columnMeans := make([]float64, numberOfColumns)
	constantColumnCount := 0

	columnValues := make([]float64, numberOfRows)
	for columnIndex := 0; columnIndex < numberOfColumns; columnIndex++ {
		mat.Col(columnValues, columnIndex, dataMatrix)

		if floats.Max(columnValues) == floats.Min(columnValues) {
			columnMeans[columnIndex] = columnValues[0]
			constantColumnCount++
		} else {
			columnMeans[columnIndex] = stat.Mean(columnValues, nil)
		}

		for rowIndex := 0; rowIndex < numberOfRows; rowIndex++ {
			dataMatrix.Set(rowIndex, columnIndex, columnValues[rowIndex]-columnMeans[columnIndex])
		}
	}

	return columnMeans, constantColumnCount
}

// extractLeadingPrincipalComponents copies the first numberOfComponents columns of V into
// the rows of a new (numberOfComponents x features) matrix, flipping each so that its
// largest-magnitude loading is positive.
func extractLeadingPrincipalComponents(rightSingularVectors *mat.Dense, numberOfComponents int) *mat.Dense {
	numberOfFeatures, _ := rightSingularVectors.Dims()
	componentMatrix := mat.NewDense(numberOfComponents, numberOfFeatures, nil)

	axis := make([]float64, numberOfFeatures)
	for componentIndex := 0; componentIndex < numberOfComponents; componentIndex++ {
		mat.Col(axis, componentIndex, rightSingularVectors)

		largestLoadingIndex := 0
		for featureIndex, loading := range axis {
			if math.Abs(loading) > math.Abs(axis[largestLoadingIndex]) {
				largestLoadingIndex = featureIndex
			}
		}
		if axis[largestLoadingIndex] < 0 {
			floats.Scale(-1, axis)
		}

		componentMatrix.SetRow(componentIndex, axis)
	}

	return componentMatrix
}
