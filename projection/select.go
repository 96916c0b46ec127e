package projection

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// DefaultVarianceThreshold is the fraction of variance the selected components must explain.
const DefaultVarianceThreshold = 0.95

// ThresholdPercent formats a variance fraction as a percentage without float noise,
// so 0.95 becomes "95" and 0.57 becomes "57".
func ThresholdPercent(threshold float64) string {
	return strconv.FormatFloat(math.Round(threshold*1e6)/1e4, 'f', -1, 64)
}

// CumulativeSum returns the running sum of ratios. The input is left untouched.
func CumulativeSum(ratios []float64) []float64 {
	if len(ratios) == 0 {
		return nil
	}
	return floats.CumSum(make([]float64, len(ratios)), ratios)
}

// SelectComponentCount returns the smallest 1-indexed component count whose cumulative
// explained-variance ratio meets or exceeds threshold.
//
// The full set of ratios sums to 1, so the threshold is always reachable in exact
// arithmetic. When rounding leaves the final cumulative value just short of it, every
// component is selected.
func SelectComponentCount(explainedVarianceRatio []float64, threshold float64) (int, error) {
	if !(threshold > 0 && threshold <= 1) {
		return 0, &DecompositionError{Op: "select", Err: ErrInvalidThreshold}
	}
	if len(explainedVarianceRatio) == 0 {
		return 0, &DecompositionError{Op: "select", Err: ErrEmptyOrConstantInput}
	}

	cumulativeRatios := CumulativeSum(explainedVarianceRatio)
	for componentIndex, cumulativeRatio := range cumulativeRatios {
		if cumulativeRatio >= threshold {
			return componentIndex + 1, nil
		}
	}

	return len(cumulativeRatios), nil
}
