package projection

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOrConstantInput is returned when the data has no rows, no columns, or no variance.
	ErrEmptyOrConstantInput = errors.New("empty or constant input")
	// ErrTooFewSamples is returned when there are fewer than two samples.
	ErrTooFewSamples = errors.New("at least two samples are required")
	// ErrNonFiniteInput is returned when the data contains NaN or Inf.
	ErrNonFiniteInput = errors.New("input contains NaN or Inf")
	// ErrFactorizationFailed is returned when the SVD does not converge.
	ErrFactorizationFailed = errors.New("SVD factorization failed")
	// ErrInvalidComponentCount is returned when more components are requested than the data supports.
	ErrInvalidComponentCount = errors.New("invalid number of components")
	// ErrFeatureMismatch is returned when Transform sees a different feature count than Fit.
	ErrFeatureMismatch = errors.New("feature count does not match the fitted model")
	// ErrInvalidThreshold is returned when a variance threshold lies outside (0, 1].
	ErrInvalidThreshold = errors.New("variance threshold must be in (0, 1]")
)

// DecompositionError reports a failure to fit or apply a PCA decomposition.
//
// The underlying cause is one of the Err* sentinels and can be matched with errors.Is.
type DecompositionError struct {
	Op       string
	Samples  int
	Features int
	Err      error
}

func (e *DecompositionError) Error() string {
	if e.Samples == 0 && e.Features == 0 {
		return fmt.Sprintf("pca %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pca %s on %dx%d matrix: %v", e.Op, e.Samples, e.Features, e.Err)
}

func (e *DecompositionError) Unwrap() error { return e.Err }
