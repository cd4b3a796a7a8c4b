// Package colour provides palette extraction and colour harmony analysis.
package colour

import "errors"

// Extraction error conditions. All are recoverable by the caller; the
// engine never terminates the process. Cooperative cancellation is
// reported as the context's own error (context.Canceled or
// context.DeadlineExceeded), not as a condition defined here.
var (
	// ErrInvalidConfig indicates an ExtractorConfig that fails validation,
	// such as a non-positive colour count or tolerance.
	ErrInvalidConfig = errors.New("invalid extractor configuration")

	// ErrInsufficientSamples indicates that fewer distinct colours were
	// available than requested. The strategy still returns a palette
	// containing every distinct colour with its population weight; the
	// error accompanies the reduced result so callers can decide whether
	// to accept it.
	ErrInsufficientSamples = errors.New("fewer distinct colours than requested")

	// ErrNonConvergence indicates that the iteration cap was reached
	// before the convergence tolerance was satisfied. The best result so
	// far is still returned alongside the error.
	ErrNonConvergence = errors.New("iteration limit reached before convergence")

	// ErrNumericInstability indicates a numerical collapse that could not
	// be regularised away, such as a singular mixture covariance.
	ErrNumericInstability = errors.New("numeric instability")
)
