// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"fmt"
)

// Extractor defines the interface for palette extraction strategies.
// Implementations are stateless: every call reads only its inputs, so a
// single Extractor may be used concurrently on independent sample sets.
type Extractor interface {
	// Extract reduces the Lab-space samples to at most cfg.ColourCount
	// representative colours with population weights. The context is
	// checked between iterations; a cancelled context aborts the call
	// with ctx.Err() and no partial result.
	Extract(ctx context.Context, samples []Lab, cfg ExtractorConfig) ([]WeightedColour, error)
}

// Algorithm represents the palette extraction algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses k-means partitioning in Lab space.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmGaussianMixture fits a mixture of Gaussians over the
	// Lab samples via expectation-maximisation.
	AlgorithmGaussianMixture Algorithm = "gmm"

	// AlgorithmMedianCut recursively splits sample buckets at the median
	// of their most-varying channel.
	AlgorithmMedianCut Algorithm = "mediancut"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmKMeans,
		AlgorithmGaussianMixture,
		AlgorithmMedianCut,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewExtractor creates a new Extractor for the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmKMeans:
		return &KMeansExtractor{}, nil
	case AlgorithmGaussianMixture:
		return &GaussianMixtureExtractor{}, nil
	case AlgorithmMedianCut:
		return &MedianCutExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q (valid algorithms: %v)",
			ErrInvalidConfig, alg, ValidAlgorithms())
	}
}

// Default configuration values.
const (
	// DefaultColourCount is the palette size used when none is given.
	DefaultColourCount = 8

	// MaxColourCount bounds the palette size a single extraction may
	// request.
	MaxColourCount = 20

	// DefaultSeed seeds the pseudo-random source when the caller does not
	// provide one, keeping repeated extractions reproducible.
	DefaultSeed = 1

	// DefaultMaxIterations caps the iterative strategies.
	DefaultMaxIterations = 50

	// DefaultTolerance is the convergence tolerance: maximum centroid
	// movement for k-means, log-likelihood improvement for the Gaussian
	// mixture.
	DefaultTolerance = 0.01
)

// ExtractorConfig holds configuration for one palette extraction. It is a
// plain value constructed fresh per call; there are no process-wide
// defaults beyond the constants above.
type ExtractorConfig struct {
	// Algorithm selects the extraction strategy.
	Algorithm Algorithm

	// ColourCount is the requested palette size K.
	ColourCount int

	// Seed seeds the deterministic pseudo-random source used for
	// centroid initialisation.
	Seed int64

	// MaxIterations caps the iterative strategies. Reaching the cap
	// without converging yields ErrNonConvergence alongside the
	// best-so-far result.
	MaxIterations int

	// Tolerance is the convergence tolerance. Must be positive.
	Tolerance float64
}

// DefaultExtractorConfig returns the default extraction configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:     AlgorithmKMeans,
		ColourCount:   DefaultColourCount,
		Seed:          DefaultSeed,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Validate validates the extraction configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm %q (valid algorithms: %v)",
			ErrInvalidConfig, c.Algorithm, ValidAlgorithms())
	}
	if c.ColourCount < 1 {
		return fmt.Errorf("%w: colour count must be at least 1, got %d", ErrInvalidConfig, c.ColourCount)
	}
	if c.ColourCount > MaxColourCount {
		return fmt.Errorf("%w: colour count too large: %d (maximum: %d)", ErrInvalidConfig, c.ColourCount, MaxColourCount)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

// distinctColours aggregates the samples by their quantised Lab identity.
// It returns the distinct colours in first-seen order together with their
// population weights. Every strategy falls back to this result when the
// requested colour count meets or exceeds the number of distinct samples.
func distinctColours(samples []Lab) []WeightedColour {
	counts := make(map[labKey]int)
	order := make([]Lab, 0)
	for _, s := range samples {
		key := quantiseLab(s)
		if counts[key] == 0 {
			order = append(order, s)
		}
		counts[key]++
	}

	total := float64(len(samples))
	out := make([]WeightedColour, 0, len(order))
	for _, lab := range order {
		c, _ := ColourFromLab(lab)
		out = append(out, WeightedColour{
			Colour: c,
			Weight: float64(counts[quantiseLab(lab)]) / total,
		})
	}
	return out
}

// countDistinct reports the number of distinct quantised Lab values.
func countDistinct(samples []Lab) int {
	seen := make(map[labKey]struct{}, len(samples))
	for _, s := range samples {
		seen[quantiseLab(s)] = struct{}{}
	}
	return len(seen)
}
