// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// KMeansExtractor implements palette extraction using k-means partitioning
// in Lab space. The zero value is ready to use; all tunables come from the
// ExtractorConfig passed to Extract.
type KMeansExtractor struct{}

// Extract reduces the samples to cfg.ColourCount representative colours.
// Each output weight is the fraction of samples assigned to that centroid.
//
// When fewer distinct colours exist than requested, the distinct colours
// are returned with their population weights together with a wrapped
// ErrInsufficientSamples. When the iteration cap is reached before the
// centroids settle, the best result so far is returned together with a
// wrapped ErrNonConvergence.
func (e *KMeansExtractor) Extract(ctx context.Context, samples []Lab, cfg ExtractorConfig) ([]WeightedColour, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInsufficientSamples)
	}

	k := cfg.ColourCount
	distinct := countDistinct(samples)
	if k >= distinct {
		out := distinctColours(samples)
		if k > distinct {
			return out, fmt.Errorf("%w: requested %d, have %d distinct", ErrInsufficientSamples, k, distinct)
		}
		return out, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	centroids := seedCentroids(rng, samples, k)
	assignments := make([]int, len(samples))

	converged := false
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		// Cooperative cancellation, checked between iterations only.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := 0
		for i, s := range samples {
			nearest := nearestCentroid(s, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if iter > 0 && changed == 0 {
			converged = true
			break
		}

		next := recomputeCentroids(samples, assignments, centroids, k)

		movement := 0.0
		for i := range centroids {
			if d := centroids[i].Distance(next[i]); d > movement {
				movement = d
			}
		}
		centroids = next

		if movement < cfg.Tolerance {
			converged = true
			break
		}
	}

	// Final assignment pass so the weights reflect the final centroids.
	weights := make([]float64, k)
	for i, s := range samples {
		assignments[i] = nearestCentroid(s, centroids)
		weights[assignments[i]]++
	}

	total := float64(len(samples))
	out := make([]WeightedColour, 0, k)
	for i, c := range centroids {
		if weights[i] == 0 {
			continue
		}
		col, _ := ColourFromLab(ClampLab(c))
		out = append(out, WeightedColour{Colour: col, Weight: weights[i] / total})
	}

	if !converged {
		return out, fmt.Errorf("%w: after %d iterations", ErrNonConvergence, cfg.MaxIterations)
	}
	return out, nil
}

// seedCentroids initialises k centroids with the k-means++ strategy:
// the first centroid is a uniform pick, each further centroid is chosen
// with probability proportional to its squared distance from the nearest
// centroid chosen so far. All randomness comes from rng, so a fixed seed
// yields a fixed initialisation.
func seedCentroids(rng *rand.Rand, samples []Lab, k int) []Lab {
	centroids := make([]Lab, 0, k)
	centroids = append(centroids, samples[rng.Intn(len(samples))])

	distances := make([]float64, len(samples))
	for len(centroids) < k {
		total := 0.0
		for i, s := range samples {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := s.Distance(c); d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			// Every remaining sample coincides with a centroid. The
			// distinct-colour guard keeps this unreachable in practice,
			// but fall back to a uniform pick rather than loop forever.
			centroids = append(centroids, samples[rng.Intn(len(samples))])
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				centroids = append(centroids, samples[i])
				break
			}
		}
	}

	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a sample.
func nearestCentroid(s Lab, centroids []Lab) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := s.Distance(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recomputeCentroids recalculates centroid positions as the mean of their
// assigned samples. A centroid that lost all of its samples is reseeded
// from the sample farthest from every remaining centroid.
func recomputeCentroids(samples []Lab, assignments []int, previous []Lab, k int) []Lab {
	sums := make([]Lab, k)
	counts := make([]int, k)
	for i, s := range samples {
		c := assignments[i]
		sums[c].L += s.L
		sums[c].A += s.A
		sums[c].B += s.B
		counts[c]++
	}

	centroids := make([]Lab, k)
	for i := range centroids {
		if counts[i] > 0 {
			n := float64(counts[i])
			centroids[i] = Lab{L: sums[i].L / n, A: sums[i].A / n, B: sums[i].B / n}
		} else {
			centroids[i] = farthestSample(samples, previous)
		}
	}
	return centroids
}

// farthestSample returns the sample with the greatest distance to its
// nearest centroid. Deterministic, so empty-cluster reseeding does not
// disturb reproducibility.
func farthestSample(samples []Lab, centroids []Lab) Lab {
	best := samples[0]
	bestDist := -1.0
	for _, s := range samples {
		minDist := math.MaxFloat64
		for _, c := range centroids {
			if d := s.Distance(c); d < minDist {
				minDist = d
			}
		}
		if minDist > bestDist {
			bestDist = minDist
			best = s
		}
	}
	return best
}
