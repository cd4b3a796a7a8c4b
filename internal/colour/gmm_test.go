// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestGaussianMixtureExtract(t *testing.T) {
	// Two well-separated blobs with internal variation.
	samples := testSamples(t, map[RGB]int{
		{220, 30, 30}: 40,
		{210, 40, 35}: 30,
		{200, 25, 20}: 30,
		{30, 30, 220}: 40,
		{40, 35, 210}: 30,
		{25, 20, 200}: 30,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 2
	cfg.Tolerance = 1e-3
	cfg.MaxIterations = 200

	var extractor GaussianMixtureExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Extract() returned %d colours, want 2", len(out))
	}
	checkWeights(t, out)

	// One component per blob: one mean must be reddish, the other bluish.
	reddish, bluish := false, false
	for _, wc := range out {
		if wc.Lab.A > 20 {
			reddish = true
		}
		if wc.Lab.B < -20 {
			bluish = true
		}
	}
	if !reddish || !bluish {
		t.Errorf("components did not separate the blobs: %+v", out)
	}
}

func TestGaussianMixtureDeterminism(t *testing.T) {
	samples := scatteredSamples(300)

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 4
	cfg.Seed = 7
	cfg.MaxIterations = 100
	cfg.Tolerance = 1e-3

	var extractor GaussianMixtureExtractor
	first, err1 := extractor.Extract(context.Background(), samples, cfg)
	second, err2 := extractor.Extract(context.Background(), samples, cfg)

	if (err1 == nil) != (err2 == nil) {
		t.Fatalf("errors differ between runs: %v vs %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different mixture results")
	}
}

func TestGaussianMixtureSingleComponent(t *testing.T) {
	samples := testSamples(t, map[RGB]int{
		{100, 150, 200}: 40,
		{110, 140, 190}: 30,
		{90, 160, 210}:  30,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 1
	cfg.MaxIterations = 100
	cfg.Tolerance = 1e-6

	var extractor GaussianMixtureExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Extract() returned %d colours, want 1", len(out))
	}
	if math.Abs(out[0].Weight-1.0) > 1e-9 {
		t.Errorf("mixing proportion = %g, want 1.0", out[0].Weight)
	}

	// A single component settles on the weighted sample mean.
	mean := averageLab(samples)
	if out[0].Lab.Distance(mean) > 0.5 {
		t.Errorf("component mean %+v too far from sample mean %+v", out[0].Lab, mean)
	}
}

func TestGaussianMixtureInsufficientDistinctColours(t *testing.T) {
	samples := testSamples(t, map[RGB]int{
		{255, 0, 0}: 70,
		{0, 255, 0}: 30,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 4

	var extractor GaussianMixtureExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("Extract() error = %v, want ErrInsufficientSamples", err)
	}
	if len(out) != 2 {
		t.Fatalf("fallback returned %d colours, want 2", len(out))
	}
	checkWeights(t, out)
}

func TestGaussianMixtureNonConvergence(t *testing.T) {
	samples := scatteredSamples(200)

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 3
	cfg.MaxIterations = 1
	cfg.Tolerance = 1e-12

	var extractor GaussianMixtureExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("Extract() error = %v, want ErrNonConvergence", err)
	}
	if len(out) == 0 {
		t.Fatal("non-convergence must still return the best mixture so far")
	}
	checkWeights(t, out)
}

func TestGaussianMixtureCancellation(t *testing.T) {
	samples := scatteredSamples(150)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmGaussianMixture
	cfg.ColourCount = 3

	var extractor GaussianMixtureExtractor
	out, err := extractor.Extract(ctx, samples, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract() error = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Error("cancelled extraction surfaced a partial result")
	}
}

func TestMat3Inverse(t *testing.T) {
	m := mat3{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	inv, ok := m.inverse()
	if !ok {
		t.Fatal("inverse() failed on a positive definite matrix")
	}

	// m * inv must be the identity.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			got := 0.0
			for k := 0; k < 3; k++ {
				got += m[r][k] * inv[k][c]
			}
			want := 0.0
			if r == c {
				want = 1.0
			}
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("(m * inv)[%d][%d] = %g, want %g", r, c, got, want)
			}
		}
	}

	singular := mat3{
		{1, 2, 3},
		{2, 4, 6},
		{0, 0, 1},
	}
	if _, ok := singular.inverse(); ok {
		t.Error("inverse() succeeded on a singular matrix")
	}
}
