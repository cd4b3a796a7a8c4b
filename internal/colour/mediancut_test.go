// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestMedianCutExtract(t *testing.T) {
	// Dark reds vs light blues: the split at the median separates the two
	// populations because they sit at opposite ends of the L channel.
	samples := testSamples(t, map[RGB]int{
		{120, 10, 10}:   25,
		{140, 20, 15}:   25,
		{200, 210, 255}: 25,
		{180, 200, 250}: 25,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmMedianCut
	cfg.ColourCount = 2

	var extractor MedianCutExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Extract() returned %d colours, want 2", len(out))
	}
	checkWeights(t, out)

	// Equal populations, and the bucket means keep the red/blue identity.
	reddish, bluish := false, false
	for _, wc := range out {
		if math.Abs(wc.Weight-0.5) > 1e-9 {
			t.Errorf("bucket weight = %g, want 0.5", wc.Weight)
		}
		if wc.Lab.A > 15 {
			reddish = true
		}
		if wc.Lab.B < -5 {
			bluish = true
		}
	}
	if !reddish || !bluish {
		t.Errorf("bucket means did not separate the populations: %+v", out)
	}
}

func TestMedianCutDeterminism(t *testing.T) {
	// Median cut takes no random source at all; two runs must agree even
	// with different seeds configured.
	samples := scatteredSamples(250)

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmMedianCut
	cfg.ColourCount = 6

	var extractor MedianCutExtractor
	first, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("first Extract() error: %v", err)
	}

	cfg.Seed = 999
	second, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("second Extract() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("median cut results differ across runs")
	}
}

func TestMedianCutSingleColourRequest(t *testing.T) {
	samples := testSamples(t, map[RGB]int{
		{10, 200, 10}: 50,
		{200, 10, 10}: 50,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmMedianCut
	cfg.ColourCount = 1

	var extractor MedianCutExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Extract() returned %d colours, want 1", len(out))
	}
	if math.Abs(out[0].Weight-1.0) > 1e-9 {
		t.Errorf("weight = %g, want 1.0", out[0].Weight)
	}

	mean := averageLab(samples)
	if out[0].Lab.Distance(mean) > 1e-6 {
		t.Errorf("single bucket mean %+v is not the sample mean %+v", out[0].Lab, mean)
	}
}

func TestMedianCutInsufficientDistinctColours(t *testing.T) {
	samples := testSamples(t, map[RGB]int{
		{0, 0, 0}:       80,
		{255, 255, 255}: 20,
	})

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmMedianCut
	cfg.ColourCount = 5

	var extractor MedianCutExtractor
	out, err := extractor.Extract(context.Background(), samples, cfg)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("Extract() error = %v, want ErrInsufficientSamples", err)
	}
	if len(out) != 2 {
		t.Fatalf("fallback returned %d colours, want 2", len(out))
	}
	checkWeights(t, out)
}

func TestMedianCutCancellation(t *testing.T) {
	samples := scatteredSamples(100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultExtractorConfig()
	cfg.Algorithm = AlgorithmMedianCut
	cfg.ColourCount = 4

	var extractor MedianCutExtractor
	out, err := extractor.Extract(ctx, samples, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract() error = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Error("cancelled extraction surfaced a partial result")
	}
}

func TestMedianCutChannelPriority(t *testing.T) {
	// Identical ranges on L and a: the split must happen along L (fixed
	// channel priority), separating dark from light.
	samples := []Lab{
		{L: 20, A: -10, B: 0},
		{L: 20, A: -10, B: 0},
		{L: 60, A: 30, B: 0},
		{L: 60, A: 30, B: 0},
	}
	b := &bucket{samples: samples}
	b.analyse()

	if b.channel != channelL {
		t.Errorf("widest channel = %v, want L on a tie", b.channel)
	}
	if b.span != 40 {
		t.Errorf("span = %g, want 40", b.span)
	}
}
