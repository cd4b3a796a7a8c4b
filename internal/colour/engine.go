// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
)

// Engine is the single entry point for palette extraction and harmony
// analysis. It is stateless and reentrant: every invocation reads only
// its inputs and produces a fresh result, so one Engine may serve
// concurrent callers without locking. Extraction is a blocking call;
// callers that need it off an interactive path dispatch it themselves and
// cancel through the context.
type Engine struct {
	log hclog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for progress reporting. Without it the
// engine is silent.
func WithLogger(log hclog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildPalette reduces the RGB pixel samples to an ordered palette using
// the configured extraction strategy.
//
// Recoverable conditions from the strategy are propagated unchanged.
// Two of them accompany a usable palette: ErrInsufficientSamples (the
// palette holds every distinct colour, fewer than requested) and
// ErrNonConvergence (the palette is the best result within the iteration
// cap). All other errors come with a nil palette. A cancelled context
// aborts between iterations and returns ctx.Err(); a partial palette is
// never surfaced.
func (e *Engine) BuildPalette(ctx context.Context, samples []RGB, cfg ExtractorConfig) (*Palette, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extractor, err := NewExtractor(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	e.log.Debug("extracting palette",
		"algorithm", cfg.Algorithm,
		"colours", cfg.ColourCount,
		"samples", len(samples),
		"seed", cfg.Seed)

	labs := make([]Lab, len(samples))
	for i, rgb := range samples {
		labs[i] = RGBToLab(rgb)
	}

	weighted, err := extractor.Extract(ctx, labs, cfg)
	if err != nil && weighted == nil {
		return nil, err
	}

	palette := NewPalette(weighted)

	switch {
	case errors.Is(err, ErrInsufficientSamples):
		e.log.Warn("fewer distinct colours than requested",
			"requested", cfg.ColourCount, "extracted", palette.Len())
	case errors.Is(err, ErrNonConvergence):
		e.log.Warn("extraction did not converge", "max_iterations", cfg.MaxIterations)
	case err == nil:
		e.log.Debug("extraction complete", "colours", palette.Len())
	}

	return palette, err
}

// AnalyzeHarmony computes the harmony report for a palette.
func (e *Engine) AnalyzeHarmony(p *Palette) HarmonyReport {
	report := AnalyzeHarmony(p)
	e.log.Debug("harmony analysed",
		"archetype", report.Archetype,
		"confidence", report.Confidence)
	return report
}
