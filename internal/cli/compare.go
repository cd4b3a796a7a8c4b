// Package cli provides the command-line interface for Palettist.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/palettist/palettist/internal/colour"
	"github.com/palettist/palettist/internal/image"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Compare command flags
	compareColours       int
	compareSeed          int64
	compareMaxIterations int
	compareTolerance     float64
	compareMaxSamples    int
	compareShowPreview   bool
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <image>",
	Short: "Compare extraction strategies on one image",
	Long: `Run every extraction strategy over the same pixel samples and tabulate
the resulting palettes and their harmony reports side by side.

The strategies run concurrently; each sees an identical sample set, so
differences in the output come from the strategies alone.

Examples:
  # Compare all strategies on an image
  palettist compare wallpaper.jpg

  # Compare with 5 colours and terminal previews
  palettist compare --colours 5 --preview wallpaper.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	// Define flags for the compare command
	compareCmd.Flags().IntVarP(&compareColours, "colours", "c", colour.DefaultColourCount,
		fmt.Sprintf("number of colours to extract (1-%d)", colour.MaxColourCount))
	compareCmd.Flags().Int64Var(&compareSeed, "seed", colour.DefaultSeed, "random seed for centroid initialisation")
	compareCmd.Flags().IntVar(&compareMaxIterations, "max-iterations", colour.DefaultMaxIterations, "iteration cap for iterative strategies")
	compareCmd.Flags().Float64Var(&compareTolerance, "tolerance", colour.DefaultTolerance, "convergence tolerance")
	compareCmd.Flags().IntVar(&compareMaxSamples, "max-samples", image.DefaultMaxSamples, "maximum number of pixels sampled from the image")
	compareCmd.Flags().BoolVar(&compareShowPreview, "preview", false, "show colour previews in terminal")
}

// comparison holds one strategy's palette and harmony report.
type comparison struct {
	algorithm colour.Algorithm
	palette   *colour.Palette
	report    colour.HarmonyReport
	note      string
}

// runCompare executes the compare command.
func runCompare(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	if err := image.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	log := newLogger()
	ctx := cmd.Context()

	if compareShowPreview && !colour.SupportsANSIColours() {
		log.Warn("terminal does not support ANSI colours, previews disabled")
		compareShowPreview = false
	}

	loader := image.NewSmartLoader()
	img, err := loader.Load(ctx, imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	samples := image.SamplePixels(img, compareMaxSamples)
	if len(samples) == 0 {
		return fmt.Errorf("image %s has no opaque pixels to sample", imagePath)
	}
	log.Debug("image sampled", "samples", len(samples))

	engine := colour.NewEngine(colour.WithLogger(log))
	algorithms := colour.ValidAlgorithms()
	results := make([]comparison, len(algorithms))

	// One goroutine per strategy over the shared sample set. The engine
	// is reentrant and the samples are read-only, so no locking is
	// needed; a non-recoverable failure cancels the siblings.
	g, gctx := errgroup.WithContext(ctx)
	for i, alg := range algorithms {
		i, alg := i, alg
		g.Go(func() error {
			cfg := colour.ExtractorConfig{
				Algorithm:     alg,
				ColourCount:   compareColours,
				Seed:          compareSeed,
				MaxIterations: compareMaxIterations,
				Tolerance:     compareTolerance,
			}
			palette, err := engine.BuildPalette(gctx, samples, cfg)
			if err != nil && !recoverable(err) {
				return fmt.Errorf("%s: %w", alg, err)
			}

			results[i] = comparison{
				algorithm: alg,
				palette:   palette,
				report:    engine.AnalyzeHarmony(palette),
			}
			if err != nil {
				results[i].note = comparisonNote(err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}

	fmt.Print(renderComparison(results, compareShowPreview))
	return nil
}

// comparisonNote renders a recoverable extraction error as a short table
// annotation.
func comparisonNote(err error) string {
	switch {
	case errors.Is(err, colour.ErrInsufficientSamples):
		return "fewer distinct colours than requested"
	case errors.Is(err, colour.ErrNonConvergence):
		return "did not converge"
	default:
		return err.Error()
	}
}

// renderComparison tabulates the per-strategy reports, then lists each
// strategy's palette.
func renderComparison(results []comparison, showPreview bool) string {
	var b strings.Builder

	table := NewTable([]string{"Algorithm", "Colours", "Archetype", "Confidence", "Saturation", "Contrast", "Notes"})
	for _, r := range results {
		table.AddRow([]string{
			string(r.algorithm),
			fmt.Sprintf("%d", r.palette.Len()),
			string(r.report.Archetype),
			fmt.Sprintf("%.3f", r.report.Confidence),
			fmt.Sprintf("%.3f", r.report.MeanSaturation),
			fmt.Sprintf("%.3f", r.report.ContrastSpread),
			r.note,
		})
	}
	b.WriteString(table.Render())
	b.WriteString("\n")

	for _, r := range results {
		fmt.Fprintf(&b, "%s:\n", r.algorithm)
		for _, c := range r.palette.Colours() {
			if showPreview {
				fmt.Fprintf(&b, "  %s  %.3f\n", colour.FormatColourWithPreview(c.RGB, 8), c.Weight)
			} else {
				fmt.Fprintf(&b, "  %s  %.3f\n", c.RGB.Hex(), c.Weight)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
