// Package cli provides the command-line interface for Palettist.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/palettist/palettist/internal/colour"
	"github.com/palettist/palettist/internal/image"
	"github.com/spf13/cobra"
)

var (
	// Extract command flags
	extractColours       int
	extractAlgorithm     string
	extractSeed          int64
	extractMaxIterations int
	extractTolerance     float64
	extractMaxSamples    int
	extractFormat        string
	extractOutput        string
	extractShowPreview   bool
	extractHarmony       bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract a colour palette from an image",
	Long: `Extract a colour palette from an image using various algorithms.

The extract command subsamples the image, clusters the pixels in CIELAB
space and prints the resulting palette. You can control the number of
colours, the extraction algorithm, the random seed and the output format,
and optionally score the palette against colour-harmony archetypes.

Supported image formats: JPEG, PNG, GIF, WebP. The image argument may be
a local path or an HTTP(S) URL.

Examples:
  # Extract 8 colours (default) from an image
  palettist extract wallpaper.jpg

  # Extract 5 colours with terminal previews
  palettist extract --preview --colours 5 wallpaper.png

  # Extract with the Gaussian mixture strategy, fixed seed
  palettist extract -a gmm --seed 7 wallpaper.jpg

  # Extract colours and the harmony report as JSON
  palettist extract --harmony --format json wallpaper.jpg

  # Extract colours and save to a file
  palettist extract --output palette.txt wallpaper.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	// Define flags for the extract command
	extractCmd.Flags().IntVarP(&extractColours, "colours", "c", colour.DefaultColourCount,
		fmt.Sprintf("number of colours to extract (1-%d)", colour.MaxColourCount))
	extractCmd.Flags().StringVarP(&extractAlgorithm, "algorithm", "a", string(colour.AlgorithmKMeans),
		fmt.Sprintf("extraction algorithm %v", colour.ValidAlgorithms()))
	extractCmd.Flags().Int64Var(&extractSeed, "seed", colour.DefaultSeed, "random seed for centroid initialisation")
	extractCmd.Flags().IntVar(&extractMaxIterations, "max-iterations", colour.DefaultMaxIterations, "iteration cap for iterative strategies")
	extractCmd.Flags().Float64Var(&extractTolerance, "tolerance", colour.DefaultTolerance, "convergence tolerance")
	extractCmd.Flags().IntVar(&extractMaxSamples, "max-samples", image.DefaultMaxSamples, "maximum number of pixels sampled from the image")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "hex", "output format (hex, rgb, json)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().BoolVar(&extractShowPreview, "preview", false, "show colour previews in terminal")
	extractCmd.Flags().BoolVar(&extractHarmony, "harmony", false, "analyse the palette against colour-harmony archetypes")
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	if err := image.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	config := colour.ExtractorConfig{
		Algorithm:     colour.Algorithm(extractAlgorithm),
		ColourCount:   extractColours,
		Seed:          extractSeed,
		MaxIterations: extractMaxIterations,
		Tolerance:     extractTolerance,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger()
	ctx := cmd.Context()

	if extractShowPreview && !colour.SupportsANSIColours() {
		log.Warn("terminal does not support ANSI colours, previews disabled")
		extractShowPreview = false
	}

	log.Debug("loading image", "path", imagePath)
	loader := image.NewSmartLoader()
	img, err := loader.Load(ctx, imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	samples := image.SamplePixels(img, extractMaxSamples)
	if len(samples) == 0 {
		return fmt.Errorf("image %s has no opaque pixels to sample", imagePath)
	}
	log.Debug("image sampled", "samples", len(samples))

	engine := colour.NewEngine(colour.WithLogger(log))
	palette, err := engine.BuildPalette(ctx, samples, config)
	if err != nil && !recoverable(err) {
		return fmt.Errorf("failed to extract colours: %w", err)
	}

	var report *colour.HarmonyReport
	if extractHarmony {
		r := engine.AnalyzeHarmony(palette)
		report = &r
	}

	output, err := formatPalette(palette, report, extractFormat, extractShowPreview)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return writeOutput(output, extractOutput)
}

// recoverable reports whether an extraction error still comes with a
// usable palette.
func recoverable(err error) bool {
	return errors.Is(err, colour.ErrInsufficientSamples) || errors.Is(err, colour.ErrNonConvergence)
}

// writeOutput writes the formatted output to a file, or stdout when no
// path is given.
func writeOutput(output, path string) error {
	if path == "" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// extractionResult is the JSON shape for --format json output.
type extractionResult struct {
	Palette colour.PaletteJSON    `json:"palette"`
	Harmony *colour.HarmonyReport `json:"harmony,omitempty"`
}

// marshalExtraction renders the palette, and optionally its harmony
// report, as indented JSON. Without a report the palette document is
// emitted bare, matching ToJSON.
func marshalExtraction(palette *colour.Palette, report *colour.HarmonyReport) ([]byte, error) {
	if report == nil {
		return palette.ToJSON()
	}
	return json.MarshalIndent(extractionResult{
		Palette: palette.JSON(),
		Harmony: report,
	}, "", "  ")
}

// formatPalette formats the palette, and optionally its harmony report,
// according to the specified format.
func formatPalette(palette *colour.Palette, report *colour.HarmonyReport, format string, showPreview bool) (string, error) {
	switch format {
	case "hex", "rgb":
		var b strings.Builder
		for _, c := range palette.Colours() {
			line := c.RGB.Hex()
			if format == "rgb" {
				line = c.RGB.String()
			}
			if showPreview {
				b.WriteString(colour.FormatColourWithPreview(c.RGB, 8))
				if format == "rgb" {
					b.WriteString("  " + c.RGB.String())
				}
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		if report != nil {
			b.WriteString("\n")
			b.WriteString(formatHarmonyReport(*report))
		}
		return b.String(), nil
	case "json":
		jsonBytes, err := marshalExtraction(palette, report)
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", format)
	}
}

// formatHarmonyReport renders the harmony report as text: the winning
// archetype followed by a table of every template score.
func formatHarmonyReport(report colour.HarmonyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Harmony: %s (confidence %.2f)\n\n", report.Archetype, report.Confidence)

	table := NewTable([]string{"Archetype", "Score"})
	for _, row := range []struct {
		name  string
		score float64
	}{
		{string(colour.ArchetypeComplementary), report.Scores.Complementary},
		{string(colour.ArchetypeSplitComplementary), report.Scores.SplitComplementary},
		{string(colour.ArchetypeTriadic), report.Scores.Triadic},
		{string(colour.ArchetypeSquare), report.Scores.Square},
		{string(colour.ArchetypeAnalogous), report.Scores.Analogous},
		{string(colour.ArchetypeMonochromatic), report.Scores.Monochromatic},
	} {
		table.AddRow([]string{row.name, fmt.Sprintf("%.3f", row.score)})
	}
	b.WriteString(table.Render())

	fmt.Fprintf(&b, "\nMean saturation: %.3f\n", report.MeanSaturation)
	fmt.Fprintf(&b, "Contrast spread: %.3f\n", report.ContrastSpread)
	return b.String()
}
