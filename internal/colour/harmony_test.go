package colour

import (
	"math"
	"reflect"
	"testing"
)

// hueEntry builds a palette entry directly from hue geometry so template
// scores are exact, without the hue noise of an 8-bit RGB round trip.
func hueEntry(hue, sat, light, weight float64) WeightedColour {
	return WeightedColour{
		Colour: Colour{
			HSL: HSL{H: hue, S: sat, L: light},
			Lab: Lab{L: light * 100},
		},
		Weight: weight,
	}
}

func huePalette(hues []float64) *Palette {
	entries := make([]WeightedColour, len(hues))
	for i, h := range hues {
		entries[i] = hueEntry(h, 0.8, 0.5, 1.0/float64(len(hues)))
	}
	return NewPalette(entries)
}

func TestAnalyzeHarmonyComplementary(t *testing.T) {
	report := AnalyzeHarmony(huePalette([]float64{30, 210}))

	if report.Archetype != ArchetypeComplementary {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeComplementary)
	}
	if math.Abs(report.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %g, want 1", report.Confidence)
	}
	if math.Abs(report.Scores.Complementary-1.0) > 1e-9 {
		t.Errorf("complementary score = %g, want 1", report.Scores.Complementary)
	}
	if report.Scores.Monochromatic > 0.1 {
		t.Errorf("monochromatic score = %g for opposed hues", report.Scores.Monochromatic)
	}
}

func TestAnalyzeHarmonyTriadic(t *testing.T) {
	report := AnalyzeHarmony(huePalette([]float64{0, 120, 240}))

	if report.Archetype != ArchetypeTriadic {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeTriadic)
	}
	if math.Abs(report.Scores.Triadic-1.0) > 1e-9 {
		t.Errorf("triadic score = %g, want 1", report.Scores.Triadic)
	}
	// A two-cluster reading of a perfect triad lumps two hues together;
	// the within-cluster arc penalty keeps it from scoring.
	if report.Scores.Complementary > 0.1 {
		t.Errorf("complementary score = %g for a triad", report.Scores.Complementary)
	}
}

func TestAnalyzeHarmonySquare(t *testing.T) {
	report := AnalyzeHarmony(huePalette([]float64{0, 90, 180, 270}))

	if report.Archetype != ArchetypeSquare {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeSquare)
	}
	if math.Abs(report.Scores.Square-1.0) > 1e-9 {
		t.Errorf("square score = %g, want 1", report.Scores.Square)
	}
}

func TestAnalyzeHarmonySplitComplementary(t *testing.T) {
	report := AnalyzeHarmony(huePalette([]float64{0, 150, 210}))

	if report.Archetype != ArchetypeSplitComplementary {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeSplitComplementary)
	}
	if math.Abs(report.Scores.SplitComplementary-1.0) > 1e-9 {
		t.Errorf("split-complementary score = %g, want 1", report.Scores.SplitComplementary)
	}
	// The same gaps read as a triad are 60 degrees off template.
	if report.Scores.Triadic > 0.1 {
		t.Errorf("triadic score = %g for a split-complementary triple", report.Scores.Triadic)
	}
}

func TestAnalyzeHarmonyMonochromatic(t *testing.T) {
	// Tight hue arc, constant saturation, lightness doing the work.
	entries := []WeightedColour{
		hueEntry(40, 0.6, 0.2, 0.2),
		hueEntry(43, 0.6, 0.35, 0.2),
		hueEntry(47, 0.6, 0.5, 0.2),
		hueEntry(51, 0.6, 0.65, 0.2),
		hueEntry(55, 0.6, 0.8, 0.2),
	}
	report := AnalyzeHarmony(NewPalette(entries))

	if report.Archetype != ArchetypeMonochromatic {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeMonochromatic)
	}
	if report.Scores.Monochromatic < ConfidenceThreshold {
		t.Errorf("monochromatic score = %g, want >= %g", report.Scores.Monochromatic, ConfidenceThreshold)
	}
	if report.Scores.Analogous >= report.Scores.Monochromatic {
		t.Errorf("analogous score %g should trail monochromatic %g here",
			report.Scores.Analogous, report.Scores.Monochromatic)
	}
	if math.Abs(report.ContrastSpread-0.6) > 1e-9 {
		t.Errorf("contrast spread = %g, want 0.6", report.ContrastSpread)
	}
}

func TestAnalyzeHarmonyAnalogous(t *testing.T) {
	// Same tight hue arc, but saturation varies widely: the saturation
	// penalty zeroes the monochromatic score and analogous takes over.
	entries := []WeightedColour{
		hueEntry(40, 0.2, 0.5, 0.2),
		hueEntry(43, 0.4, 0.5, 0.2),
		hueEntry(47, 0.6, 0.5, 0.2),
		hueEntry(51, 0.75, 0.5, 0.2),
		hueEntry(55, 0.9, 0.5, 0.2),
	}
	report := AnalyzeHarmony(NewPalette(entries))

	if report.Archetype != ArchetypeAnalogous {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeAnalogous)
	}
	if report.Scores.Monochromatic != 0 {
		t.Errorf("monochromatic score = %g, want 0 under saturation spread", report.Scores.Monochromatic)
	}
	if math.Abs(report.Scores.Analogous-0.875) > 1e-9 {
		t.Errorf("analogous score = %g, want 0.875 for a 15 degree arc", report.Scores.Analogous)
	}
}

func TestAnalyzeHarmonyNoneBelowThreshold(t *testing.T) {
	report := AnalyzeHarmony(huePalette([]float64{0, 70, 160, 260}))

	if report.Archetype != ArchetypeNone {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeNone)
	}
	if report.Confidence >= ConfidenceThreshold {
		t.Errorf("confidence = %g, want below %g", report.Confidence, ConfidenceThreshold)
	}
	// The best template score is still surfaced for ranking.
	best := math.Max(report.Scores.Square,
		math.Max(report.Scores.Complementary,
			math.Max(report.Scores.Triadic,
				math.Max(report.Scores.SplitComplementary,
					math.Max(report.Scores.Analogous, report.Scores.Monochromatic)))))
	if math.Abs(report.Confidence-best) > 1e-9 {
		t.Errorf("confidence = %g, want best score %g", report.Confidence, best)
	}
}

func TestAnalyzeHarmonyEmptyPalette(t *testing.T) {
	report := AnalyzeHarmony(NewPalette(nil))

	if report.Archetype != ArchetypeNone {
		t.Errorf("archetype = %q, want %q", report.Archetype, ArchetypeNone)
	}
	if report.Confidence != 0 {
		t.Errorf("confidence = %g, want 0", report.Confidence)
	}
	if len(report.HuePairs) != 0 {
		t.Errorf("hue pairs = %d, want none", len(report.HuePairs))
	}
}

func TestAnalyzeHarmonySingleColour(t *testing.T) {
	report := AnalyzeHarmony(NewPalette([]WeightedColour{hueEntry(200, 0.7, 0.5, 1.0)}))

	if len(report.HuePairs) != 0 {
		t.Errorf("hue pairs = %d, want none for a single colour", len(report.HuePairs))
	}
	if report.Scores.Analogous != 0 {
		t.Errorf("analogous score = %g, want 0 for a single colour", report.Scores.Analogous)
	}
	if report.ContrastSpread != 0 {
		t.Errorf("contrast spread = %g, want 0", report.ContrastSpread)
	}
}

func TestAnalyzeHarmonyIdempotent(t *testing.T) {
	p := huePalette([]float64{15, 95, 205, 310})

	first := AnalyzeHarmony(p)
	second := AnalyzeHarmony(p)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		h1, h2 float64
		want   float64
	}{
		{0, 0, 0},
		{0, 180, 180},
		{350, 10, 20},
		{10, 350, 20},
		{90, 270, 180},
		{45, 60, 15},
	}

	for _, tt := range tests {
		if got := HueDistance(tt.h1, tt.h2); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HueDistance(%g, %g) = %g, want %g", tt.h1, tt.h2, got, tt.want)
		}
	}
}

func TestHuePairs(t *testing.T) {
	p := huePalette([]float64{0, 90, 200})
	report := AnalyzeHarmony(p)

	if len(report.HuePairs) != 3 {
		t.Fatalf("hue pairs = %d, want 3", len(report.HuePairs))
	}
	for _, pair := range report.HuePairs {
		if pair.I >= pair.J {
			t.Errorf("pair indices not ordered: i=%d j=%d", pair.I, pair.J)
		}
		if pair.Distance < 0 || pair.Distance > 180 {
			t.Errorf("pair distance %g outside [0, 180]", pair.Distance)
		}
		ci, _ := p.At(pair.I)
		cj, _ := p.At(pair.J)
		if math.Abs(pair.Weight-(ci.Weight+cj.Weight)) > 1e-9 {
			t.Errorf("pair weight = %g, want combined entry weight %g", pair.Weight, ci.Weight+cj.Weight)
		}
	}
}

func TestMeanSaturationWeighted(t *testing.T) {
	entries := []WeightedColour{
		hueEntry(10, 1.0, 0.5, 0.75),
		hueEntry(200, 0.2, 0.5, 0.25),
	}
	report := AnalyzeHarmony(NewPalette(entries))

	want := 0.75*1.0 + 0.25*0.2
	if math.Abs(report.MeanSaturation-want) > 1e-9 {
		t.Errorf("mean saturation = %g, want %g", report.MeanSaturation, want)
	}
}
