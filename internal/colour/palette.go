// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// weightTolerance is the float tolerance used when comparing entry
// weights during ordering and when checking weight conservation.
const weightTolerance = 1e-9

// Palette is an ordered, immutable sequence of weighted colours produced
// by one extraction call. Entries are ordered by non-increasing weight;
// equal weights are broken by ascending hue, then ascending lightness, so
// the same extraction always yields the same palette.
type Palette struct {
	entries []WeightedColour
}

// NewPalette assembles a Palette from extraction output, applying the
// ordering invariant. The input slice is not retained.
func NewPalette(entries []WeightedColour) *Palette {
	sorted := append([]WeightedColour(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := sorted[i].Weight, sorted[j].Weight
		if math.Abs(wi-wj) > weightTolerance {
			return wi > wj
		}
		hi, hj := sorted[i].HSL.H, sorted[j].HSL.H
		if hi != hj {
			return hi < hj
		}
		return sorted[i].Lab.L < sorted[j].Lab.L
	})
	return &Palette{entries: sorted}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.entries)
}

// At returns the entry at the specified index.
// It returns an error if the index is out of bounds.
func (p *Palette) At(index int) (WeightedColour, error) {
	if index < 0 || index >= len(p.entries) {
		return WeightedColour{}, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.entries))
	}
	return p.entries[index], nil
}

// Colours returns a copy of the palette entries in order.
func (p *Palette) Colours() []WeightedColour {
	return append([]WeightedColour(nil), p.entries...)
}

// All returns an iterator over all entries in order.
func (p *Palette) All() func(func(int, WeightedColour) bool) {
	return func(yield func(int, WeightedColour) bool) {
		for i, c := range p.entries {
			if !yield(i, c) {
				return
			}
		}
	}
}

// ToHex returns the palette colours as hex codes (e.g., ["#1a2b3c"]).
func (p *Palette) ToHex() []string {
	hexColours := make([]string, len(p.entries))
	for i, c := range p.entries {
		hexColours[i] = c.RGB.Hex()
	}
	return hexColours
}

// PaletteJSON represents the palette in JSON output format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Colours []ColourJSON `json:"colours"`
}

// ColourJSON represents one palette entry in JSON output format.
type ColourJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Lab    Lab     `json:"lab"`
	HSL    HSL     `json:"hsl"`
	Weight float64 `json:"weight"`
}

// JSON returns the palette in its JSON output shape, for callers that
// embed the palette in a larger document.
func (p *Palette) JSON() PaletteJSON {
	colours := make([]ColourJSON, len(p.entries))
	for i, c := range p.entries {
		colours[i] = ColourJSON{
			Hex:    c.RGB.Hex(),
			RGB:    c.RGB,
			Lab:    c.Lab,
			HSL:    c.HSL,
			Weight: c.Weight,
		}
	}
	return PaletteJSON{
		Count:   len(p.entries),
		Colours: colours,
	}
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.JSON(), "", "  ")
}

// String returns a human-readable representation of the palette.
func (p *Palette) String() string {
	if len(p.entries) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colours:\n", len(p.entries))
	for i, c := range p.entries {
		result += fmt.Sprintf("  %2d: %s (%s) weight %.3f\n", i+1, c.RGB.Hex(), c.RGB.String(), c.Weight)
	}
	return result
}

// TotalWeight returns the sum of entry weights. For a palette assembled
// from one extraction result this is 1 within floating tolerance.
func (p *Palette) TotalWeight() float64 {
	total := 0.0
	for _, c := range p.entries {
		total += c.Weight
	}
	return total
}
