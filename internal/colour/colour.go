// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"fmt"
	"math"
)

// RGB represents a colour in 8-bit sRGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Lab represents a colour in CIELAB space (D65 reference white).
// L is in [0, 100]; A and B are roughly in [-128, 127].
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Distance returns the Euclidean distance to another Lab colour, which
// approximates perceived colour difference.
func (l Lab) Distance(other Lab) float64 {
	dl := l.L - other.L
	da := l.A - other.A
	db := l.B - other.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// HSL represents a colour in hue/saturation/lightness space.
// H is in degrees [0, 360); S and L are in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Colour is an immutable value holding all three representations of one
// colour. The representations are mutually consistent: RGB is the source
// of truth for HSL, and Lab corresponds to the same sRGB value.
type Colour struct {
	RGB RGB `json:"rgb"`
	Lab Lab `json:"lab"`
	HSL HSL `json:"hsl"`
}

// ColourFromRGB builds a Colour from an sRGB value.
func ColourFromRGB(rgb RGB) Colour {
	return Colour{
		RGB: rgb,
		Lab: RGBToLab(rgb),
		HSL: RGBToHSL(rgb),
	}
}

// ColourFromLab builds a Colour from a Lab value. The RGB form is clamped
// to the sRGB gamut; clamped reports whether clamping occurred.
func ColourFromLab(lab Lab) (c Colour, clamped bool) {
	rgb, clamped := LabToRGB(lab)
	return Colour{
		RGB: rgb,
		Lab: lab,
		HSL: RGBToHSL(rgb),
	}, clamped
}

// labQuantum is the precision used for Lab equality. Two colours whose
// channels agree to two decimal places are considered equal, which absorbs
// float noise from repeated conversions.
const labQuantum = 100.0

// Key is a comparable identity for a Colour, built from the RGB value and
// the Lab value rounded to a fixed precision. Suitable as a map key.
type Key struct {
	RGB     RGB
	L, A, B int32
}

// Key returns the colour's comparable identity.
func (c Colour) Key() Key {
	return Key{
		RGB: c.RGB,
		L:   int32(math.Round(c.Lab.L * labQuantum)),
		A:   int32(math.Round(c.Lab.A * labQuantum)),
		B:   int32(math.Round(c.Lab.B * labQuantum)),
	}
}

// labKey is the Lab-only identity used by the extraction strategies to
// count distinct sample colours.
type labKey struct {
	L, A, B int32
}

func quantiseLab(lab Lab) labKey {
	return labKey{
		L: int32(math.Round(lab.L * labQuantum)),
		A: int32(math.Round(lab.A * labQuantum)),
		B: int32(math.Round(lab.B * labQuantum)),
	}
}

// WeightedColour is a Colour plus the fraction of sampled pixels it
// represents. Weights across one extraction result sum to 1.
type WeightedColour struct {
	Colour
	Weight float64 `json:"weight"`
}
