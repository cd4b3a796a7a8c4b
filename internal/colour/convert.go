// Package colour provides palette extraction and colour harmony analysis.
package colour

import "math"

// D65 reference white in CIE XYZ, normalised so Y = 1.
var whiteD65 = [3]float64{0.95047, 1.00000, 1.08883}

// CIE constants for the Lab transfer function. Using the exact rational
// values keeps near-zero XYZ finite instead of collapsing to -Inf.
const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = 24389.0 / 27.0
)

// Linear sRGB from CIE XYZ (D65), and its inverse.
var (
	srgbFromXYZ = [3][3]float64{
		{3.2406, -1.5372, -0.4986},
		{-0.9689, 1.8758, 0.0415},
		{0.0557, -0.2040, 1.0570},
	}
	xyzFromSRGB = [3][3]float64{
		{0.4124, 0.3576, 0.1805},
		{0.2126, 0.7152, 0.0722},
		{0.0193, 0.1192, 0.9505},
	}
)

// RGBToLab converts an 8-bit sRGB colour to CIELAB (D65) using the
// standard sRGB -> CIEXYZ -> CIELAB pipeline.
func RGBToLab(rgb RGB) Lab {
	r := srgbToLinear(float64(rgb.R) / 255.0)
	g := srgbToLinear(float64(rgb.G) / 255.0)
	b := srgbToLinear(float64(rgb.B) / 255.0)

	x := xyzFromSRGB[0][0]*r + xyzFromSRGB[0][1]*g + xyzFromSRGB[0][2]*b
	y := xyzFromSRGB[1][0]*r + xyzFromSRGB[1][1]*g + xyzFromSRGB[1][2]*b
	z := xyzFromSRGB[2][0]*r + xyzFromSRGB[2][1]*g + xyzFromSRGB[2][2]*b

	fx := labF(x / whiteD65[0])
	fy := labF(y / whiteD65[1])
	fz := labF(z / whiteD65[2])

	return Lab{
		L: 116.0*fy - 16.0,
		A: 500.0 * (fx - fy),
		B: 200.0 * (fy - fz),
	}
}

// LabToRGB converts a CIELAB colour back to 8-bit sRGB. Out-of-gamut
// channels are clamped to [0, 255]; clamped reports whether any channel
// needed clamping.
func LabToRGB(lab Lab) (rgb RGB, clamped bool) {
	fy := (lab.L + 16.0) / 116.0
	fx := fy + lab.A/500.0
	fz := fy - lab.B/200.0

	x := whiteD65[0] * labFInv(fx)
	y := whiteD65[1] * labFInv(fy)
	z := whiteD65[2] * labFInv(fz)

	r := srgbFromXYZ[0][0]*x + srgbFromXYZ[0][1]*y + srgbFromXYZ[0][2]*z
	g := srgbFromXYZ[1][0]*x + srgbFromXYZ[1][1]*y + srgbFromXYZ[1][2]*z
	b := srgbFromXYZ[2][0]*x + srgbFromXYZ[2][1]*y + srgbFromXYZ[2][2]*z

	r = linearToSRGB(r)
	g = linearToSRGB(g)
	b = linearToSRGB(b)

	// The published forward and inverse sRGB matrices are rounded to four
	// decimals and are not exact inverses; excursions below this epsilon
	// are matrix noise, not genuine gamut violations.
	const gamutEpsilon = 1e-3
	if r < -gamutEpsilon || r > 1+gamutEpsilon ||
		g < -gamutEpsilon || g > 1+gamutEpsilon ||
		b < -gamutEpsilon || b > 1+gamutEpsilon {
		clamped = true
	}

	return RGB{
		R: uint8(math.Round(clamp01(r) * 255.0)),
		G: uint8(math.Round(clamp01(g) * 255.0)),
		B: uint8(math.Round(clamp01(b) * 255.0)),
	}, clamped
}

// ClampLab clamps a Lab value into the documented channel ranges:
// L in [0, 100], a and b in [-128, 127].
func ClampLab(lab Lab) Lab {
	return Lab{
		L: math.Max(0, math.Min(100, lab.L)),
		A: math.Max(-128, math.Min(127, lab.A)),
		B: math.Max(-128, math.Min(127, lab.B)),
	}
}

// RGBToHSL converts an 8-bit sRGB colour to HSL.
// Zero-chroma colours (greys) yield hue 0 by convention.
func RGBToHSL(rgb RGB) HSL {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	l := (maxVal + minVal) / 2.0

	if delta == 0 {
		return HSL{H: 0, S: 0, L: l}
	}

	var s float64
	if l < 0.5 {
		s = delta / (maxVal + minVal)
	} else {
		s = delta / (2.0 - maxVal - minVal)
	}

	var h float64
	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}
	h *= 60

	return HSL{H: h, S: s, L: l}
}

// HSLToRGB converts an HSL colour to 8-bit sRGB.
func HSLToRGB(hsl HSL) RGB {
	if hsl.S == 0 {
		// Achromatic (grey).
		v := uint8(math.Round(hsl.L * 255.0))
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if hsl.L < 0.5 {
		q = hsl.L * (1 + hsl.S)
	} else {
		q = hsl.L + hsl.S - hsl.L*hsl.S
	}
	p := 2*hsl.L - q

	r := hueToRGB(p, q, hsl.H+120)
	g := hueToRGB(p, q, hsl.H)
	b := hueToRGB(p, q, hsl.H-120)

	return RGB{
		R: uint8(math.Round(r * 255.0)),
		G: uint8(math.Round(g * 255.0)),
		B: uint8(math.Round(b * 255.0)),
	}
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	// Normalise t to the 0-360 range.
	for t < 0 {
		t += 360
	}
	for t >= 360 {
		t -= 360
	}

	if t < 60 {
		return p + (q-p)*t/60
	}
	if t < 180 {
		return q
	}
	if t < 240 {
		return p + (q-p)*(240-t)/60
	}
	return p
}

// srgbToLinear applies sRGB companding, mapping a gamma-encoded channel
// in [0, 1] to linear light.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// linearToSRGB is the inverse sRGB companding function.
func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16.0) / 116.0
}

func labFInv(f float64) float64 {
	f3 := f * f * f
	if f3 > labEpsilon {
		return f3
	}
	return (116.0*f - 16.0) / labKappa
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
