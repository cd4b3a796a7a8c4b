package image

import (
	"image"
	"math"

	"github.com/palettist/palettist/internal/colour"
)

// DefaultMaxSamples bounds the pixel count handed to the extraction
// strategies. Sampling beyond this adds cost without changing the
// palette in any visible way.
const DefaultMaxSamples = 10000

// SamplePixels subsamples the image on a uniform grid and returns at
// most maxSamples RGB values. The grid is anchored at the top-left
// corner of the image bounds, so the same image always yields the same
// samples. Fully transparent pixels are skipped.
func SamplePixels(img image.Image, maxSamples int) []colour.RGB {
	if img == nil || maxSamples < 1 {
		return nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Grid step that keeps the sample count at or below the cap.
	step := int(math.Ceil(math.Sqrt(float64(width*height) / float64(maxSamples))))
	if step < 1 {
		step = 1
	}

	samples := make([]colour.RGB, 0, maxSamples)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			if len(samples) == maxSamples {
				return samples
			}
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			samples = append(samples, colour.RGB{
				R: uint8(r >> 8), // #nosec G115 - RGBA() components fit 16 bits
				G: uint8(g >> 8),
				B: uint8(b >> 8),
			})
		}
	}
	return samples
}
