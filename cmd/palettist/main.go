// Palettist - colour palette extraction and harmony analysis
//
// Palettist extracts colour palettes from images in perceptual CIELAB
// space and scores them against classic colour-harmony archetypes.
package main

import (
	"github.com/palettist/palettist/internal/cli"
)

func main() {
	cli.Execute()
}
