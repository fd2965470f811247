package analyzer

import "image"

// Region is a visually busy area of a slide background, such as detailed
// texture or printed text, where overlaid text is hard to read.
type Region struct {
	Rect image.Rectangle
	// Density is the share of edge pixels inside Rect, 0-1.
	Density float64
}

// Detector finds busy regions in a background image.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}
