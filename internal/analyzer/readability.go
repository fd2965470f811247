package analyzer

import (
	"image"
)

const (
	// DarkText and LightText are the colors picked for text over light and dark areas.
	DarkText  = "#111111"
	LightText = "#ffffff"

	lightLuminance = 0.6
	busyDensity    = 0.08
)

// Readability describes the background behind a text element.
type Readability struct {
	// Luminance is the mean relative luminance, 0-1.
	Luminance float64
	// Busy is the share of edge pixels.
	Busy float64
}

// Measure inspects the part of img inside r.
func Measure(img image.Image, r image.Rectangle, threshold float64) Readability {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return Readability{}
	}

	gray := toGray(img)
	sum := 0.0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sum += float64(gray.GrayAt(x, y).Y)
		}
	}

	return Readability{
		Luminance: sum / float64(r.Dx()*r.Dy()) / 255,
		Busy:      density(sobel(gray, threshold), r),
	}
}

// TextColor returns a text color that contrasts with the background.
func (r Readability) TextColor() string {
	if r.Luminance > lightLuminance {
		return DarkText
	}
	return LightText
}

// NeedsShadow reports whether the background is busy enough that text needs a shadow.
func (r Readability) NeedsShadow() bool {
	return r.Busy > busyDensity
}
