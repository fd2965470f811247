package geometry

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinSlides = 3
	MaxSlides = 20
)

// ErrInvalidSlideCount is returned when a slide count falls outside [MinSlides, MaxSlides].
var ErrInvalidSlideCount = errors.New("invalid slide count")

// Rect is a normalized crop region over a source image.
type Rect struct {
	X      UnitFraction `yaml:"x" json:"x"`
	Y      UnitFraction `yaml:"y" json:"y"`
	Width  UnitFraction `yaml:"width" json:"width"`
	Height UnitFraction `yaml:"height" json:"height"`
}

// FullFrame covers the whole source image.
var FullFrame = Rect{X: 0, Y: 0, Width: 1, Height: 1}

// Valid reports whether the rect lies inside the unit square and has a positive area.
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= 1 && r.Y+r.Height <= 1
}

// Slicing is the result of slicing a panorama.
type Slicing struct {
	Ratio   AspectRatio
	Regions []Rect
	// Warning is non-nil when the requested ratio was unknown and the default was used.
	Warning error
}

// CheckSlideCount validates n against the supported range.
func CheckSlideCount(n int) error {
	if n < MinSlides || n > MaxSlides {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidSlideCount, n, MinSlides, MaxSlides)
	}
	return nil
}

// Slice splits a panorama into slideCount equal, contiguous, non-overlapping
// horizontal segments. Vertical extent maps 1:1: the panorama request is
// responsible for producing segments of the right aspect ratio.
func Slice(slideCount int, token string) (Slicing, error) {
	if err := CheckSlideCount(slideCount); err != nil {
		return Slicing{}, err
	}

	ratio, warn := ParseAspectRatio(token)

	regions := make([]Rect, slideCount)
	width := UnitFraction(1 / float64(slideCount))
	for i := range regions {
		x := UnitFraction(float64(i) / float64(slideCount))
		w := width
		// Float rounding must never push the last segment past the right edge
		if x+w > 1 {
			w = 1 - x
		}
		regions[i] = Rect{X: x, Y: 0, Width: w, Height: 1}
	}

	return Slicing{Ratio: ratio, Regions: regions, Warning: warn}, nil
}

// PanoramaSize returns the pixel size a panorama must have so that each of the
// slideCount segments matches the aspect ratio at the given slide height.
func PanoramaSize(slideCount int, token string, slideHeight int) (width, height int, err error) {
	if err := CheckSlideCount(slideCount); err != nil {
		return 0, 0, err
	}
	if slideHeight <= 0 {
		return 0, 0, fmt.Errorf("slide height must be positive, got %d", slideHeight)
	}
	ratio, _ := ParseAspectRatio(token)
	slideWidth := int(math.Round(float64(slideHeight) * ratio.Ratio()))
	return slideWidth * slideCount, slideHeight, nil
}

// CheckPanorama compares the per-segment aspect of a delivered panorama with the
// requested one and returns the relative deviation (0 means exact). Slicing
// never letterboxes; the deviation only tells callers how much each slide will
// be stretched when a segment is scaled to fill the slide box.
func CheckPanorama(width, height, slideCount int, token string) (float64, error) {
	if err := CheckSlideCount(slideCount); err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid panorama size %dx%d", width, height)
	}
	ratio, _ := ParseAspectRatio(token)
	segment := float64(width) / float64(slideCount) / float64(height)
	return math.Abs(segment-ratio.Ratio()) / ratio.Ratio(), nil
}
