package engine

import (
	"fmt"
	"image"
	"math"

	"github.com/ivlev/carousel/internal/analyzer"
	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/export"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/store"
	"github.com/mattn/go-runewidth"
)

const (
	// contrastWidth is the preview width backgrounds are analyzed at.
	contrastWidth = 360
	// edgeThreshold is the Sobel magnitude counted as an edge.
	edgeThreshold = 40
)

var readableShadow = element.Shadow{OffsetX: 0, OffsetY: 2, Blur: 8, Color: "#000000b3"}

// AutoContrast recolors text elements so they stay readable over their slide
// background: dark text over light areas, light text over dark ones, and a
// shadow over busy areas. Elements with a background plate are skipped.
// Returns the number of elements changed.
func (c *Composer) AutoContrast(r *export.Rasterizer) (int, error) {
	size := c.SlideSize(contrastWidth)
	changed := 0

	for _, slide := range c.store.Slides() {
		if slide.Background.Kind == store.BackgroundNone || slide.Background.Kind == "" {
			continue
		}

		pi := renderer.Project(slide, size)
		elements := pi.Elements
		pi.Elements = nil
		img, err := r.Render(pi)
		if err != nil {
			return changed, fmt.Errorf("analyze background: %w", err)
		}

		for _, e := range elements {
			if e.Style.Background != nil {
				continue
			}
			info := analyzer.Measure(img, textRect(e, size.W), edgeThreshold)
			logDebug("[>] Slide %s element %s: luminance %.2f, busy %.2f", slide.ID, e.ID, info.Luminance, info.Busy)

			sp := element.StylePatch{}
			if col := info.TextColor(); col != e.Style.Color {
				sp.Color = &col
			}
			if info.NeedsShadow() && e.Style.Shadow == nil {
				shadow := readableShadow
				sp.Shadow = &shadow
			}
			if sp.Color == nil && sp.Shadow == nil {
				continue
			}
			if _, err := c.store.UpdateElement(slide.ID, e.ID, element.Patch{Style: &sp}); err != nil {
				r.Release(img)
				return changed, err
			}
			changed++
		}
		r.Release(img)
	}
	return changed, nil
}

// textRect estimates the area an element covers, centered on the anchor.
// Wide runes count as two cells.
func textRect(e renderer.ElementPaint, slideWidth float64) image.Rectangle {
	lineH := e.Style.FontSize * e.Scale * math.Max(e.Style.LineHeight, 1)
	cellW := e.Style.FontSize * e.Scale * 0.55
	maxW := slideWidth * 0.86

	full := float64(runewidth.StringWidth(e.Content)) * cellW
	width := math.Min(full, maxW)
	height := lineH * math.Max(1, math.Ceil(full/maxW))

	return image.Rect(
		int(e.Anchor.X-width/2), int(e.Anchor.Y-height/2),
		int(math.Ceil(e.Anchor.X+width/2)), int(math.Ceil(e.Anchor.Y+height/2)),
	)
}
