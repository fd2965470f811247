package renderer

import (
	"sort"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
	"github.com/ivlev/carousel/internal/store"
)

// Background describes how the slide background is placed in the container.
type Background struct {
	Kind store.BackgroundKind
	Ref  string
	// Crop is the source region shown by the slide; FullFrame for whole-slide images.
	Crop geometry.Rect

	// CSS-style placement: position = (x*100%, y*100%), size = (100%/w, 100%/h).
	PositionX geometry.Percent
	PositionY geometry.Percent
	SizeW     geometry.Percent
	SizeH     geometry.Percent

	// Offset and Scaled place the whole source image in container pixels so
	// that exactly the crop region covers the container.
	Offset geometry.Point
	Scaled geometry.Size
}

// ElementPaint is one text element ready to be drawn.
type ElementPaint struct {
	ID      string
	Kind    element.Kind
	Content string
	Link    string
	Style   element.Style
	// Anchor is the element center in container pixels.
	Anchor geometry.Point
	// Scale converts style sizes authored at element.ReferenceWidth to container pixels.
	Scale float64
	// Live is set when the position comes from an uncommitted drag frame.
	Live bool
}

// PaintInstructions is everything a presentation layer or exporter needs to draw a slide.
type PaintInstructions struct {
	SlideID    string
	Size       geometry.Size
	Background Background
	// Elements are visible elements in paint order: ascending z-index, list order on ties.
	Elements []ElementPaint
}

type projectOptions struct {
	liveID  string
	livePos geometry.PercentPoint
	hasLive bool
}

// Option adjusts a projection.
type Option func(*projectOptions)

// WithLiveFrame overrides the position of one element with an uncommitted drag frame.
func WithLiveFrame(elementID string, pos geometry.PercentPoint) Option {
	return func(o *projectOptions) {
		o.liveID = elementID
		o.livePos = pos.Clamp()
		o.hasLive = true
	}
}

// Project maps a slide onto a container of the given pixel size. It has no
// side effects and keeps no state between calls.
func Project(slide store.Slide, size geometry.Size, opts ...Option) PaintInstructions {
	var o projectOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := PaintInstructions{
		SlideID:    slide.ID,
		Size:       size,
		Background: projectBackground(slide, size),
	}

	scale := 0.0
	if size.W > 0 {
		scale = size.W / element.ReferenceWidth
	}

	for _, el := range slide.Elements {
		if !el.Visible {
			continue
		}
		pos := el.Position.Clamp()
		live := o.hasLive && el.ID == o.liveID
		if live {
			pos = o.livePos
		}
		out.Elements = append(out.Elements, ElementPaint{
			ID:      el.ID,
			Kind:    el.Kind,
			Content: el.Content,
			Link:    el.Link,
			Style:   el.Clone().Style,
			Anchor:  geometry.ToPixels(pos, size),
			Scale:   scale,
			Live:    live,
		})
	}
	sort.SliceStable(out.Elements, func(i, j int) bool {
		return out.Elements[i].Style.ZIndex < out.Elements[j].Style.ZIndex
	})
	return out
}

func projectBackground(slide store.Slide, size geometry.Size) Background {
	bg := Background{
		Kind: slide.Background.Kind,
		Ref:  slide.Background.Ref,
		Crop: geometry.FullFrame,
	}
	if slide.Background.Kind == store.BackgroundPanorama && slide.Crop != nil && slide.Crop.Valid() &&
		slide.Crop.Width > 0 && slide.Crop.Height > 0 {
		bg.Crop = *slide.Crop
	}

	c := bg.Crop
	bg.PositionX = c.X.Percent()
	bg.PositionY = c.Y.Percent()
	bg.SizeW = geometry.Percent(100 / float64(c.Width))
	bg.SizeH = geometry.Percent(100 / float64(c.Height))

	bg.Scaled = geometry.Size{
		W: size.W / float64(c.Width),
		H: size.H / float64(c.Height),
	}
	bg.Offset = geometry.Point{
		X: -float64(c.X) * bg.Scaled.W,
		Y: -float64(c.Y) * bg.Scaled.H,
	}
	return bg
}

// ProjectAll projects every slide of a project at the same container size.
func ProjectAll(p store.Project, size geometry.Size) []PaintInstructions {
	out := make([]PaintInstructions, len(p.Slides))
	for i, s := range p.Slides {
		out[i] = Project(s, size)
	}
	return out
}

// SlideSize returns the pixel size of a slide of the given width for an aspect ratio token.
func SlideSize(width float64, token string) geometry.Size {
	return geometry.Size{W: width, H: width / geometry.AspectRatioToCSSRatio(token)}
}
