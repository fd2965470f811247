package element

import (
	"fmt"

	"github.com/ivlev/carousel/internal/geometry"
)

// Kind is the role of a text element on a slide.
type Kind string

const (
	Header       Kind = "header"
	Body         Kind = "body"
	Caption      Kind = "caption"
	CallToAction Kind = "cta"
	SlideNumber  Kind = "slide-number"
)

// Kinds lists every element kind.
func Kinds() []Kind {
	return []Kind{Header, Body, Caption, CallToAction, SlideNumber}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case Header, Body, Caption, CallToAction, SlideNumber:
		return true
	}
	return false
}

// Align is horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Shadow is an optional drop shadow. Offsets and blur are in pixels at the reference slide width.
type Shadow struct {
	OffsetX float64 `yaml:"offsetX" json:"offsetX"`
	OffsetY float64 `yaml:"offsetY" json:"offsetY"`
	Blur    float64 `yaml:"blur" json:"blur"`
	Color   string  `yaml:"color" json:"color"`
}

// Pad is an optional background plate drawn behind the text.
type Pad struct {
	Color   string  `yaml:"color" json:"color"`
	Padding float64 `yaml:"padding" json:"padding"`
	Radius  float64 `yaml:"radius" json:"radius"`
}

// Style describes how an element is painted. Sizes are in pixels at ReferenceWidth.
type Style struct {
	FontSize      float64 `yaml:"fontSize" json:"fontSize"`
	FontWeight    int     `yaml:"fontWeight" json:"fontWeight"`
	Color         string  `yaml:"color" json:"color"`
	Align         Align   `yaml:"align" json:"align"`
	LineHeight    float64 `yaml:"lineHeight" json:"lineHeight"`
	LetterSpacing float64 `yaml:"letterSpacing" json:"letterSpacing"`
	Shadow        *Shadow `yaml:"shadow" json:"shadow"`
	Background    *Pad    `yaml:"background" json:"background"`
	Opacity       float64 `yaml:"opacity" json:"opacity"`
	ZIndex        int     `yaml:"zIndex" json:"zIndex"`
}

// ReferenceWidth is the slide width in pixels at which style sizes are authored.
const ReferenceWidth = 1080

// TextElement is a text overlay positioned on a slide.
type TextElement struct {
	ID       string                `yaml:"id" json:"id"`
	Kind     Kind                  `yaml:"kind" json:"kind"`
	Content  string                `yaml:"content" json:"content"`
	Position geometry.PercentPoint `yaml:"position" json:"position"`
	Style    Style                 `yaml:"style" json:"style"`
	Editable bool                  `yaml:"editable" json:"editable"`
	Visible  bool                  `yaml:"visible" json:"visible"`
	// Link is the call-to-action target, rendered as a QR badge on export.
	Link string `yaml:"link" json:"link"`
}

// Clone returns a deep copy of the element so callers never share the optional style parts.
func (e TextElement) Clone() TextElement {
	e.Style = e.Style.clone()
	return e
}

func (s Style) clone() Style {
	if s.Shadow != nil {
		sh := *s.Shadow
		s.Shadow = &sh
	}
	if s.Background != nil {
		bg := *s.Background
		s.Background = &bg
	}
	return s
}

// Validate checks invariants that clamping cannot repair.
func (e TextElement) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("element has no id")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("element %s: unknown kind %q", e.ID, e.Kind)
	}
	return nil
}

// Normalize clamps position and opacity into their valid ranges.
func (e TextElement) Normalize() TextElement {
	e.Position = e.Position.Clamp()
	e.Style.Opacity = clampOpacity(e.Style.Opacity)
	return e
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
