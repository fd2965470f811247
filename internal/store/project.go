package store

import (
	"fmt"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
)

// BackgroundKind tells how a slide gets its background.
type BackgroundKind string

const (
	BackgroundNone     BackgroundKind = "none"
	BackgroundImage    BackgroundKind = "image"
	BackgroundPanorama BackgroundKind = "panorama"
)

// BackgroundRef points at a whole-slide image or at the shared panorama.
type BackgroundRef struct {
	Kind BackgroundKind `yaml:"kind" json:"kind"`
	Ref  string         `yaml:"ref" json:"ref"`
}

// Slide is one unit of the carousel.
type Slide struct {
	ID         string                `yaml:"id" json:"id"`
	Background BackgroundRef         `yaml:"background" json:"background"`
	Crop       *geometry.Rect        `yaml:"crop" json:"crop"`
	Elements   []element.TextElement `yaml:"elements" json:"elements"`
}

// Project is the whole carousel document.
type Project struct {
	AspectRatio geometry.AspectRatio `yaml:"aspectRatio" json:"aspectRatio"`
	Slides      []Slide              `yaml:"slides" json:"slides"`
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	if s.Crop != nil {
		c := *s.Crop
		s.Crop = &c
	}
	els := make([]element.TextElement, len(s.Elements))
	for i, el := range s.Elements {
		els[i] = el.Clone()
	}
	s.Elements = els
	return s
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	slides := make([]Slide, len(p.Slides))
	for i, s := range p.Slides {
		slides[i] = s.Clone()
	}
	p.Slides = slides
	return p
}

// ElementIndex returns the position of the element in the slide, or -1.
func (s Slide) ElementIndex(id string) int {
	for i, el := range s.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks every structural invariant of a project.
func (p Project) Validate() error {
	if !p.AspectRatio.Valid() {
		return fmt.Errorf("%w %q", geometry.ErrUnknownAspectRatio, p.AspectRatio)
	}
	if err := geometry.CheckSlideCount(len(p.Slides)); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, s := range p.Slides {
		if s.ID == "" {
			return fmt.Errorf("slide %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate id %s", s.ID)
		}
		seen[s.ID] = true

		switch s.Background.Kind {
		case BackgroundNone, BackgroundImage, BackgroundPanorama:
		default:
			return fmt.Errorf("slide %s: unknown background kind %q", s.ID, s.Background.Kind)
		}
		if s.Crop != nil {
			if s.Background.Kind != BackgroundPanorama {
				return fmt.Errorf("slide %s: crop region without panorama background", s.ID)
			}
			if !s.Crop.Valid() {
				return fmt.Errorf("slide %s: crop region %+v outside source image", s.ID, *s.Crop)
			}
		}

		for _, el := range s.Elements {
			if err := el.Validate(); err != nil {
				return fmt.Errorf("slide %s: %w", s.ID, err)
			}
			if seen[el.ID] {
				return fmt.Errorf("duplicate id %s", el.ID)
			}
			seen[el.ID] = true
		}
	}
	return nil
}
