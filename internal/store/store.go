package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
)

var (
	// ErrCropCountMismatch is returned when a panorama result does not match the slide count.
	ErrCropCountMismatch = errors.New("crop region count does not match slide count")
	// ErrDanglingElement signals an operation on an element id the slide does not hold.
	// The operation is a no-op.
	ErrDanglingElement = errors.New("element not found on slide")
	// ErrUnknownSlide signals an operation on a slide id the project does not hold.
	ErrUnknownSlide = errors.New("slide not found")
)

// Observer is notified about mutations that invalidate ephemeral editor state
// (drag sessions, selection, edit focus).
type Observer interface {
	ElementRemoved(slideID, elementID string)
	SlideRemoved(slideID string)
	ActiveSlideChanged(slideID string)
}

// Store owns the ordered slide sequence. Every mutation replaces the affected
// slide with a new value; slides handed out are copies. Not safe for
// concurrent use.
type Store struct {
	aspect    geometry.AspectRatio
	slides    []Slide
	active    int
	observers []Observer
	newID     func() string
}

// New creates a project with count empty slides. The aspect ratio must be a
// known one; resolve user tokens with geometry.ParseAspectRatio first.
func New(aspect geometry.AspectRatio, count int) (*Store, error) {
	if err := geometry.CheckSlideCount(count); err != nil {
		return nil, err
	}
	if _, err := geometry.ParseAspectRatio(string(aspect)); err != nil {
		return nil, err
	}

	s := &Store{aspect: aspect, newID: uuid.NewString}
	s.slides = make([]Slide, 0, count)
	for i := 0; i < count; i++ {
		s.slides = append(s.slides, s.blankSlide())
	}
	return s, nil
}

// FromProject builds a store around a copy of an existing project.
func FromProject(p Project) (*Store, error) {
	p = p.Clone()
	for i := range p.Slides {
		if p.Slides[i].Background.Kind == "" {
			p.Slides[i].Background.Kind = BackgroundNone
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}
	return &Store{aspect: p.AspectRatio, slides: p.Slides, newID: uuid.NewString}, nil
}

// Subscribe registers an observer for teardown notifications.
func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Project returns a deep copy of the current document.
func (s *Store) Project() Project {
	return Project{AspectRatio: s.aspect, Slides: s.slides}.Clone()
}

// AspectRatio returns the project format.
func (s *Store) AspectRatio() geometry.AspectRatio { return s.aspect }

// SetAspectRatio changes the project format. Unknown tokens fall back to the
// default and the warning is returned.
func (s *Store) SetAspectRatio(token string) error {
	ar, warn := geometry.ParseAspectRatio(token)
	s.aspect = ar
	return warn
}

// Len returns the number of slides.
func (s *Store) Len() int { return len(s.slides) }

// Slides returns copies of all slides in order.
func (s *Store) Slides() []Slide {
	return s.Project().Slides
}

// Slide returns a copy of the slide with the given id.
func (s *Store) Slide(id string) (Slide, bool) {
	i := s.index(id)
	if i < 0 {
		return Slide{}, false
	}
	return s.slides[i].Clone(), true
}

// SlideAt returns a copy of the slide at position i.
func (s *Store) SlideAt(i int) (Slide, bool) {
	if i < 0 || i >= len(s.slides) {
		return Slide{}, false
	}
	return s.slides[i].Clone(), true
}

// IndexOf returns the position of a slide, or -1.
func (s *Store) IndexOf(id string) int { return s.index(id) }

// Active returns the index of the slide being edited.
func (s *Store) Active() int { return s.active }

// SetActive switches the slide being edited.
func (s *Store) SetActive(i int) error {
	if i < 0 || i >= len(s.slides) {
		return fmt.Errorf("%w: index %d", ErrUnknownSlide, i)
	}
	if i == s.active {
		return nil
	}
	s.active = i
	s.notifyActive()
	return nil
}

// AddSlide appends an empty slide.
func (s *Store) AddSlide() (Slide, error) {
	if err := geometry.CheckSlideCount(len(s.slides) + 1); err != nil {
		return Slide{}, err
	}
	sl := s.blankSlide()
	s.slides = append(s.slides, sl)
	return sl.Clone(), nil
}

// RemoveSlide deletes a slide unless that would leave fewer than the minimum.
func (s *Store) RemoveSlide(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSlide, id)
	}
	if err := geometry.CheckSlideCount(len(s.slides) - 1); err != nil {
		return err
	}

	activeID := s.slides[s.active].ID
	s.slides = append(s.slides[:i:i], s.slides[i+1:]...)
	for _, o := range s.observers {
		o.SlideRemoved(id)
	}
	s.fixActive(activeID)
	return nil
}

// MoveSlide moves a slide to a new position, shifting the others.
func (s *Store) MoveSlide(id string, to int) error {
	from := s.index(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSlide, id)
	}
	if to < 0 || to >= len(s.slides) {
		return fmt.Errorf("move slide %s: target %d out of range", id, to)
	}
	if from == to {
		return nil
	}

	activeID := s.slides[s.active].ID
	sl := s.slides[from]
	rest := append(s.slides[:from:from], s.slides[from+1:]...)
	out := make([]Slide, 0, len(s.slides))
	out = append(out, rest[:to]...)
	out = append(out, sl)
	out = append(out, rest[to:]...)
	s.slides = out
	s.fixActive(activeID)
	return nil
}

// SetSlideCount adds or removes slides at the tail until the project has target slides.
func (s *Store) SetSlideCount(target int) error {
	if err := geometry.CheckSlideCount(target); err != nil {
		return err
	}

	activeID := s.slides[s.active].ID
	for len(s.slides) < target {
		s.slides = append(s.slides, s.blankSlide())
	}
	if len(s.slides) > target {
		removed := s.slides[target:]
		s.slides = s.slides[:target:target]
		for _, sl := range removed {
			for _, o := range s.observers {
				o.SlideRemoved(sl.ID)
			}
		}
	}
	s.fixActive(activeID)
	return nil
}

// AssignPanoramaCrops zips regions onto the slides by index. On a count
// mismatch nothing changes and previous crops are retained.
func (s *Store) AssignPanoramaCrops(imageRef string, regions []geometry.Rect) error {
	if len(regions) != len(s.slides) {
		return fmt.Errorf("%w: %d regions for %d slides", ErrCropCountMismatch, len(regions), len(s.slides))
	}
	for i, r := range regions {
		if !r.Valid() {
			return fmt.Errorf("region %d %+v outside source image", i, r)
		}
	}

	for i := range s.slides {
		sl := s.slides[i].Clone()
		crop := regions[i]
		sl.Background = BackgroundRef{Kind: BackgroundPanorama, Ref: imageRef}
		sl.Crop = &crop
		s.slides[i] = sl
	}
	return nil
}

// SetSlideBackground gives one slide its own whole-slide image.
func (s *Store) SetSlideBackground(slideID, imageRef string) error {
	i := s.index(slideID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSlide, slideID)
	}
	sl := s.slides[i].Clone()
	sl.Background = BackgroundRef{Kind: BackgroundImage, Ref: imageRef}
	sl.Crop = nil
	s.slides[i] = sl
	return nil
}

// ClearBackground removes the slide background.
func (s *Store) ClearBackground(slideID string) error {
	i := s.index(slideID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSlide, slideID)
	}
	sl := s.slides[i].Clone()
	sl.Background = BackgroundRef{Kind: BackgroundNone}
	sl.Crop = nil
	s.slides[i] = sl
	return nil
}

func (s *Store) blankSlide() Slide {
	return Slide{
		ID:         s.newID(),
		Background: BackgroundRef{Kind: BackgroundNone},
		Elements:   []element.TextElement{},
	}
}

func (s *Store) index(id string) int {
	for i, sl := range s.slides {
		if sl.ID == id {
			return i
		}
	}
	return -1
}

// fixActive keeps the active slide pointing at the same slide when it still
// exists, otherwise clamps the index. Observers hear about every change of the
// active slide identity.
func (s *Store) fixActive(prevID string) {
	if i := s.index(prevID); i >= 0 {
		s.active = i
		return
	}
	if s.active >= len(s.slides) {
		s.active = len(s.slides) - 1
	}
	s.notifyActive()
}

func (s *Store) notifyActive() {
	id := s.slides[s.active].ID
	for _, o := range s.observers {
		o.ActiveSlideChanged(id)
	}
}
