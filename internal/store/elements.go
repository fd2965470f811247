package store

import (
	"fmt"

	"github.com/ivlev/carousel/internal/element"
)

// Element returns a copy of an element on a slide.
func (s *Store) Element(slideID, elementID string) (element.TextElement, bool) {
	i := s.index(slideID)
	if i < 0 {
		return element.TextElement{}, false
	}
	j := s.slides[i].ElementIndex(elementID)
	if j < 0 {
		return element.TextElement{}, false
	}
	return s.slides[i].Elements[j].Clone(), true
}

// AddElement appends a default element of the given kind to a slide.
func (s *Store) AddElement(slideID string, kind element.Kind) (element.TextElement, error) {
	if !kind.Valid() {
		return element.TextElement{}, fmt.Errorf("unknown element kind %q", kind)
	}
	i := s.index(slideID)
	if i < 0 {
		return element.TextElement{}, fmt.Errorf("%w: %s", ErrUnknownSlide, slideID)
	}

	el := element.CreateDefault(kind, i, len(s.slides))
	el.ID = s.newID()
	s.replaceElements(i, append(s.slides[i].Clone().Elements, el))
	return el.Clone(), nil
}

// InsertElement appends a prepared element, e.g. from a generation result.
// A missing id is assigned; the stored copy is normalized.
func (s *Store) InsertElement(slideID string, el element.TextElement) (element.TextElement, error) {
	i := s.index(slideID)
	if i < 0 {
		return element.TextElement{}, fmt.Errorf("%w: %s", ErrUnknownSlide, slideID)
	}
	if el.ID == "" {
		el.ID = s.newID()
	}
	if err := el.Validate(); err != nil {
		return element.TextElement{}, err
	}
	if s.hasElementID(el.ID) {
		return element.TextElement{}, fmt.Errorf("duplicate element id %s", el.ID)
	}

	el = el.Clone().Normalize()
	s.replaceElements(i, append(s.slides[i].Clone().Elements, el))
	return el.Clone(), nil
}

// UpdateElement applies a patch through element.Update and replaces the owning slide.
func (s *Store) UpdateElement(slideID, elementID string, p element.Patch) (element.TextElement, error) {
	i, j, err := s.locate(slideID, elementID)
	if err != nil {
		return element.TextElement{}, err
	}

	els := s.slides[i].Clone().Elements
	els[j] = element.Update(els[j], p)
	s.replaceElements(i, els)
	return els[j].Clone(), nil
}

// RemoveElement deletes an element and notifies observers so that drag and
// edit state referencing it is torn down.
func (s *Store) RemoveElement(slideID, elementID string) error {
	i, j, err := s.locate(slideID, elementID)
	if err != nil {
		return err
	}

	els := s.slides[i].Clone().Elements
	els = append(els[:j], els[j+1:]...)
	s.replaceElements(i, els)

	for _, o := range s.observers {
		o.ElementRemoved(slideID, elementID)
	}
	return nil
}

// ReorderElement moves an element within its slide's list, which also changes
// its z-order among elements with equal z-index.
func (s *Store) ReorderElement(slideID, elementID string, to int) error {
	i, j, err := s.locate(slideID, elementID)
	if err != nil {
		return err
	}
	els := s.slides[i].Clone().Elements
	if to < 0 || to >= len(els) {
		return fmt.Errorf("reorder element %s: target %d out of range", elementID, to)
	}

	el := els[j]
	els = append(els[:j], els[j+1:]...)
	els = append(els[:to], append([]element.TextElement{el}, els[to:]...)...)
	s.replaceElements(i, els)
	return nil
}

func (s *Store) locate(slideID, elementID string) (int, int, error) {
	i := s.index(slideID)
	if i < 0 {
		return -1, -1, fmt.Errorf("%w: %s", ErrUnknownSlide, slideID)
	}
	j := s.slides[i].ElementIndex(elementID)
	if j < 0 {
		return -1, -1, fmt.Errorf("%w: %s on slide %s", ErrDanglingElement, elementID, slideID)
	}
	return i, j, nil
}

func (s *Store) replaceElements(i int, els []element.TextElement) {
	sl := s.slides[i].Clone()
	sl.Elements = els
	s.slides[i] = sl
}

func (s *Store) hasElementID(id string) bool {
	for _, sl := range s.slides {
		if sl.ElementIndex(id) >= 0 {
			return true
		}
	}
	return false
}
