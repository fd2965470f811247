package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/store"
	"gopkg.in/yaml.v3"
)

// Version is written into every saved project.
const Version = "1.0"

var ErrUnsupportedVersion = errors.New("unsupported project version")

// Document is the on-disk form of a carousel project.
type Document struct {
	Version string        `yaml:"version" json:"version"`
	Saved   time.Time     `yaml:"saved,omitempty" json:"saved,omitempty"`
	Project store.Project `yaml:"project" json:"project"`
}

// Marshal encodes a project as YAML.
func Marshal(p store.Project) ([]byte, error) {
	doc := Document{
		Version: Version,
		Saved:   time.Now().UTC().Truncate(time.Second),
		Project: p,
	}
	return yaml.Marshal(&doc)
}

// Unmarshal decodes and validates a project written by Marshal.
func Unmarshal(data []byte) (store.Project, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return store.Project{}, fmt.Errorf("decode project: %w", err)
	}
	if doc.Version != Version {
		return store.Project{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Version)
	}

	p := normalize(doc.Project)
	if err := p.Validate(); err != nil {
		return store.Project{}, fmt.Errorf("invalid project: %w", err)
	}
	return p, nil
}

// normalize restores the in-memory conventions YAML cannot express: empty
// element lists are non-nil and a missing background kind means none.
func normalize(p store.Project) store.Project {
	for i := range p.Slides {
		s := &p.Slides[i]
		if s.Elements == nil {
			s.Elements = []element.TextElement{}
		}
		if s.Background.Kind == "" {
			s.Background.Kind = store.BackgroundNone
		}
	}
	if p.Slides == nil {
		p.Slides = []store.Slide{}
	}
	return p
}
