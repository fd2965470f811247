package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/export"
	"github.com/ivlev/carousel/internal/geometry"
	"github.com/ivlev/carousel/internal/interact"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/snapshot"
	"github.com/ivlev/carousel/internal/store"
)

// PanoramaTolerance is the relative size deviation above which a panorama is
// reported as not matching the requested slide aspect.
const PanoramaTolerance = 0.02

var ErrAspectMismatch = errors.New("panorama does not match slide aspect")

// PanoramaResult is what a panorama generator hands back.
type PanoramaResult struct {
	ImageRef             string
	RequestedAspectRatio string
	SlideCount           int
}

// PanoramaApplied reports a panorama assignment. Warnings are non-fatal: an
// unknown ratio token, a ratio that differs from the project, or a panorama
// whose size does not match.
type PanoramaApplied struct {
	Ratio    geometry.AspectRatio
	Slides   int
	Warnings []error
}

// SlideBackgroundResult is a per-slide background from a generator.
type SlideBackgroundResult struct {
	SlideID  string
	ImageRef string
}

// Prober reports the pixel size of an image reference.
type Prober interface {
	Dimensions(ref string) (width, height int, err error)
}

// Composer ties the slide store, the interaction controller and projection
// together for one open project.
type Composer struct {
	settings config.Settings
	prober   Prober

	store    *store.Store
	ctrl     *interact.Controller
	warnings []error
}

// Option configures a Composer.
type Option func(*Composer)

// WithProber lets ApplyPanorama check the generated image size.
func WithProber(p Prober) Option {
	return func(c *Composer) { c.prober = p }
}

// NewComposer starts a new project from settings. An unknown aspect ratio
// falls back to the default and is reported by Warnings.
func NewComposer(settings config.Settings, opts ...Option) (*Composer, error) {
	ar, warn := geometry.ParseAspectRatio(settings.AspectRatio)
	s, err := store.New(ar, settings.SlideCount)
	if err != nil {
		return nil, err
	}
	c := &Composer{settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	c.attach(s)
	if warn != nil {
		c.warnings = append(c.warnings, warn)
		logDebug("[!] %v", warn)
	}
	return c, nil
}

// OpenComposer opens an existing project.
func OpenComposer(p store.Project, settings config.Settings, opts ...Option) (*Composer, error) {
	s, err := store.FromProject(p)
	if err != nil {
		return nil, err
	}
	c := &Composer{settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	c.attach(s)
	return c, nil
}

func (c *Composer) attach(s *store.Store) {
	if c.ctrl != nil {
		c.ctrl.Cancel()
	}
	c.store = s
	c.ctrl = interact.NewController(s,
		interact.WithThrottle(c.settings.DragThrottle),
		interact.WithClickSlop(c.settings.ClickSlop),
	)
	s.Subscribe(c.ctrl)
}

// Store returns the slide store of the open project.
func (c *Composer) Store() *store.Store { return c.store }

// Controller returns the interaction controller of the open project.
func (c *Composer) Controller() *interact.Controller { return c.ctrl }

// Warnings returns the non-fatal problems found while setting up the project.
func (c *Composer) Warnings() []error { return c.warnings }

// ApplyPanorama slices the panorama and assigns one region per slide.
func (c *Composer) ApplyPanorama(res PanoramaResult) (PanoramaApplied, error) {
	slicing, err := geometry.Slice(res.SlideCount, res.RequestedAspectRatio)
	if err != nil {
		return PanoramaApplied{}, err
	}
	if err := c.store.AssignPanoramaCrops(res.ImageRef, slicing.Regions); err != nil {
		return PanoramaApplied{}, err
	}

	var warnings []error
	if slicing.Warning != nil {
		warnings = append(warnings, slicing.Warning)
	}
	if slicing.Ratio != c.store.AspectRatio() {
		warnings = append(warnings, fmt.Errorf("panorama sliced for %s, project is %s", slicing.Ratio, c.store.AspectRatio()))
	}
	if c.prober != nil {
		if w, h, err := c.prober.Dimensions(res.ImageRef); err != nil {
			warnings = append(warnings, fmt.Errorf("probe %s: %w", res.ImageRef, err))
		} else if dev, err := geometry.CheckPanorama(w, h, res.SlideCount, string(slicing.Ratio)); err == nil && math.Abs(dev) > PanoramaTolerance {
			warnings = append(warnings, fmt.Errorf("%w: %dx%d deviates %.1f%% for %d slides of %s",
				ErrAspectMismatch, w, h, dev*100, res.SlideCount, slicing.Ratio))
		}
	}

	logDebug("[*] Panorama %s assigned to %d slides", res.ImageRef, res.SlideCount)
	for _, w := range warnings {
		logDebug("[!] %v", w)
	}
	return PanoramaApplied{Ratio: slicing.Ratio, Slides: len(slicing.Regions), Warnings: warnings}, nil
}

// ApplySlideBackground assigns a whole-slide image.
func (c *Composer) ApplySlideBackground(res SlideBackgroundResult) error {
	if err := c.store.SetSlideBackground(res.SlideID, res.ImageRef); err != nil {
		return err
	}
	logDebug("[*] Background %s assigned to slide %s", res.ImageRef, res.SlideID)
	return nil
}

// ApplySlideBackgrounds assigns images to slides in order, as many as both sides have.
func (c *Composer) ApplySlideBackgrounds(refs []string) (int, error) {
	slides := c.store.Slides()
	n := min(len(refs), len(slides))
	for i := 0; i < n; i++ {
		if err := c.ApplySlideBackground(SlideBackgroundResult{SlideID: slides[i].ID, ImageRef: refs[i]}); err != nil {
			return i, err
		}
	}
	return n, nil
}

// SlideSize is the pixel size of a slide at the given width for the project aspect.
func (c *Composer) SlideSize(width float64) geometry.Size {
	return renderer.SlideSize(width, string(c.store.AspectRatio()))
}

// Paint projects one slide, including the live frame of an active drag on it.
func (c *Composer) Paint(slideID string, size geometry.Size) (renderer.PaintInstructions, error) {
	slide, ok := c.store.Slide(slideID)
	if !ok {
		return renderer.PaintInstructions{}, fmt.Errorf("%w: %s", store.ErrUnknownSlide, slideID)
	}

	var opts []renderer.Option
	if s, ok := c.ctrl.Session(); ok && s.SlideID == slideID && c.ctrl.State() == interact.StateDragging {
		if live, ok := c.ctrl.LiveFrame(); ok {
			opts = append(opts, renderer.WithLiveFrame(s.ElementID, live))
		}
	}
	return renderer.Project(slide, size, opts...), nil
}

// PaintAll projects every slide at the given width, committed state only.
func (c *Composer) PaintAll(width float64) []renderer.PaintInstructions {
	return renderer.ProjectAll(c.store.Project(), c.SlideSize(width))
}

// Export writes every slide with the exporter.
func (c *Composer) Export(ctx context.Context, e *export.Exporter, width float64) ([]export.Result, error) {
	return e.ExportAll(ctx, c.PaintAll(width))
}

// Snapshot serializes the open project.
func (c *Composer) Snapshot() ([]byte, error) {
	return snapshot.Marshal(c.store.Project())
}

// Restore replaces the open project with a serialized one. Any drag or edit
// state of the previous project is dropped.
func (c *Composer) Restore(data []byte) error {
	p, err := snapshot.Unmarshal(data)
	if err != nil {
		return err
	}
	s, err := store.FromProject(p)
	if err != nil {
		return err
	}
	c.attach(s)
	return nil
}

// Save writes the open project to a YAML file.
func (c *Composer) Save(path string) error {
	return snapshot.WriteProject(c.store.Project(), path)
}
