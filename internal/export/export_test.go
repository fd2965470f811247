package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/store"
	"github.com/ivlev/carousel/internal/system"
)

// memLoader serves images from memory.
type memLoader map[string]image.Image

func (m memLoader) Load(ref string) (image.Image, error) {
	img, ok := m[ref]
	if !ok {
		return nil, errors.New("not found: " + ref)
	}
	return img, nil
}

// stripes is a 300x100 panorama: red, green and blue thirds.
func stripes() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 300, 100))
	cols := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	for x := 0; x < 300; x++ {
		for y := 0; y < 100; y++ {
			img.SetRGBA(x, y, cols[x/100])
		}
	}
	return img
}

func panoramaProject(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New("1:1", 3)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := geometry.Slice(3, "1:1")
	if err := s.AssignPanoramaCrops("pano", res.Regions); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderPanoramaCrops(t *testing.T) {
	s := panoramaProject(t)
	r := NewRasterizer(memLoader{"pano": stripes()}, system.NewImagePool())

	want := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	for i, pi := range renderer.ProjectAll(s.Project(), geometry.Size{W: 100, H: 100}) {
		img, err := r.Render(pi)
		if err != nil {
			t.Fatalf("slide %d: Render failed: %v", i, err)
		}
		got := img.RGBAAt(50, 50)
		if got != want[i] {
			t.Errorf("slide %d: expected center %v, got %v", i, want[i], got)
		}
		r.Release(img)
	}
}

func TestRenderWholeImageCover(t *testing.T) {
	slide := store.Slide{
		ID:         "s",
		Background: store.BackgroundRef{Kind: store.BackgroundImage, Ref: "pano"},
	}
	r := NewRasterizer(memLoader{"pano": stripes()}, nil)

	// a square slide shows the middle third of a 3:1 image
	img, err := r.Render(renderer.Project(slide, geometry.Size{W: 100, H: 100}))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(50, 50); got.G != 255 || got.R != 0 {
		t.Errorf("expected green center, got %v", got)
	}
}

func inked(img *image.RGBA, base color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != base {
				n++
			}
		}
	}
	return n
}

func TestRenderText(t *testing.T) {
	body := element.CreateDefault(element.Body, 0, 3)
	body.ID = "b"
	body.Content = "Hello carousel"
	slide := store.Slide{ID: "s", Elements: []element.TextElement{body}}
	base := color.RGBA{R: BaseColor.R, G: BaseColor.G, B: BaseColor.B, A: 255}

	r := NewRasterizer(nil, nil)
	img, err := r.Render(renderer.Project(slide, geometry.Size{W: 540, H: 540}))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if inked(img, base) == 0 {
		t.Fatal("expected text pixels")
	}

	// the top strip is far from the centered body text
	top := img.SubImage(image.Rect(0, 0, 540, 100)).(*image.RGBA)
	if n := inked(top, base); n != 0 {
		t.Errorf("expected no text near the top, got %d pixels", n)
	}

	// hidden elements are not drawn
	slide.Elements[0].Visible = false
	img, _ = r.Render(renderer.Project(slide, geometry.Size{W: 540, H: 540}))
	if n := inked(img, base); n != 0 {
		t.Errorf("hidden element drew %d pixels", n)
	}
}

func TestRenderLetterSpacingAndQR(t *testing.T) {
	cta := element.CreateDefault(element.CallToAction, 0, 3)
	cta.ID = "cta"
	cta.Position = geometry.PercentPoint{X: 50, Y: 30}
	slide := store.Slide{ID: "s", Elements: []element.TextElement{cta}}
	base := color.RGBA{R: BaseColor.R, G: BaseColor.G, B: BaseColor.B, A: 255}
	size := geometry.Size{W: 540, H: 540}

	r := NewRasterizer(nil, nil)
	plain, err := r.Render(renderer.Project(slide, size))
	if err != nil {
		t.Fatal(err)
	}
	withoutQR := inked(plain, base)

	slide.Elements[0].Link = "https://example.com"
	badged, err := r.Render(renderer.Project(slide, size))
	if err != nil {
		t.Fatal(err)
	}
	if withQR := inked(badged, base); withQR <= withoutQR {
		t.Errorf("expected QR badge pixels, got %d vs %d", withQR, withoutQR)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		opacity float64
		want    color.NRGBA
		ok      bool
	}{
		{"#ffffff", 1, color.NRGBA{255, 255, 255, 255}, true},
		{"#fff", 1, color.NRGBA{255, 255, 255, 255}, true},
		{"#112233", 1, color.NRGBA{0x11, 0x22, 0x33, 255}, true},
		{"#00000066", 1, color.NRGBA{0, 0, 0, 0x66}, true},
		{"#000000", 0.5, color.NRGBA{0, 0, 0, 128}, true},
		{"red", 1, color.NRGBA{}, false},
		{"#12345g", 1, color.NRGBA{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in, tt.opacity)
			if (err == nil) != tt.ok {
				t.Fatalf("parseColor(%q) error = %v", tt.in, err)
			}
			if tt.ok && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExportAll(t *testing.T) {
	s := panoramaProject(t)
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []int
	e := NewExporter(NewRasterizer(memLoader{"pano": stripes()}, system.NewImagePool()), Options{
		Dir:     dir,
		Workers: 2,
		Progress: func(done, total int, path string) {
			mu.Lock()
			seen = append(seen, done)
			mu.Unlock()
		},
	})

	results, err := e.ExportAll(context.Background(), renderer.ProjectAll(s.Project(), geometry.Size{W: 120, H: 120}))
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if len(results) != 3 || len(seen) != 3 {
		t.Fatalf("expected 3 results and 3 progress calls, got %d/%d", len(results), len(seen))
	}

	for i, res := range results {
		if res.Index != i || res.SlideID != s.Slides()[i].ID {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if filepath.Base(res.Path) != []string{"slide_01.png", "slide_02.png", "slide_03.png"}[i] {
			t.Errorf("unexpected file name %s", res.Path)
		}
		f, err := os.Open(res.Path)
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil || cfg.Width != 120 || cfg.Height != 120 {
			t.Errorf("%s: expected 120x120 png, got %+v (%v)", res.Path, cfg, err)
		}
	}
}

func TestExportAllFails(t *testing.T) {
	s := panoramaProject(t)
	e := NewExporter(NewRasterizer(memLoader{}, nil), Options{Dir: t.TempDir(), Format: JPEG, Workers: 3})

	if _, err := e.ExportAll(context.Background(), renderer.ProjectAll(s.Project(), geometry.Size{W: 50, H: 50})); err == nil {
		t.Error("expected error for missing panorama")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := NewExporter(NewRasterizer(memLoader{"pano": stripes()}, nil), Options{Dir: t.TempDir()})
	if _, err := ok.ExportAll(ctx, renderer.ProjectAll(s.Project(), geometry.Size{W: 50, H: 50})); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"png": PNG, "JPG": JPEG, "jpeg": JPEG, "": PNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("expected error for gif")
	}
}
