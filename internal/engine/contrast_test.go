package engine

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/carousel/internal/analyzer"
	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/export"
)

type memLoader map[string]image.Image

func (m memLoader) Load(ref string) (image.Image, error) {
	img, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("no image %s", ref)
	}
	return img, nil
}

func fill(size int, at func(x, y int) color.Gray) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, at(x, y))
		}
	}
	return img
}

func TestAutoContrast(t *testing.T) {
	loader := memLoader{
		"white.png": fill(contrastWidth, func(int, int) color.Gray { return color.Gray{Y: 250} }),
		"stripes.png": fill(contrastWidth, func(x, _ int) color.Gray {
			if (x/4)%2 == 0 {
				return color.Gray{}
			}
			return color.Gray{Y: 255}
		}),
	}

	c := newComposer(t, "1:1", 3)
	if _, err := c.ApplySlideBackgrounds([]string{"white.png", "stripes.png"}); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, s := range c.Store().Slides() {
		el, err := c.Store().AddElement(s.ID, element.Body)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, el.ID)
	}

	changed, err := c.AutoContrast(export.NewRasterizer(loader, nil))
	if err != nil {
		t.Fatalf("AutoContrast failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("expected 2 changed elements, got %d", changed)
	}

	slides := c.Store().Slides()

	light, _ := c.Store().Element(slides[0].ID, ids[0])
	if light.Style.Color != analyzer.DarkText {
		t.Errorf("expected dark text over white, got %s", light.Style.Color)
	}
	if light.Style.Shadow != nil {
		t.Error("plain background should not add a shadow")
	}

	busy, _ := c.Store().Element(slides[1].ID, ids[1])
	if busy.Style.Color != analyzer.LightText {
		t.Errorf("expected light text over stripes, got %s", busy.Style.Color)
	}
	if busy.Style.Shadow == nil {
		t.Error("busy background should add a shadow")
	}

	bare, _ := c.Store().Element(slides[2].ID, ids[2])
	if bare.Style.Color != "#ffffff" || bare.Style.Shadow != nil {
		t.Errorf("slide without background should be untouched: %+v", bare.Style)
	}
}

func TestAutoContrastMissingImage(t *testing.T) {
	c := newComposer(t, "1:1", 3)
	if _, err := c.ApplySlideBackgrounds([]string{"gone.png"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Store().AddElement(c.Store().Slides()[0].ID, element.Body); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AutoContrast(export.NewRasterizer(memLoader{}, nil)); err == nil {
		t.Error("expected error for a missing background image")
	}
}
