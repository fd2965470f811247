package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
	"github.com/ivlev/carousel/internal/store"
	"gopkg.in/yaml.v3"
)

func sampleProject(t *testing.T) store.Project {
	t.Helper()
	s, err := store.New("4:5", 4)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	res, err := geometry.Slice(4, "4:5")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AssignPanoramaCrops("pano-7.png", res.Regions); err != nil {
		t.Fatal(err)
	}
	slides := s.Slides()
	if err := s.SetSlideBackground(slides[3].ID, "single.png"); err != nil {
		t.Fatal(err)
	}

	for _, k := range element.Kinds() {
		if _, err := s.AddElement(slides[0].ID, k); err != nil {
			t.Fatal(err)
		}
	}
	cta, _ := s.AddElement(slides[1].ID, element.CallToAction)
	link := "https://example.com/shop"
	size := 44.5
	if _, err := s.UpdateElement(slides[1].ID, cta.ID, element.Patch{
		Link:     &link,
		Position: &geometry.PercentPoint{X: 12.345678901, Y: 99.9},
		Style:    &element.StylePatch{FontSize: &size, ClearBackground: true},
	}); err != nil {
		t.Fatal(err)
	}
	return s.Project()
}

func TestProjectWriteRead(t *testing.T) {
	p := sampleProject(t)
	path := filepath.Join(t.TempDir(), "carousel.yaml")

	if err := WriteProject(p, path); err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}
	got, err := ReadProject(path)
	if err != nil {
		t.Fatalf("ReadProject failed: %v", err)
	}

	if !reflect.DeepEqual(p, got) {
		t.Errorf("round trip changed the project\nwant: %+v\ngot:  %+v", p, got)
	}
}

func encode(t *testing.T, doc Document) []byte {
	t.Helper()
	data, err := yaml.Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestUnmarshalNormalizes(t *testing.T) {
	p := sampleProject(t)
	p.Slides[2].Background = store.BackgroundRef{}
	p.Slides[2].Crop = nil
	p.Slides[2].Elements = nil

	// a hand-edited file without an element list or background kind still loads
	got, err := Unmarshal(encode(t, Document{Version: Version, Project: p}))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	s := got.Slides[2]
	if s.Elements == nil {
		t.Error("nil element list after load")
	}
	if s.Background.Kind != store.BackgroundNone {
		t.Errorf("expected background kind none, got %q", s.Background.Kind)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	p := sampleProject(t)

	badAspect := p.Clone()
	badAspect.AspectRatio = "7:1"
	short := p.Clone()
	short.Slides = short.Slides[:2]

	tests := []struct {
		name string
		data []byte
	}{
		{"aspect", encode(t, Document{Version: Version, Project: badAspect})},
		{"count", encode(t, Document{Version: Version, Project: short})},
		{"garbage", []byte("::: not yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	old := encode(t, Document{Version: "0.1", Project: p})
	if _, err := Unmarshal(old); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestGenerateProjectPath(t *testing.T) {
	path := GenerateProjectPath("out")

	if !strings.HasPrefix(path, filepath.Join("out", "carousel_")) || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("unexpected path: %s", path)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestProject(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "carousel_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "carousel_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "carousel_2026-02-11_15-30-00.yaml"),
	}

	for i, f := range files {
		if err := os.WriteFile(f, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatestProject(dir)
	if err != nil {
		t.Fatalf("FindLatestProject failed: %v", err)
	}

	t.Logf("Latest project: %s", latest)

	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}

	if _, err := FindLatestProject(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}
}
