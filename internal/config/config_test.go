package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if s != Defaults() {
		t.Errorf("expected defaults, got %+v", s)
	}

	if s, err := Load(""); err != nil || s != Defaults() {
		t.Errorf("empty path: expected defaults, got %+v, %v", s, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := "aspect_ratio: \"4:5\"\nslide_count: 8\ndrag_throttle: 33ms\nexport_format: jpeg\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.AspectRatio != "4:5" || s.SlideCount != 8 || s.DragThrottle != 33*time.Millisecond || s.ExportFormat != "jpeg" {
		t.Errorf("overrides not applied: %+v", s)
	}
	if s.ExportWidth != 1080 || s.JPEGQuality != 92 {
		t.Errorf("unset fields must keep defaults: %+v", s)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	want := Defaults()
	want.Workers = 3
	want.ClickSlop = 5.5

	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"aspect", func(s *Settings) { s.AspectRatio = "5:1" }},
		{"slides low", func(s *Settings) { s.SlideCount = 2 }},
		{"slides high", func(s *Settings) { s.SlideCount = 21 }},
		{"throttle", func(s *Settings) { s.DragThrottle = -time.Millisecond }},
		{"slop", func(s *Settings) { s.ClickSlop = -1 }},
		{"width", func(s *Settings) { s.ExportWidth = 4 }},
		{"format", func(s *Settings) { s.ExportFormat = "gif" }},
		{"quality", func(s *Settings) { s.JPEGQuality = 0 }},
		{"workers", func(s *Settings) { s.Workers = -2 }},
	}

	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	os.WriteFile(path, []byte("slide_count: 40\n"), 0644)

	if _, err := Load(path); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
