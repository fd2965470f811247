package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ivlev/carousel/internal/geometry"
	"gopkg.in/yaml.v3"
)

// Config holds the command line options of a single run.
type Config struct {
	ProjectPath  string
	PanoramaPath string
	Slides       int
	AspectRatio  string
	OutputDir    string
	Width        int
	Workers      int
	Format       string
	Quality      int
	SavePath     string
	LibraryPath  string
	LibraryName  string
	SettingsPath string
	AutoContrast bool
	Debug        bool
	ShowStats    bool
	BuildVersion string
}

// Settings are editor defaults read from an optional YAML file.
type Settings struct {
	AspectRatio  string        `yaml:"aspect_ratio"`
	SlideCount   int           `yaml:"slide_count"`
	DragThrottle time.Duration `yaml:"drag_throttle"`
	ClickSlop    float64       `yaml:"click_slop"`
	ExportWidth  int           `yaml:"export_width"`
	ExportFormat string        `yaml:"export_format"`
	JPEGQuality  int           `yaml:"jpeg_quality"`
	Workers      int           `yaml:"workers"`
	ProjectsDir  string        `yaml:"projects_dir"`
}

var ErrInvalidSettings = errors.New("invalid settings")

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		AspectRatio:  string(geometry.DefaultAspectRatio),
		SlideCount:   5,
		DragThrottle: 16 * time.Millisecond,
		ClickSlop:    3,
		ExportWidth:  1080,
		ExportFormat: "png",
		JPEGQuality:  92,
		Workers:      0,
		ProjectsDir:  "projects",
	}
}

// Load reads settings from path on top of Defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings %q: %w", path, err)
	}
	return s, nil
}

// Save writes settings as YAML.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the editor cannot work with.
func (s Settings) Validate() error {
	if _, err := geometry.ParseAspectRatio(s.AspectRatio); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := geometry.CheckSlideCount(s.SlideCount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.DragThrottle < 0 {
		return fmt.Errorf("%w: negative drag_throttle %v", ErrInvalidSettings, s.DragThrottle)
	}
	if s.ClickSlop < 0 {
		return fmt.Errorf("%w: negative click_slop %v", ErrInvalidSettings, s.ClickSlop)
	}
	if s.ExportWidth < 16 || s.ExportWidth > 8192 {
		return fmt.Errorf("%w: export_width %d out of range [16, 8192]", ErrInvalidSettings, s.ExportWidth)
	}
	switch s.ExportFormat {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("%w: unknown export_format %q", ErrInvalidSettings, s.ExportFormat)
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg_quality %d out of range [1, 100]", ErrInvalidSettings, s.JPEGQuality)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: negative workers %d", ErrInvalidSettings, s.Workers)
	}
	return nil
}
