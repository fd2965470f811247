package export

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ivlev/carousel/internal/renderer"
	"golang.org/x/sync/errgroup"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts png, jpeg and jpg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png", "":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// Options control a batch export.
type Options struct {
	Dir     string
	Prefix  string
	Format  Format
	Quality int
	Workers int
	// Progress is called after each slide is written; calls may come from several goroutines.
	Progress func(done, total int, path string)
}

// Result is one written slide.
type Result struct {
	Index   int
	SlideID string
	Path    string
}

// Exporter writes slides to image files in parallel.
type Exporter struct {
	r    *Rasterizer
	opts Options
}

func NewExporter(r *Rasterizer, opts Options) *Exporter {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Prefix == "" {
		opts.Prefix = "slide"
	}
	if opts.Format == "" {
		opts.Format = PNG
	}
	if opts.Quality <= 0 {
		opts.Quality = 92
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Exporter{r: r, opts: opts}
}

// ExportAll rasterizes and writes every slide. Results are in slide order.
// The first failure cancels the remaining work.
func (e *Exporter) ExportAll(ctx context.Context, slides []renderer.PaintInstructions) ([]Result, error) {
	if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	results := make([]Result, len(slides))
	var done atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, pi := range slides {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(e.opts.Dir, fmt.Sprintf("%s_%02d%s", e.opts.Prefix, i+1, e.opts.Format.Ext()))
			if err := e.exportOne(pi, path); err != nil {
				return err
			}
			results[i] = Result{Index: i, SlideID: pi.SlideID, Path: path}

			n := done.Add(1)
			if e.opts.Progress != nil {
				e.opts.Progress(int(n), len(slides), path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) exportOne(pi renderer.PaintInstructions, path string) error {
	img, err := e.r.Render(pi)
	if err != nil {
		return err
	}
	defer e.r.Release(img)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, e.opts.Format, e.opts.Quality); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		return png.Encode(w, img)
	}
	return fmt.Errorf("unknown export format %q", f)
}
