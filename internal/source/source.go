package source

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the unit of PDF page bounds.
const pointsPerInch = 72

// Source is a paged image provider: a raster file, a directory of them, or a PDF.
type Source interface {
	PageCount() int
	// PageSize is the pixel size RenderPage produces at dpi.
	PageSize(index, dpi int) (width, height int, err error)
	RenderPage(index, dpi int) (image.Image, error)
	Close() error
}

// PDFSource rasterizes pages of a PDF, such as a panorama exported from a
// design tool as one wide page.
type PDFSource struct {
	path string

	mu  sync.Mutex // fitz documents are not safe for concurrent use
	doc *fitz.Document
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{path: path, doc: doc}, nil
}

func (p *PDFSource) PageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.NumPage()
}

func (p *PDFSource) checkPage(index int) error {
	if n := p.doc.NumPage(); index < 0 || index >= n {
		return fmt.Errorf("%s: page %d of %d", p.path, index+1, n)
	}
	return nil
}

func (p *PDFSource) PageSize(index, dpi int) (int, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkPage(index); err != nil {
		return 0, 0, err
	}
	bounds, err := p.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("%s page %d: %w", p.path, index+1, err)
	}
	scale := float64(dpi) / pointsPerInch
	return int(math.Round(float64(bounds.Dx()) * scale)), int(math.Round(float64(bounds.Dy()) * scale)), nil
}

func (p *PDFSource) RenderPage(index, dpi int) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkPage(index); err != nil {
		return nil, err
	}
	img, err := p.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", p.path, index+1, err)
	}
	return img, nil
}

func (p *PDFSource) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Close()
}
