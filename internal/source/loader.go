package source

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultDPI is used to rasterize PDF pages.
const DefaultDPI = 150

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Loader resolves background references to decoded images.
type Loader interface {
	Load(ref string) (image.Image, error)
}

// ParseRef splits a reference of the form "path" or "path.pdf#N" where N is a
// 1-based page number.
func ParseRef(ref string) (path string, page int, err error) {
	path = ref
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		n, err := strconv.Atoi(ref[i+1:])
		if err != nil || n < 1 {
			return "", 0, fmt.Errorf("bad page in reference %q", ref)
		}
		path, page = ref[:i], n-1
	}
	if path == "" {
		return "", 0, fmt.Errorf("empty reference")
	}
	return path, page, nil
}

// Open picks a Source implementation by file extension.
func Open(path string) (Source, error) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		return NewPDFSource(path)
	case IsRaster(path):
		return NewImageSource(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FileLoader loads references relative to a base directory and caches the
// decoded images. Safe for concurrent use: concurrent loads of the same
// reference share one decode, and every decode opens its own Source, so
// export workers rendering different PDFs never share a document handle.
type FileLoader struct {
	dir string
	dpi int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewFileLoader creates a loader rooted at dir. dpi <= 0 selects DefaultDPI.
func NewFileLoader(dir string, dpi int) *FileLoader {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FileLoader{dir: dir, dpi: dpi, cache: make(map[string]image.Image)}
}

func (l *FileLoader) resolve(path string) string {
	if filepath.IsAbs(path) || l.dir == "" {
		return path
	}
	return filepath.Join(l.dir, path)
}

// Load returns the decoded image for ref.
func (l *FileLoader) Load(ref string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.cache[ref]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := l.group.Do(ref, func() (interface{}, error) {
		img, err := l.decode(ref)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[ref] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (l *FileLoader) decode(ref string) (image.Image, error) {
	path, page, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	src, err := Open(l.resolve(path))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if page >= src.PageCount() {
		return nil, fmt.Errorf("%s: page %d of %d", ref, page+1, src.PageCount())
	}
	return src.RenderPage(page, l.dpi)
}

// Dimensions returns the pixel size of ref without caching a decode.
func (l *FileLoader) Dimensions(ref string) (width, height int, err error) {
	l.mu.RLock()
	img, ok := l.cache[ref]
	l.mu.RUnlock()
	if ok {
		b := img.Bounds()
		return b.Dx(), b.Dy(), nil
	}

	path, page, err := ParseRef(ref)
	if err != nil {
		return 0, 0, err
	}
	src, err := Open(l.resolve(path))
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	if page >= src.PageCount() {
		return 0, 0, fmt.Errorf("%s: page %d of %d", ref, page+1, src.PageCount())
	}
	return src.PageSize(page, l.dpi)
}

// Forget drops every cached image.
func (l *FileLoader) Forget() {
	l.mu.Lock()
	l.cache = make(map[string]image.Image)
	l.mu.Unlock()
}
