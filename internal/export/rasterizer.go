package export

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/source"
	"github.com/ivlev/carousel/internal/store"
	"github.com/ivlev/carousel/internal/system"
	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

var (
	// BaseColor fills slides before the background is drawn.
	BaseColor = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}

	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
)

const (
	// qrSize is the CTA badge edge at element.ReferenceWidth.
	qrSize = 180
	// wrapRatio is the share of the slide width a text block may take.
	wrapRatio = 0.86
)

// Rasterizer draws paint instructions onto RGBA canvases.
type Rasterizer struct {
	loader source.Loader
	pool   *system.ImagePool
}

// NewRasterizer creates a rasterizer. A nil pool uses fresh canvases.
func NewRasterizer(loader source.Loader, pool *system.ImagePool) *Rasterizer {
	return &Rasterizer{loader: loader, pool: pool}
}

// Render draws one slide. The caller owns the canvas and should hand it back with Release.
func (r *Rasterizer) Render(pi renderer.PaintInstructions) (*image.RGBA, error) {
	w, h := int(math.Round(pi.Size.W)), int(math.Round(pi.Size.H))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("slide %s: empty canvas %vx%v", pi.SlideID, pi.Size.W, pi.Size.H)
	}

	rect := image.Rect(0, 0, w, h)
	var canvas *image.RGBA
	if r.pool != nil {
		canvas = r.pool.Get(rect)
	} else {
		canvas = image.NewRGBA(rect)
	}

	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(BaseColor)
	dc.Clear()

	if err := r.drawBackground(canvas, pi.Background); err != nil {
		r.Release(canvas)
		return nil, fmt.Errorf("slide %s: %w", pi.SlideID, err)
	}
	for _, e := range pi.Elements {
		if err := drawElement(dc, e); err != nil {
			r.Release(canvas)
			return nil, fmt.Errorf("slide %s element %s: %w", pi.SlideID, e.ID, err)
		}
	}
	return canvas, nil
}

// Release returns a canvas from Render to the pool.
func (r *Rasterizer) Release(img *image.RGBA) {
	if r.pool != nil {
		r.pool.Put(img)
	}
}

func (r *Rasterizer) drawBackground(dst *image.RGBA, bg renderer.Background) error {
	if bg.Kind == store.BackgroundNone || bg.Kind == "" || bg.Ref == "" {
		return nil
	}
	if r.loader == nil {
		return fmt.Errorf("no image loader for background %s", bg.Ref)
	}
	src, err := r.loader.Load(bg.Ref)
	if err != nil {
		return err
	}

	if bg.Kind == store.BackgroundImage {
		// whole-slide images fill the slide without distortion
		sr := coverRect(src.Bounds(), dst.Bounds().Size())
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, xdraw.Over, nil)
		return nil
	}

	dr := image.Rect(
		int(math.Round(bg.Offset.X)),
		int(math.Round(bg.Offset.Y)),
		int(math.Round(bg.Offset.X+bg.Scaled.W)),
		int(math.Round(bg.Offset.Y+bg.Scaled.H)),
	)
	xdraw.CatmullRom.Scale(dst, dr, src, src.Bounds(), xdraw.Over, nil)
	return nil
}

// coverRect returns the centered part of src with the aspect of size.
func coverRect(src image.Rectangle, size image.Point) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	want := float64(size.X) / float64(size.Y)
	if sw/sh > want {
		cw := int(math.Round(sh * want))
		x := src.Min.X + (src.Dx()-cw)/2
		return image.Rect(x, src.Min.Y, x+cw, src.Max.Y)
	}
	ch := int(math.Round(sw / want))
	y := src.Min.Y + (src.Dy()-ch)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+ch)
}

// textBlock is an element's wrapped text measured in canvas pixels.
type textBlock struct {
	lines   []string
	widths  []float64
	width   float64
	lineH   float64
	height  float64
	spacing float64
}

func measure(dc *gg.Context, e renderer.ElementPaint, maxWidth float64) textBlock {
	s := e.Style
	b := textBlock{
		spacing: s.LetterSpacing * e.Scale,
		lineH:   s.FontSize * e.Scale * s.LineHeight,
	}
	if b.lineH <= 0 {
		b.lineH = s.FontSize * e.Scale
	}

	b.lines = dc.WordWrap(e.Content, maxWidth)
	for _, line := range b.lines {
		w := lineWidth(dc, line, b.spacing)
		b.widths = append(b.widths, w)
		b.width = math.Max(b.width, w)
	}
	b.height = b.lineH * float64(len(b.lines))
	return b
}

func lineWidth(dc *gg.Context, line string, spacing float64) float64 {
	if spacing == 0 {
		w, _ := dc.MeasureString(line)
		return w
	}
	total := 0.0
	n := 0
	for _, r := range line {
		w, _ := dc.MeasureString(string(r))
		total += w
		n++
	}
	if n > 1 {
		total += spacing * float64(n-1)
	}
	return total
}

func drawElement(dc *gg.Context, e renderer.ElementPaint) error {
	s := e.Style
	face, err := faceFor(s.FontWeight, s.FontSize*e.Scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	b := measure(dc, e, float64(dc.Width())*wrapRatio)
	left := e.Anchor.X - b.width/2
	top := e.Anchor.Y - b.height/2

	if s.Background != nil {
		pad := s.Background.Padding * e.Scale
		dc.SetColor(mustColor(s.Background.Color, s.Opacity, black))
		dc.DrawRoundedRectangle(left-pad, top-pad, b.width+2*pad, b.height+2*pad, s.Background.Radius*e.Scale)
		dc.Fill()
	}

	if s.Shadow != nil {
		sh := s.Shadow
		base := mustColor(sh.Color, s.Opacity, black)
		dx, dy := sh.OffsetX*e.Scale, sh.OffsetY*e.Scale
		blur := sh.Blur * e.Scale
		if blur < 1 {
			dc.SetColor(base)
			drawLines(dc, e, b, left+dx, top+dy)
		} else {
			// approximate blur with a ring of faint copies
			base.A /= 4
			dc.SetColor(base)
			for _, o := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				drawLines(dc, e, b, left+dx+o[0]*blur/2, top+dy+o[1]*blur/2)
			}
		}
	}

	dc.SetColor(mustColor(s.Color, s.Opacity, white))
	drawLines(dc, e, b, left, top)

	if e.Kind == element.CallToAction && e.Link != "" {
		pad := 0.0
		if s.Background != nil {
			pad = s.Background.Padding * e.Scale
		}
		return drawQR(dc, e, top-pad, top+b.height+pad)
	}
	return nil
}

func drawLines(dc *gg.Context, e renderer.ElementPaint, b textBlock, left, top float64) {
	for i, line := range b.lines {
		x := left
		switch e.Style.Align {
		case element.AlignCenter, "":
			x = left + (b.width-b.widths[i])/2
		case element.AlignRight:
			x = left + b.width - b.widths[i]
		}
		y := top + b.lineH*(float64(i)+0.5)

		if b.spacing == 0 {
			dc.DrawStringAnchored(line, x, y, 0, 0.35)
			continue
		}
		for _, r := range line {
			ch := string(r)
			dc.DrawStringAnchored(ch, x, y, 0, 0.35)
			w, _ := dc.MeasureString(ch)
			x += w + b.spacing
		}
	}
}

// drawQR places a QR badge for the element link below the element, or above
// it when there is no room below.
func drawQR(dc *gg.Context, e renderer.ElementPaint, blockTop, blockBottom float64) error {
	size := int(math.Round(qrSize * e.Scale))
	if size < 21 {
		size = 21
	}
	q, err := qrcode.New(e.Link, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr for %q: %w", e.Link, err)
	}
	img := q.Image(size)

	gap := 16 * e.Scale
	y := blockBottom + gap
	if y+float64(size) > float64(dc.Height()) {
		y = blockTop - gap - float64(size)
	}
	dc.DrawImageAnchored(img, int(math.Round(e.Anchor.X)), int(math.Round(y)), 0.5, 0)
	return nil
}
