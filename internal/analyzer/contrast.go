package analyzer

import (
	"image"
	"image/color"
	"math"
)

// EdgeDetector finds busy regions with a Sobel gradient, dilation and
// connected components.
type EdgeDetector struct {
	MinArea   int     // minimum region area in pixels²
	Threshold float64 // gradient magnitude threshold
	Radius    int     // dilation radius joining nearby edges
}

var _ Detector = (*EdgeDetector)(nil)

// NewEdgeDetector creates a detector tuned for slide previews around 300px wide.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		MinArea:   400,
		Threshold: 40,
		Radius:    2,
	}
}

// Detect returns busy regions in scan order.
func (d *EdgeDetector) Detect(img image.Image) ([]Region, error) {
	edges := sobel(toGray(img), d.Threshold)
	joined := dilate(edges, d.Radius)

	var regions []Region
	for _, r := range components(joined) {
		if r.Dx()*r.Dy() < d.MinArea {
			continue
		}
		regions = append(regions, Region{Rect: r, Density: density(edges, r)})
	}
	return regions, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.SetGray(x, y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}

// sobel marks pixels whose gradient magnitude exceeds threshold with 255.
func sobel(g *image.Gray, threshold float64) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	at := func(x, y int) float64 { return float64(g.GrayAt(x, y).Y) }

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// dilate grows marked pixels by radius in a square neighborhood.
func dilate(g *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return g
	}
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y == 0 {
				continue
			}
			area := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1).Intersect(b)
			for yy := area.Min.Y; yy < area.Max.Y; yy++ {
				for xx := area.Min.X; xx < area.Max.X; xx++ {
					out.SetGray(xx, yy, color.Gray{Y: 255})
				}
			}
		}
	}
	return out
}

// components returns bounding boxes of 4-connected marked areas.
func components(g *image.Gray) []image.Rectangle {
	b := g.Bounds()
	seen := make([]bool, b.Dx()*b.Dy())
	idx := func(p image.Point) int { return (p.Y-b.Min.Y)*b.Dx() + p.X - b.Min.X }

	var out []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			start := image.Pt(x, y)
			if g.GrayAt(x, y).Y == 0 || seen[idx(start)] {
				continue
			}

			box := image.Rectangle{Min: start, Max: start.Add(image.Pt(1, 1))}
			stack := []image.Point{start}
			seen[idx(start)] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				box = box.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})

				for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
					if !n.In(b) || seen[idx(n)] || g.GrayAt(n.X, n.Y).Y == 0 {
						continue
					}
					seen[idx(n)] = true
					stack = append(stack, n)
				}
			}
			out = append(out, box)
		}
	}
	return out
}

func density(edges *image.Gray, r image.Rectangle) float64 {
	r = r.Intersect(edges.Bounds())
	if r.Empty() {
		return 0
	}
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges.GrayAt(x, y).Y != 0 {
				n++
			}
		}
	}
	return float64(n) / float64(r.Dx()*r.Dy())
}
