package geometry

// UnitFraction is a normalized coordinate in [0,1] (crop regions).
type UnitFraction float64

// Percent is a normalized coordinate in [0,100] (text element positions).
type Percent float64

// Percent converts a fraction to a percentage of the same extent.
func (u UnitFraction) Percent() Percent {
	return Percent(float64(u) * 100)
}

// Fraction converts a percentage to a fraction of the same extent.
func (p Percent) Fraction() UnitFraction {
	return UnitFraction(float64(p) / 100)
}

// Clamp bounds the fraction to [0,1].
func (u UnitFraction) Clamp() UnitFraction {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

// Clamp bounds the percentage to [0,100].
func (p Percent) Clamp() Percent {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// PercentPoint is a position inside a slide box expressed in percent of its size.
type PercentPoint struct {
	X Percent `yaml:"x" json:"x"`
	Y Percent `yaml:"y" json:"y"`
}

// Clamp bounds both axes to [0,100].
func (p PercentPoint) Clamp() PercentPoint {
	return PercentPoint{X: p.X.Clamp(), Y: p.Y.Clamp()}
}

// Point is a pixel position or vector.
type Point struct {
	X float64
	Y float64
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is a pixel extent.
type Size struct {
	W float64
	H float64
}

// Empty reports whether the size cannot host a coordinate mapping.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Box is a pixel rectangle, typically the on-screen slide container.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Origin returns the top-left corner of the box.
func (b Box) Origin() Point { return Point{X: b.X, Y: b.Y} }

// Size returns the extent of the box.
func (b Box) Size() Size { return Size{W: b.W, H: b.H} }

// ToPixels maps a percent position to a pixel offset inside a container of the given size.
func ToPixels(p PercentPoint, s Size) Point {
	return Point{
		X: float64(p.X) / 100 * s.W,
		Y: float64(p.Y) / 100 * s.H,
	}
}

// ToPercent maps a pixel offset inside a container to a clamped percent position.
// An empty container maps everything to the origin.
func ToPercent(px Point, s Size) PercentPoint {
	if s.Empty() {
		return PercentPoint{}
	}
	return PercentPoint{
		X: Percent(px.X / s.W * 100),
		Y: Percent(px.Y / s.H * 100),
	}.Clamp()
}
