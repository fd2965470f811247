package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestAspectRatioToCSSRatio(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"1:1", 1},
		{"4:5", 0.8},
		{"16:9", 16.0 / 9},
		{"9:16", 9.0 / 16},
		{" 4:5 ", 0.8},
		{"", 1},
		{"0:0", 1},
		{"16:0", 1},
		{"garbage", 1},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := AspectRatioToCSSRatio(tt.token)
			if math.IsNaN(got) || math.IsInf(got, 0) || got <= 0 {
				t.Fatalf("ratio for %q is not finite positive: %v", tt.token, got)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AspectRatioToCSSRatio(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseAspectRatio(t *testing.T) {
	for _, ar := range AspectRatios() {
		got, err := ParseAspectRatio(string(ar))
		if err != nil || got != ar {
			t.Errorf("ParseAspectRatio(%q) = %q, %v", ar, got, err)
		}
	}

	got, err := ParseAspectRatio("5:4:3")
	if !errors.Is(err, ErrUnknownAspectRatio) {
		t.Errorf("expected ErrUnknownAspectRatio, got %v", err)
	}
	if got != DefaultAspectRatio {
		t.Errorf("expected fallback to %s, got %s", DefaultAspectRatio, got)
	}
}

func TestUnitConversions(t *testing.T) {
	if got := UnitFraction(0.25).Percent(); got != 25 {
		t.Errorf("expected 25%%, got %v", got)
	}
	if got := Percent(50).Fraction(); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}

	p := PercentPoint{X: -10, Y: 250}.Clamp()
	if p.X != 0 || p.Y != 100 {
		t.Errorf("expected clamp to {0 100}, got %+v", p)
	}

	px := ToPixels(PercentPoint{X: 50, Y: 25}, Size{W: 200, H: 400})
	if px.X != 100 || px.Y != 100 {
		t.Errorf("expected {100 100}, got %+v", px)
	}

	back := ToPercent(px, Size{W: 200, H: 400})
	if back.X != 50 || back.Y != 25 {
		t.Errorf("expected {50 25}, got %+v", back)
	}

	if got := ToPercent(Point{X: 5, Y: 5}, Size{}); got != (PercentPoint{}) {
		t.Errorf("empty container must map to origin, got %+v", got)
	}
}
