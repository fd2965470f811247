package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestSliceCoversPanorama(t *testing.T) {
	tokens := []string{"1:1", "4:5", "16:9", "9:16", "bogus"}

	for n := MinSlides; n <= MaxSlides; n++ {
		for _, token := range tokens {
			res, err := Slice(n, token)
			if err != nil {
				t.Fatalf("Slice(%d, %q) failed: %v", n, token, err)
			}
			if len(res.Regions) != n {
				t.Fatalf("Slice(%d, %q): expected %d regions, got %d", n, token, n, len(res.Regions))
			}

			sum := 0.0
			for i, r := range res.Regions {
				wantX := UnitFraction(float64(i) / float64(n))
				if r.X != wantX {
					t.Errorf("n=%d region %d: expected x=%v, got %v", n, i, wantX, r.X)
				}
				if r.Y != 0 || r.Height != 1 {
					t.Errorf("n=%d region %d: expected y=0 height=1, got y=%v height=%v", n, i, r.Y, r.Height)
				}
				if r.X+r.Width > 1 || r.Y+r.Height > 1 {
					t.Errorf("n=%d region %d exceeds source: %+v", n, i, r)
				}
				if !r.Valid() {
					t.Errorf("n=%d region %d invalid: %+v", n, i, r)
				}
				if i > 0 {
					prev := res.Regions[i-1]
					if math.Abs(float64(prev.X+prev.Width-r.X)) > 1e-12 {
						t.Errorf("n=%d gap/overlap between %d and %d", n, i-1, i)
					}
				}
				sum += float64(r.Width)
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("n=%d: widths sum to %.17f", n, sum)
			}
		}
	}
}

func TestSliceThreeSquare(t *testing.T) {
	res, err := Slice(3, "1:1")
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}

	want := []Rect{
		{X: 0, Y: 0, Width: 1.0 / 3, Height: 1},
		{X: 1.0 / 3, Y: 0, Width: 1.0 / 3, Height: 1},
		{X: 2.0 / 3, Y: 0, Width: 1.0 / 3, Height: 1},
	}
	for i, r := range res.Regions {
		if math.Abs(float64(r.X-want[i].X)) > 1e-15 || math.Abs(float64(r.Width-want[i].Width)) > 1e-15 {
			t.Errorf("region %d: expected %+v, got %+v", i, want[i], r)
		}
	}
}

func TestSliceRejectsCount(t *testing.T) {
	for _, n := range []int{-1, 0, 2, 21, 100} {
		_, err := Slice(n, "1:1")
		if !errors.Is(err, ErrInvalidSlideCount) {
			t.Errorf("Slice(%d): expected ErrInvalidSlideCount, got %v", n, err)
		}
	}
}

func TestSliceUnknownRatioWarns(t *testing.T) {
	res, err := Slice(4, "7:3")
	if err != nil {
		t.Fatalf("unknown ratio must not be fatal: %v", err)
	}
	if !errors.Is(res.Warning, ErrUnknownAspectRatio) {
		t.Errorf("expected ErrUnknownAspectRatio warning, got %v", res.Warning)
	}
	if res.Ratio != DefaultAspectRatio {
		t.Errorf("expected fallback %s, got %s", DefaultAspectRatio, res.Ratio)
	}
	if len(res.Regions) != 4 {
		t.Errorf("expected 4 regions, got %d", len(res.Regions))
	}
}

func TestPanoramaSize(t *testing.T) {
	tests := []struct {
		n      int
		token  string
		height int
		wantW  int
	}{
		{3, "1:1", 1080, 3240},
		{5, "4:5", 1350, 5400},
		{4, "9:16", 1920, 4320},
		{3, "nope", 100, 300},
	}

	for _, tt := range tests {
		w, h, err := PanoramaSize(tt.n, tt.token, tt.height)
		if err != nil {
			t.Fatalf("PanoramaSize(%d, %q) failed: %v", tt.n, tt.token, err)
		}
		if w != tt.wantW || h != tt.height {
			t.Errorf("PanoramaSize(%d, %q, %d) = %dx%d, want %dx%d", tt.n, tt.token, tt.height, w, h, tt.wantW, tt.height)
		}
	}

	if _, _, err := PanoramaSize(3, "1:1", 0); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestCheckPanorama(t *testing.T) {
	dev, err := CheckPanorama(3240, 1080, 3, "1:1")
	if err != nil {
		t.Fatalf("CheckPanorama failed: %v", err)
	}
	if dev > 1e-9 {
		t.Errorf("expected exact match, got deviation %f", dev)
	}

	dev, err = CheckPanorama(3000, 1000, 3, "4:5")
	if err != nil {
		t.Fatalf("CheckPanorama failed: %v", err)
	}
	// segment is 1:1 against a 0.8 target
	if math.Abs(dev-0.25) > 1e-9 {
		t.Errorf("expected deviation 0.25, got %f", dev)
	}

	if _, err := CheckPanorama(0, 10, 3, "1:1"); err == nil {
		t.Error("expected error for empty panorama")
	}
}
