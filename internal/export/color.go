package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// parseColor reads #rgb, #rrggbb or #rrggbbaa and applies an extra opacity factor.
func parseColor(hex string, opacity float64) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	alpha := 1.0
	if len(hex) == 9 && hex[0] == '#' {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad alpha in color %q", hex)
		}
		alpha = float64(a) / 255
		hex = hex[:7]
	}

	if !isHexColor(hex) {
		return color.NRGBA{}, fmt.Errorf("bad color %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(alpha*opacity)*255 + 0.5)}, nil
}

// mustColor is parseColor with a fallback for colors that fail to parse.
func mustColor(hex string, opacity float64, fallback color.NRGBA) color.NRGBA {
	c, err := parseColor(hex, opacity)
	if err != nil {
		fallback.A = uint8(clamp01(float64(fallback.A)/255*opacity)*255 + 0.5)
		return fallback
	}
	return c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func isHexColor(s string) bool {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}
