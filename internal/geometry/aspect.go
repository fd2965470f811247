package geometry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAspectRatio is a non-fatal signal: the token was replaced by DefaultAspectRatio.
var ErrUnknownAspectRatio = errors.New("unknown aspect ratio")

// AspectRatio is one of the supported slide format tokens.
type AspectRatio string

const (
	Square    AspectRatio = "1:1"
	Portrait  AspectRatio = "4:5"
	Landscape AspectRatio = "16:9"
	Story     AspectRatio = "9:16"
	Classic   AspectRatio = "3:4"
	Photo     AspectRatio = "4:3"
	Tall      AspectRatio = "2:3"
	Wide      AspectRatio = "3:2"

	DefaultAspectRatio = Square
)

// ratios holds width/height for every supported token.
var ratios = map[AspectRatio][2]int{
	Square:    {1, 1},
	Portrait:  {4, 5},
	Landscape: {16, 9},
	Story:     {9, 16},
	Classic:   {3, 4},
	Photo:     {4, 3},
	Tall:      {2, 3},
	Wide:      {3, 2},
}

// AspectRatios lists the supported tokens in display order.
func AspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Story, Classic, Photo, Tall, Wide}
}

// ParseAspectRatio resolves a token. Unknown tokens resolve to DefaultAspectRatio
// together with an error wrapping ErrUnknownAspectRatio; the returned ratio is
// always usable.
func ParseAspectRatio(token string) (AspectRatio, error) {
	ar := AspectRatio(strings.TrimSpace(token))
	if _, ok := ratios[ar]; ok {
		return ar, nil
	}
	return DefaultAspectRatio, fmt.Errorf("%w %q, using %s", ErrUnknownAspectRatio, token, DefaultAspectRatio)
}

// Valid reports whether the token is supported.
func (a AspectRatio) Valid() bool {
	_, ok := ratios[a]
	return ok
}

// Ratio returns width/height of the token, 1 for unknown tokens.
func (a AspectRatio) Ratio() float64 {
	wh, ok := ratios[a]
	if !ok {
		return 1
	}
	return float64(wh[0]) / float64(wh[1])
}

// AspectRatioToCSSRatio maps a token to the numeric width/height ratio used to
// size the slide box. It is total: unknown input yields 1.
func AspectRatioToCSSRatio(token string) float64 {
	return AspectRatio(strings.TrimSpace(token)).Ratio()
}

// CSS returns the CSS aspect-ratio value for the token, e.g. "4 / 5".
func (a AspectRatio) CSS() string {
	wh, ok := ratios[a]
	if !ok {
		return "1 / 1"
	}
	return fmt.Sprintf("%d / %d", wh[0], wh[1])
}
