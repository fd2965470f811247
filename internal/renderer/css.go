package renderer

import (
	"fmt"
	"strings"

	"github.com/ivlev/carousel/internal/store"
)

// BackgroundCSS builds inline CSS declarations for the slide background.
func BackgroundCSS(bg Background) string {
	if bg.Kind == store.BackgroundNone || bg.Kind == "" || bg.Ref == "" {
		return "background:none"
	}
	return fmt.Sprintf("background-image:url(%q);background-repeat:no-repeat;background-position:%.4f%% %.4f%%;background-size:%.4f%% %.4f%%",
		bg.Ref, float64(bg.PositionX), float64(bg.PositionY), float64(bg.SizeW), float64(bg.SizeH))
}

// ElementCSS builds inline CSS declarations that center an element on its anchor.
func ElementCSS(e ElementPaint) string {
	s := e.Style
	decl := []string{
		"position:absolute",
		fmt.Sprintf("left:%.2fpx", e.Anchor.X),
		fmt.Sprintf("top:%.2fpx", e.Anchor.Y),
		"transform:translate(-50%,-50%)",
		fmt.Sprintf("font-size:%.2fpx", s.FontSize*e.Scale),
		fmt.Sprintf("font-weight:%d", s.FontWeight),
		fmt.Sprintf("color:%s", s.Color),
		fmt.Sprintf("text-align:%s", s.Align),
		fmt.Sprintf("line-height:%.2f", s.LineHeight),
		fmt.Sprintf("letter-spacing:%.2fpx", s.LetterSpacing*e.Scale),
		fmt.Sprintf("opacity:%.2f", s.Opacity),
		fmt.Sprintf("z-index:%d", s.ZIndex),
	}
	if s.Shadow != nil {
		decl = append(decl, fmt.Sprintf("text-shadow:%.2fpx %.2fpx %.2fpx %s",
			s.Shadow.OffsetX*e.Scale, s.Shadow.OffsetY*e.Scale, s.Shadow.Blur*e.Scale, s.Shadow.Color))
	}
	if s.Background != nil {
		decl = append(decl,
			fmt.Sprintf("background:%s", s.Background.Color),
			fmt.Sprintf("padding:%.2fpx", s.Background.Padding*e.Scale),
			fmt.Sprintf("border-radius:%.2fpx", s.Background.Radius*e.Scale),
		)
	}
	if e.Live {
		decl = append(decl, "will-change:left,top")
	}
	return strings.Join(decl, ";")
}
