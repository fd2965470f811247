package element

import (
	"fmt"

	"github.com/ivlev/carousel/internal/geometry"
)

// CreateDefault builds an element of the given kind with kind-specific content,
// position and style. The result depends only on its arguments; the caller
// assigns the ID.
func CreateDefault(kind Kind, slideIndex, slideCount int) TextElement {
	el := TextElement{
		Kind:     kind,
		Editable: true,
		Visible:  true,
		Style: Style{
			FontSize:   40,
			FontWeight: 400,
			Color:      "#ffffff",
			Align:      AlignCenter,
			LineHeight: 1.3,
			Opacity:    1,
		},
	}

	switch kind {
	case Header:
		el.Content = "Your headline"
		el.Position = geometry.PercentPoint{X: 50, Y: 18}
		el.Style.FontSize = 72
		el.Style.FontWeight = 700
		el.Style.LineHeight = 1.1
		el.Style.ZIndex = 3
		el.Style.Shadow = &Shadow{OffsetX: 0, OffsetY: 2, Blur: 6, Color: "#00000080"}
	case Body:
		el.Content = "Add your text here"
		el.Position = geometry.PercentPoint{X: 50, Y: 50}
		el.Style.ZIndex = 2
	case Caption:
		el.Content = "Caption"
		el.Position = geometry.PercentPoint{X: 50, Y: 86}
		el.Style.FontSize = 28
		el.Style.Opacity = 0.85
		el.Style.ZIndex = 1
	case CallToAction:
		el.Content = "Learn more"
		el.Position = geometry.PercentPoint{X: 50, Y: 78}
		el.Style.FontSize = 36
		el.Style.FontWeight = 600
		el.Style.Color = "#111111"
		el.Style.LetterSpacing = 1
		el.Style.Background = &Pad{Color: "#ffffff", Padding: 18, Radius: 24}
		el.Style.ZIndex = 4
	case SlideNumber:
		el.Content = fmt.Sprintf("%d/%d", slideIndex+1, slideCount)
		el.Position = geometry.PercentPoint{X: 92, Y: 6}
		el.Style.FontSize = 22
		el.Style.FontWeight = 600
		el.Style.Background = &Pad{Color: "#00000066", Padding: 8, Radius: 12}
		el.Style.ZIndex = 5
		el.Editable = false
	}

	return el
}
