package element

import "github.com/ivlev/carousel/internal/geometry"

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Content  *string
	Position *geometry.PercentPoint
	Style    *StylePatch
	Editable *bool
	Visible  *bool
	Link     *string
}

// StylePatch is a partial style update. Shadow and Background replace the
// current value when set; the Clear flags remove it.
type StylePatch struct {
	FontSize        *float64
	FontWeight      *int
	Color           *string
	Align           *Align
	LineHeight      *float64
	LetterSpacing   *float64
	Shadow          *Shadow
	ClearShadow     bool
	Background      *Pad
	ClearBackground bool
	Opacity         *float64
	ZIndex          *int
}

// SetContent is a patch replacing the text.
func SetContent(s string) Patch { return Patch{Content: &s} }

// MoveTo is a patch replacing the position.
func MoveTo(p geometry.PercentPoint) Patch { return Patch{Position: &p} }

// SetOpacity is a patch replacing the opacity.
func SetOpacity(v float64) Patch { return Patch{Style: &StylePatch{Opacity: &v}} }

// Empty reports whether applying the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Content == nil && p.Position == nil && p.Style == nil &&
		p.Editable == nil && p.Visible == nil && p.Link == nil
}

// Update merges the patch into a copy of el and returns it. el itself is never
// modified, so callers can detect changes by comparing old and new values.
func Update(el TextElement, p Patch) TextElement {
	out := el.Clone()

	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Editable != nil {
		out.Editable = *p.Editable
	}
	if p.Visible != nil {
		out.Visible = *p.Visible
	}
	if p.Link != nil {
		out.Link = *p.Link
	}
	if p.Style != nil {
		out.Style = p.Style.apply(out.Style)
	}

	return out.Normalize()
}

func (sp *StylePatch) apply(s Style) Style {
	if sp.FontSize != nil {
		s.FontSize = *sp.FontSize
	}
	if sp.FontWeight != nil {
		s.FontWeight = *sp.FontWeight
	}
	if sp.Color != nil {
		s.Color = *sp.Color
	}
	if sp.Align != nil {
		s.Align = *sp.Align
	}
	if sp.LineHeight != nil {
		s.LineHeight = *sp.LineHeight
	}
	if sp.LetterSpacing != nil {
		s.LetterSpacing = *sp.LetterSpacing
	}
	if sp.Opacity != nil {
		s.Opacity = *sp.Opacity
	}
	if sp.ZIndex != nil {
		s.ZIndex = *sp.ZIndex
	}

	switch {
	case sp.ClearShadow:
		s.Shadow = nil
	case sp.Shadow != nil:
		sh := *sp.Shadow
		s.Shadow = &sh
	}

	switch {
	case sp.ClearBackground:
		s.Background = nil
	case sp.Background != nil:
		bg := *sp.Background
		s.Background = &bg
	}

	return s
}
