package interact

import (
	"math"
	"time"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
)

// DragState is the pointer-capture state of the controller.
type DragState int

const (
	// StateIdle means no element is captured.
	StateIdle DragState = iota
	// StateArmed means an element was pressed but the pointer has not moved past the click slop.
	StateArmed
	// StateDragging means the captured element follows the pointer.
	StateDragging
)

func (s DragState) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Mode is the selection/editing mode, orthogonal to dragging.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelected
	ModeEditing
)

const (
	DefaultThrottle  = 16 * time.Millisecond
	DefaultClickSlop = 3.0
)

// Document is the part of the slide store the controller mutates.
type Document interface {
	Element(slideID, elementID string) (element.TextElement, bool)
	UpdateElement(slideID, elementID string, p element.Patch) (element.TextElement, error)
	RemoveElement(slideID, elementID string) error
}

// Session is the ephemeral state of one drag.
type Session struct {
	SlideID   string
	ElementID string
	// PointerOffset is the pointer position minus the element anchor at press time, in pixels.
	PointerOffset geometry.Point
	Box           geometry.Box
	Press         geometry.Point
	Origin        geometry.PercentPoint
}

// Commit describes a position written to the document when a drag ends.
type Commit struct {
	SlideID   string
	ElementID string
	Position  geometry.PercentPoint
}

// Controller turns pointer and key events into element selection, editing and
// drag commits. Intermediate drag positions live only in the controller (the
// live frame); the document sees one write per drag. Not safe for concurrent use.
type Controller struct {
	doc Document

	state   DragState
	session *Session
	mb      *mailbox

	selSlide   string
	selElement string
	editing    bool

	slop    float64
	now     func() time.Time
	acquire func()
	release func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithThrottle sets the minimum interval between painted live frames.
func WithThrottle(d time.Duration) Option {
	return func(c *Controller) { c.mb = newMailbox(d) }
}

// WithClickSlop sets how far, in pixels, the pointer may move before a press becomes a drag.
func WithClickSlop(px float64) Option {
	return func(c *Controller) { c.slop = px }
}

// WithClock replaces time.Now for throttling.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithCapture registers callbacks run when a drag session starts and ends, so
// the shell can scope its global pointer listeners to the session.
func WithCapture(acquire, release func()) Option {
	return func(c *Controller) {
		c.acquire = acquire
		c.release = release
	}
}

// NewController creates an idle controller over doc.
func NewController(doc Document, opts ...Option) *Controller {
	c := &Controller{
		doc:  doc,
		mb:   newMailbox(DefaultThrottle),
		slop: DefaultClickSlop,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the drag state.
func (c *Controller) State() DragState { return c.state }

// Mode returns the selection mode.
func (c *Controller) Mode() Mode {
	switch {
	case c.selElement == "":
		return ModeNone
	case c.editing:
		return ModeEditing
	default:
		return ModeSelected
	}
}

// Selection returns the selected element, if any.
func (c *Controller) Selection() (slideID, elementID string, ok bool) {
	return c.selSlide, c.selElement, c.selElement != ""
}

// Session returns a copy of the active drag session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// LiveFrame returns the uncommitted position of the captured element.
func (c *Controller) LiveFrame() (geometry.PercentPoint, bool) {
	if c.session == nil {
		return geometry.PercentPoint{}, false
	}
	return c.mb.peek()
}

// PointerDown captures an element. box is the slide container in the same
// pixel space as p. It reports false when the press is ignored: another
// session is active, the element is missing, hidden or being edited, or the
// box is empty.
func (c *Controller) PointerDown(slideID, elementID string, p geometry.Point, box geometry.Box) bool {
	if c.state != StateIdle || box.Size().Empty() {
		return false
	}
	el, ok := c.doc.Element(slideID, elementID)
	if !ok || !el.Visible {
		return false
	}
	if c.editing {
		if c.selSlide == slideID && c.selElement == elementID {
			return false
		}
		c.editing = false
	}

	anchor := box.Origin().Add(geometry.ToPixels(el.Position, box.Size()))
	c.session = &Session{
		SlideID:       slideID,
		ElementID:     elementID,
		PointerOffset: p.Sub(anchor),
		Box:           box,
		Press:         p,
		Origin:        el.Position,
	}
	c.state = StateArmed
	c.selSlide, c.selElement = slideID, elementID

	c.mb.reset()
	c.mb.put(el.Position)
	c.mb.pending = false

	if c.acquire != nil {
		c.acquire()
	}
	return true
}

// PointerMove updates the live frame. The second result is true when the frame
// should be painted now; throttled frames are dropped, but the latest one is
// kept for Flush and for the commit.
func (c *Controller) PointerMove(p geometry.Point) (geometry.PercentPoint, bool) {
	if c.session == nil {
		return geometry.PercentPoint{}, false
	}
	if c.state == StateArmed {
		if distance(p, c.session.Press) < c.slop {
			return geometry.PercentPoint{}, false
		}
		c.state = StateDragging
	}

	c.mb.put(c.candidate(p))
	return c.mb.drain(c.now())
}

// Flush releases a pending throttled frame; call it from the paint tick.
func (c *Controller) Flush() (geometry.PercentPoint, bool) {
	if c.state != StateDragging {
		return geometry.PercentPoint{}, false
	}
	return c.mb.drain(c.now())
}

// PointerUp ends the session at p. A drag commits its final position exactly
// once; a press without material movement only selects.
func (c *Controller) PointerUp(p geometry.Point) (Commit, bool) {
	if c.session == nil {
		return Commit{}, false
	}
	if c.state == StateDragging {
		c.mb.put(c.candidate(p))
	}
	return c.finish()
}

// PointerLeave ends the session at the last live frame, e.g. when the pointer
// leaves the window.
func (c *Controller) PointerLeave() (Commit, bool) {
	if c.session == nil {
		return Commit{}, false
	}
	return c.finish()
}

// Cancel drops the session without committing. Safe to call at any time.
func (c *Controller) Cancel() {
	c.teardown()
}

// DoubleActivate enters editing for an editable element.
func (c *Controller) DoubleActivate(slideID, elementID string) bool {
	if c.state != StateIdle {
		return false
	}
	el, ok := c.doc.Element(slideID, elementID)
	if !ok || !el.Editable || !el.Visible {
		return false
	}
	c.selSlide, c.selElement = slideID, elementID
	c.editing = true
	return true
}

// EditContent replaces the text of the element being edited.
func (c *Controller) EditContent(text string) (element.TextElement, bool) {
	if !c.editing {
		return element.TextElement{}, false
	}
	el, err := c.doc.UpdateElement(c.selSlide, c.selElement, element.SetContent(text))
	if err != nil {
		c.clearSelection()
		return element.TextElement{}, false
	}
	return el, true
}

// Escape leaves editing; outside editing it clears the selection.
func (c *Controller) Escape() {
	if c.editing {
		c.editing = false
		return
	}
	if c.state == StateIdle {
		c.clearSelection()
	}
}

// Blur leaves editing when the text field loses focus.
func (c *Controller) Blur() {
	c.editing = false
}

// Select marks an element as selected without capturing it.
func (c *Controller) Select(slideID, elementID string) bool {
	if _, ok := c.doc.Element(slideID, elementID); !ok {
		return false
	}
	if c.selSlide != slideID || c.selElement != elementID {
		c.editing = false
	}
	c.selSlide, c.selElement = slideID, elementID
	return true
}

// ClickBackground clears selection and editing, as a press on empty slide area does.
func (c *Controller) ClickBackground() {
	if c.state == StateIdle {
		c.clearSelection()
	}
}

// Delete removes the selected element unless it is being edited.
func (c *Controller) Delete() bool {
	if c.selElement == "" || c.editing {
		return false
	}
	slideID, elementID := c.selSlide, c.selElement
	if err := c.doc.RemoveElement(slideID, elementID); err != nil {
		c.clearSelection()
		return false
	}
	// The store notifies subscribed controllers; this covers unsubscribed ones.
	c.ElementRemoved(slideID, elementID)
	return true
}

// ElementRemoved tears down any state referencing the element.
func (c *Controller) ElementRemoved(slideID, elementID string) {
	if c.session != nil && c.session.SlideID == slideID && c.session.ElementID == elementID {
		c.teardown()
	}
	if c.selSlide == slideID && c.selElement == elementID {
		c.clearSelection()
	}
}

// SlideRemoved tears down any state referencing elements of the slide.
func (c *Controller) SlideRemoved(slideID string) {
	if c.session != nil && c.session.SlideID == slideID {
		c.teardown()
	}
	if c.selSlide == slideID {
		c.clearSelection()
	}
}

// ActiveSlideChanged drops all ephemeral state.
func (c *Controller) ActiveSlideChanged(string) {
	c.teardown()
	c.clearSelection()
}

func (c *Controller) finish() (Commit, bool) {
	s := *c.session
	dragged := c.state == StateDragging
	frame, _ := c.mb.peek()
	c.teardown()

	if !dragged {
		return Commit{}, false
	}
	el, err := c.doc.UpdateElement(s.SlideID, s.ElementID, element.MoveTo(frame))
	if err != nil {
		// element vanished between the last move and the release
		c.ElementRemoved(s.SlideID, s.ElementID)
		return Commit{}, false
	}
	return Commit{SlideID: s.SlideID, ElementID: s.ElementID, Position: el.Position}, true
}

// candidate maps a pointer position to a clamped percent position of the captured element.
func (c *Controller) candidate(p geometry.Point) geometry.PercentPoint {
	s := c.session
	local := p.Sub(s.Box.Origin()).Sub(s.PointerOffset)
	return geometry.ToPercent(local, s.Box.Size())
}

func (c *Controller) teardown() {
	if c.session == nil {
		return
	}
	c.session = nil
	c.state = StateIdle
	c.mb.reset()
	if c.release != nil {
		c.release()
	}
}

func (c *Controller) clearSelection() {
	c.selSlide, c.selElement = "", ""
	c.editing = false
}

func distance(a, b geometry.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
