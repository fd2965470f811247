package interact

import (
	"time"

	"github.com/ivlev/carousel/internal/geometry"
)

// mailbox is a single-slot, latest-wins buffer between pointer moves and
// painting. Every put overwrites the slot; drain releases the slot at most
// once per interval. Dropped frames are never queued.
type mailbox struct {
	interval  time.Duration
	latest    geometry.PercentPoint
	has       bool
	pending   bool
	lastDrain time.Time
}

func newMailbox(interval time.Duration) *mailbox {
	return &mailbox{interval: interval}
}

func (m *mailbox) put(f geometry.PercentPoint) {
	m.latest = f
	m.has = true
	m.pending = true
}

// drain returns the latest frame if one is pending and the interval since the
// previous drain has elapsed.
func (m *mailbox) drain(now time.Time) (geometry.PercentPoint, bool) {
	if !m.pending {
		return geometry.PercentPoint{}, false
	}
	if !m.lastDrain.IsZero() && now.Sub(m.lastDrain) < m.interval {
		return geometry.PercentPoint{}, false
	}
	m.pending = false
	m.lastDrain = now
	return m.latest, true
}

// peek returns the most recent frame regardless of throttling.
func (m *mailbox) peek() (geometry.PercentPoint, bool) {
	return m.latest, m.has
}

func (m *mailbox) reset() {
	*m = mailbox{interval: m.interval}
}
