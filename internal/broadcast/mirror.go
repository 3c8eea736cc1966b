package broadcast

import (
	"sync"
	"time"

	"stage-cue/internal/cache"
)

const (
	// FlashWindow is how long a newly arrived message pulses
	FlashWindow = time.Second
	// HighlightWindow is how long the newest message stays marked as new
	HighlightWindow = 5 * time.Second

	newestKey = "newest"
)

// Mirror is the read-only model a countdown display keeps. It starts empty
// and treats a grown message list as news: the newest message flashes for
// FlashWindow and stays highlighted for HighlightWindow.
type Mirror struct {
	mu        sync.RWMutex
	current   *Payload
	closed    bool
	flash     *cache.Cache[string]
	highlight *cache.Cache[string]
}

// NewMirror creates an empty Mirror reading time from clock
func NewMirror(clock cache.Clock) *Mirror {
	return &Mirror{
		flash:     cache.NewWithClock[string](FlashWindow, clock),
		highlight: cache.NewWithClock[string](HighlightWindow, clock),
	}
}

// Apply takes a received payload. A nil payload leaves the mirror unchanged.
func (m *Mirror) Apply(p *Payload) {
	if p == nil {
		return
	}

	next := *p
	next.Messages = append(next.Messages[:0:0], p.Messages...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && len(next.Messages) > len(m.current.Messages) && len(next.Messages) > 0 {
		newest := next.Messages[0].ID
		m.flash.Set(newestKey, newest)
		m.highlight.Set(newestKey, newest)
	}
	m.current = &next
}

// Current returns the last applied payload, if any
func (m *Mirror) Current() (Payload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Payload{}, false
	}
	return *m.current, true
}

// Highlighted returns the id of the message still marked as new
func (m *Mirror) Highlighted() (string, bool) {
	return m.highlight.Get(newestKey)
}

// Flashing reports whether messageID is the newest message and inside its flash window
func (m *Mirror) Flashing(messageID string) bool {
	id, ok := m.flash.Get(newestKey)
	return ok && id == messageID
}

// View is what a display opened now should paint first: the last frame and
// how long the newest message keeps its flash and highlight
type View struct {
	Payload       *Payload
	NewestID      string
	FlashLeft     time.Duration
	HighlightLeft time.Duration
}

// View snapshots the mirror for a display that is just opening
func (m *Mirror) View() View {
	var v View
	if p, ok := m.Current(); ok {
		v.Payload = &p
	}
	if id, ok := m.highlight.Get(newestKey); ok {
		v.NewestID = id
		v.HighlightLeft, _ = m.highlight.TTL(newestKey)
		if m.Flashing(id) {
			v.FlashLeft, _ = m.flash.TTL(newestKey)
		}
	}
	return v
}

// Alive reports whether the mirror still accepts payloads
func (m *Mirror) Alive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed
}

// Send applies p, letting a Mirror stand in as a broadcast target
func (m *Mirror) Send(p Payload) error {
	m.Apply(&p)
	return nil
}

// Close marks the mirror as gone; later sends are dropped by the broadcaster
func (m *Mirror) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
