package broadcast

import (
	"errors"
	"sync"
	"time"

	"stage-cue/internal/logger"
	"stage-cue/internal/scheduler"
)

// Target is a countdown display the session can push to
type Target interface {
	// Alive reports whether anything is listening. Sends to a dead target are dropped.
	Alive() bool
	Send(Payload) error
}

// Tee is a Target that delivers to each of its live members. It is alive
// while any member is.
type Tee []Target

// Alive reports whether any member is listening
func (t Tee) Alive() bool {
	for _, target := range t {
		if target != nil && target.Alive() {
			return true
		}
	}
	return false
}

// Send delivers to every live member and joins their errors
func (t Tee) Send(p Payload) error {
	var errs []error
	for _, target := range t {
		if target == nil || !target.Alive() {
			continue
		}
		if err := target.Send(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Source produces the current payload
type Source func() Payload

// Broadcaster owns the single optional display handle and sends to it on a
// fixed period and on demand
type Broadcaster struct {
	mu       sync.Mutex
	target   Target
	source   Source
	sched    *scheduler.Scheduler
	interval time.Duration
	log      *logger.Logger
}

// NewBroadcaster creates a Broadcaster with no target attached
func NewBroadcaster(sched *scheduler.Scheduler, interval time.Duration, source Source, log *logger.Logger) *Broadcaster {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Broadcaster{
		source:   source,
		sched:    sched,
		interval: interval,
		log:      log.WithField("component", "broadcaster"),
	}
}

// Attach replaces the display handle
func (b *Broadcaster) Attach(t Target) {
	b.mu.Lock()
	b.target = t
	b.mu.Unlock()
}

// Detach drops the display handle
func (b *Broadcaster) Detach() {
	b.Attach(nil)
}

// Start begins the periodic send. Starting twice keeps one loop.
func (b *Broadcaster) Start() {
	b.sched.Every(scheduler.BroadcastKey, b.interval, func() { b.send() })
}

// Stop cancels the periodic send
func (b *Broadcaster) Stop() {
	b.sched.Cancel(scheduler.BroadcastKey)
}

// Notify sends immediately. It reports whether a payload was delivered.
func (b *Broadcaster) Notify() bool {
	return b.send()
}

func (b *Broadcaster) send() bool {
	b.mu.Lock()
	target := b.target
	b.mu.Unlock()

	if target == nil || !target.Alive() {
		return false
	}

	if err := target.Send(b.source()); err != nil {
		b.log.Warn("failed to send countdown update", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}
