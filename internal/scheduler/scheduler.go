// Package scheduler owns keyed, cancellable periodic tasks.
//
// Each task runs on its own goroutine with a time.Ticker. Tasks are
// identified by key; registering a key that is already active does not
// start a second loop. Cancellation is explicit: callers keep the returned
// CancelFunc or cancel by key, and CancelAll stops every loop and waits for
// them to exit.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"stage-cue/internal/logger"
)

// CancelFunc stops a periodic task. It is safe to call more than once.
type CancelFunc func()

type task struct {
	stopCh chan struct{}
	once   sync.Once
	done   chan struct{}
}

func (t *task) stop() {
	t.once.Do(func() { close(t.stopCh) })
}

// Scheduler runs periodic tasks keyed by name
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task
	wg    sync.WaitGroup
	log   *logger.Logger
}

// New creates an empty Scheduler
func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Scheduler{
		tasks: make(map[string]*task),
		log:   log,
	}
}

// CueKey is the task key for a running cue's ticker
func CueKey(cueID int) string {
	return fmt.Sprintf("cue:%d", cueID)
}

// BroadcastKey is the task key for the periodic broadcast sender
const BroadcastKey = "broadcast"

// ElapsedKey is the task key for the event-wide elapsed counter
const ElapsedKey = "elapsed"

// Every runs fn once per period until cancelled. If key is already active the
// existing task is kept and its cancel function returned.
func (s *Scheduler) Every(key string, period time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[key]; exists {
		return func() { s.Cancel(key) }
	}

	t := &task{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.tasks[key] = t

	s.wg.Add(1)
	go s.run(key, t, period, fn)

	s.log.Debug("scheduled periodic task", map[string]interface{}{
		"key":    key,
		"period": period.String(),
	})

	return func() { s.Cancel(key) }
}

func (s *Scheduler) run(key string, t *task, period time.Duration, fn func()) {
	defer s.wg.Done()
	defer close(t.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			// a stop that raced the tick wins
			select {
			case <-t.stopCh:
				return
			default:
			}
			s.invoke(key, fn)
		}
	}
}

func (s *Scheduler) invoke(key string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("periodic task panicked", map[string]interface{}{
				"key":   key,
				"panic": r,
			})
		}
	}()
	fn()
}

// Cancel stops the task registered under key. Unknown keys are ignored.
// Cancel does not wait for an in-flight invocation, so it may be called from
// inside that task's own callback.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	t, exists := s.tasks[key]
	if exists {
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	if exists {
		t.stop()
		s.log.Debug("cancelled periodic task", map[string]interface{}{"key": key})
	}
}

// Active reports whether a task is registered under key
func (s *Scheduler) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.tasks[key]
	return exists
}

// Keys lists the registered task keys
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.tasks))
	for k := range s.tasks {
		keys = append(keys, k)
	}
	return keys
}

// CancelAll stops every task and waits for their goroutines to exit.
// It must not be called from inside a task callback.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.stop()
	}
	s.wg.Wait()
}
