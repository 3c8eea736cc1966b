package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stage-cue/internal/broadcast"
	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
	"stage-cue/internal/progress"
	"stage-cue/internal/repository"
	"stage-cue/internal/scheduler"
	"stage-cue/internal/sheet"
	"stage-cue/internal/timefmt"
	"stage-cue/internal/timer"
)

const (
	writeQueueSize = 256
	writeTimeout   = 10 * time.Second
	tickPeriod     = time.Second
)

var _ domain.EventService = (*EventController)(nil)

// Notifier is told after every state change. broadcast.Broadcaster satisfies it.
type Notifier interface {
	Notify() bool
}

// EventControllerConfig wires an EventController
type EventControllerConfig struct {
	Events    repository.EventStore
	Messages  repository.MessageStore
	Feed      repository.EventFeed // optional
	Scheduler *scheduler.Scheduler
	Clock     func() time.Time
	Logger    *logger.Logger
}

// write is one queued persistence call
type write struct {
	op       string
	run      func(ctx context.Context) error
	snapshot *domain.Event
	publish  bool
}

// EventController is the session controller for the live event. One mutex
// serializes every mutation, tick and remote snapshot, and persistence runs
// on a single ordered writer goroutine.
type EventController struct {
	mu       sync.Mutex
	event    *domain.Event
	messages []domain.Message
	notifier Notifier
	closed   bool

	events   repository.EventStore
	msgStore repository.MessageStore
	feed     repository.EventFeed
	sched    *scheduler.Scheduler
	tick     time.Duration  // one tick is one second of cue time
	tickGen  map[int]uint64 // registration generation per cue ticker
	now      func() time.Time
	log      *logger.Logger

	writes    chan write
	writerWG  sync.WaitGroup
	closeOnce sync.Once
}

// NewEventController creates a controller with no event loaded and starts its writer
func NewEventController(cfg EventControllerConfig) *EventController {
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetGlobalLogger()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.New(cfg.Logger)
	}

	c := &EventController{
		events:   cfg.Events,
		msgStore: cfg.Messages,
		feed:     cfg.Feed,
		sched:    cfg.Scheduler,
		tick:     tickPeriod,
		tickGen:  make(map[int]uint64),
		now:      cfg.Clock,
		log:      cfg.Logger.WithField("component", "event_controller"),
		writes:   make(chan write, writeQueueSize),
	}

	c.writerWG.Add(1)
	go c.writer()
	return c
}

// SetNotifier registers the broadcaster told about state changes
func (c *EventController) SetNotifier(n Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

// Load reads the persisted event and resumes tickers for cues that were running
func (c *EventController) Load(ctx context.Context) error {
	if c.events == nil {
		return domain.ErrNotInitialized
	}

	event, err := c.events.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to load event: %w", err)
	}

	var messages []domain.Message
	if c.msgStore != nil {
		messages, err = c.msgStore.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to load messages: %w", err)
		}
	}

	c.mu.Lock()
	c.event = event
	c.messages = messages
	if c.event != nil {
		c.event.ActiveCueIndex = timer.ClampIndex(c.event.Cues, c.event.ActiveCueIndex)
	}
	c.syncTickers()
	c.mu.Unlock()

	if event != nil {
		c.log.Info("event loaded", map[string]interface{}{
			"title": event.Title,
			"cues":  len(event.Cues),
		})
	}
	c.notify()
	return nil
}

// Snapshot returns a copy of the current event, or nil when none is loaded
func (c *EventController) Snapshot() *domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event.Clone()
}

// Payload builds the countdown payload. It is the broadcaster's source.
func (c *EventController) Payload() broadcast.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return broadcast.BuildPayload(c.event, c.messages, c.now())
}

// Progress recomputes the aggregate progress figures as of now
func (c *EventController) Progress() domain.ProgressView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := domain.ProgressView{Segments: []domain.Segment{}}
	if c.event == nil {
		return view
	}
	cues := c.event.Cues
	view.EventProgress = progress.EventProgress(cues, c.now())
	view.PlannedTotal = progress.PlannedTotal(cues)
	view.Segments = progress.Segments(cues)
	view.Summary = progress.Summary(cues, c.event.TotalElapsed)
	return view
}

// Analytics builds the per-cue export dataset
func (c *EventController) Analytics() domain.Analytics {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return sheet.BuildAnalytics(nil, c.now())
	}
	return sheet.BuildAnalytics(c.event.Cues, c.now())
}

// ReplaceMessages swaps the relayed message feed (newest first)
func (c *EventController) ReplaceMessages(messages []domain.Message) {
	c.mu.Lock()
	c.messages = append([]domain.Message(nil), messages...)
	c.mu.Unlock()
	c.notify()
}

// StartCue starts one cue. Other cues are not touched.
func (c *EventController) StartCue(ctx context.Context, cueID int) error {
	return c.mutateCue("start", cueID, func(e *domain.Event, cue *domain.Cue, now time.Time) {
		timer.Start(cue, now)
	})
}

// PauseCue pauses one cue. Pausing a cue that is not running is a no-op.
func (c *EventController) PauseCue(ctx context.Context, cueID int) error {
	return c.mutateCue("pause", cueID, func(e *domain.Event, cue *domain.Cue, now time.Time) {
		timer.Pause(cue, now)
	})
}

// StopCue stops one running or paused cue
func (c *EventController) StopCue(ctx context.Context, cueID int) error {
	return c.mutateCue("stop", cueID, func(e *domain.Event, cue *domain.Cue, now time.Time) {
		timer.Stop(cue, now)
	})
}

// ResetCue returns one cue to idle
func (c *EventController) ResetCue(ctx context.Context, cueID int) error {
	return c.mutateCue("reset", cueID, func(e *domain.Event, cue *domain.Cue, now time.Time) {
		timer.Reset(cue)
	})
}

// AdvanceCue stops the cue and starts the one after it
func (c *EventController) AdvanceCue(ctx context.Context, cueID int) error {
	return c.mutate("advance", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		next, err := timer.Advance(e.Cues, cueID, now)
		if err != nil {
			return domain.EventPatch{}, err
		}
		e.ActiveCueIndex = next
		return cuePatch(e), nil
	})
}

// PlayAll starts the cue under the active pointer
func (c *EventController) PlayAll(ctx context.Context) error {
	return c.mutate("play_all", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.ActiveCueIndex = timer.ClampIndex(e.Cues, e.ActiveCueIndex)
		timer.PlayAll(e.Cues, e.ActiveCueIndex, now)
		return cuePatch(e), nil
	})
}

// PauseAll pauses every running cue
func (c *EventController) PauseAll(ctx context.Context) error {
	return c.mutate("pause_all", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		timer.PauseAll(e.Cues, now)
		return cuePatch(e), nil
	})
}

// StopAll stops every cue and moves the pointer to the first cue
func (c *EventController) StopAll(ctx context.Context) error {
	return c.mutate("stop_all", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.ActiveCueIndex = timer.StopAll(e.Cues, now)
		return cuePatch(e), nil
	})
}

// NextAll advances from the cue under the active pointer. On the last cue it does nothing.
func (c *EventController) NextAll(ctx context.Context) error {
	return c.mutate("next_all", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		next, _ := timer.NextAll(e.Cues, e.ActiveCueIndex, now)
		e.ActiveCueIndex = next
		return cuePatch(e), nil
	})
}

// ResetAll resets every cue and the elapsed counter
func (c *EventController) ResetAll(ctx context.Context) error {
	return c.mutate("reset_all", false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.ActiveCueIndex = timer.ResetAll(e.Cues)
		e.TotalElapsed = 0
		return cuePatch(e), nil
	})
}

// SaveCues commits an edited cue list. Edits to an existing id keep its
// timing state; unknown ids become fresh idle cues. Start times are chained
// from the first cue and durations sanitized.
func (c *EventController) SaveCues(ctx context.Context, edited []domain.Cue) error {
	return c.mutate("save_cues", true, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.Cues = mergeEdits(e.Cues, edited)
		chainStartTimes(e.Cues)
		e.ActiveCueIndex = timer.ClampIndex(e.Cues, e.ActiveCueIndex)
		return cuePatch(e), nil
	})
}

// SetTitle renames the event, creating it when none exists
func (c *EventController) SetTitle(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}
	return c.mutate("set_title", true, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.Title = title
		return domain.EventPatch{Title: &e.Title}, nil
	})
}

// ImportCues replaces the cue list with imported cues. The cues must already
// be validated; nothing is changed when the list is empty.
func (c *EventController) ImportCues(ctx context.Context, cues []domain.Cue) error {
	if len(cues) == 0 {
		return &domain.ImportValidationError{Reason: "no cues found"}
	}
	imported := make([]domain.Cue, len(cues))
	for i, cue := range cues {
		imported[i] = cue.Clone()
	}
	return c.mutateWith("import", true, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		e.Title = domain.DefaultEventTitle
		e.Cues = imported
		e.ActiveCueIndex = 0
		e.TotalElapsed = 0
		c.messages = nil
		patch := cuePatch(e)
		patch.Title = &e.Title
		return patch, nil
	}, c.clearMessages)
}

func (c *EventController) clearMessages(ctx context.Context) error {
	if c.msgStore == nil {
		return nil
	}
	return c.msgStore.DeleteAll(ctx)
}

// ResetEvent clears every cue and message and deletes the event document
func (c *EventController) ResetEvent(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrNotInitialized
	}
	c.event = nil
	c.messages = nil
	c.syncTickers()
	c.enqueue(write{op: "delete_event", run: c.deleteEvent, publish: true})
	c.mu.Unlock()

	c.log.Info("event reset", nil)
	c.notify()
	return nil
}

func (c *EventController) deleteEvent(ctx context.Context) error {
	if err := c.events.Delete(ctx); err != nil {
		return err
	}
	if c.msgStore != nil {
		return c.msgStore.DeleteAll(ctx)
	}
	return nil
}

// ApplySnapshot overwrites local state with a remote snapshot. A nil
// snapshot means the document was deleted elsewhere.
func (c *EventController) ApplySnapshot(event *domain.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.event = event.Clone()
	if c.event != nil {
		c.event.ActiveCueIndex = timer.ClampIndex(c.event.Cues, c.event.ActiveCueIndex)
	}
	c.syncTickers()
	c.mu.Unlock()

	c.log.Debug("applied remote snapshot", map[string]interface{}{"deleted": event == nil})
	c.notify()
}

// Checkpoint queues a write of the current cue counters while any cue is
// running, so a restart resumes close to where the session stopped. It
// reports whether a write was queued. Checkpoints are not published.
func (c *EventController) Checkpoint() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.event == nil || len(timer.RunningIDs(c.event.Cues)) == 0 {
		return false
	}

	snapshot := c.event.Clone()
	patch := cuePatch(snapshot)
	patch.TotalElapsed = &snapshot.TotalElapsed

	w := write{op: "checkpoint", snapshot: snapshot}
	w.run = func(ctx context.Context) error { return c.events.Merge(ctx, patch) }
	c.enqueue(w)
	return true
}

// Close cancels every ticker and waits for queued writes to finish.
// Later mutations return domain.ErrNotInitialized.
func (c *EventController) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.sched.CancelAll()
		close(c.writes)
		c.writerWG.Wait()
		c.log.Info("event controller closed", nil)
	})
}

type cueMutation func(e *domain.Event, cue *domain.Cue, now time.Time)

func (c *EventController) mutateCue(op string, cueID int, fn cueMutation) error {
	return c.mutate(op, false, func(e *domain.Event, now time.Time) (domain.EventPatch, error) {
		cue, err := timer.Find(e.Cues, cueID)
		if err != nil {
			return domain.EventPatch{}, err
		}
		fn(e, cue, now)
		return cuePatch(e), nil
	})
}

// mutate runs fn against the live event under the lock, then recomputes
// progress, re-syncs tickers, queues the write and notifies the display.
// A NotFound from fn is logged and swallowed.
func (c *EventController) mutate(op string, create bool, fn func(e *domain.Event, now time.Time) (domain.EventPatch, error)) error {
	return c.mutateWith(op, create, fn, nil)
}

// mutateWith is mutate with a follow-up store call run in the same queued
// write, after the event merge succeeds.
func (c *EventController) mutateWith(op string, create bool, fn func(e *domain.Event, now time.Time) (domain.EventPatch, error), then func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrNotInitialized
	}

	now := c.now()
	working := c.event.Clone()
	if working == nil {
		if !create {
			c.mu.Unlock()
			c.log.Debug("ignoring action with no event loaded", map[string]interface{}{"op": op})
			return nil
		}
		working = &domain.Event{Title: domain.DefaultEventTitle, Cues: []domain.Cue{}}
	}

	patch, err := fn(working, now)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, domain.ErrNotFound) {
			c.log.Warn("action targets a missing cue", map[string]interface{}{
				"op":    op,
				"error": err.Error(),
			})
			return nil
		}
		return err
	}

	working.UpdatedAt = now
	if patch.SetCues {
		working.EventProgress = progress.EventProgress(working.Cues, now)
		patch.EventProgress = &working.EventProgress
		patch.TotalElapsed = &working.TotalElapsed
	}

	if patch.DeletesEvent() {
		c.event = nil
	} else {
		c.event = working
	}
	c.syncTickers()

	w := write{op: op, snapshot: c.event.Clone(), publish: true}
	w.run = func(ctx context.Context) error {
		if err := c.events.Merge(ctx, patch); err != nil {
			return err
		}
		if then != nil {
			return then(ctx)
		}
		return nil
	}
	c.enqueue(w)
	c.mu.Unlock()

	c.notify()
	return nil
}

// cuePatch writes the cue list and the active pointer
func cuePatch(e *domain.Event) domain.EventPatch {
	cues := make([]domain.Cue, len(e.Cues))
	for i, cue := range e.Cues {
		cues[i] = cue.Clone()
	}
	active := e.ActiveCueIndex
	return domain.EventPatch{Cues: cues, SetCues: true, ActiveCueIndex: &active}
}

// syncTickers makes the ticker set match the running cues. Caller holds mu.
func (c *EventController) syncTickers() {
	running := make(map[string]bool)
	if c.event != nil {
		for _, id := range timer.RunningIDs(c.event.Cues) {
			key := scheduler.CueKey(id)
			running[key] = true
			if !c.sched.Active(key) {
				c.tickGen[id]++
				c.sched.Every(key, c.tick, c.cueTicker(id, c.tickGen[id]))
			}
		}
	}

	for _, key := range c.sched.Keys() {
		if strings.HasPrefix(key, "cue:") && !running[key] {
			c.sched.Cancel(key)
		}
	}

	if len(running) > 0 {
		c.sched.Every(scheduler.ElapsedKey, c.tick, c.elapsedTicker)
	} else {
		c.sched.Cancel(scheduler.ElapsedKey)
	}
}

// cueTicker returns the callback for one registration of a cue's ticker.
// A callback that lost the lock race to a cancel and re-register is stale
// and does nothing.
func (c *EventController) cueTicker(id int, gen uint64) func() {
	return func() {
		c.mu.Lock()
		if c.tickGen[id] != gen {
			c.mu.Unlock()
			return
		}
		ticked := false
		if c.event != nil && !c.closed {
			if cue, err := timer.Find(c.event.Cues, id); err == nil {
				ticked = timer.Tick(cue)
			}
		}
		if !ticked {
			c.sched.Cancel(scheduler.CueKey(id))
		}
		c.mu.Unlock()

		if ticked {
			c.notify()
		}
	}
}

func (c *EventController) elapsedTicker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil || c.closed || len(timer.RunningIDs(c.event.Cues)) == 0 {
		c.sched.Cancel(scheduler.ElapsedKey)
		return
	}
	c.event.TotalElapsed++
}

// enqueue hands a write to the writer goroutine. Caller holds mu and has
// checked closed.
func (c *EventController) enqueue(w write) {
	if c.events == nil {
		c.log.Warn("no event store configured, dropping write", map[string]interface{}{"op": w.op})
		return
	}
	c.writes <- w
}

// writer applies queued writes in order. Failures are logged as
// PersistenceError and local state is kept.
func (c *EventController) writer() {
	defer c.writerWG.Done()
	for w := range c.writes {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := w.run(ctx); err != nil {
			perr := &domain.PersistenceError{Op: w.op, Err: err}
			c.log.Error("failed to persist event", map[string]interface{}{"error": perr.Error()})
		} else if w.publish && c.feed != nil {
			if err := c.feed.Publish(ctx, w.snapshot); err != nil {
				c.log.Warn("failed to publish event snapshot", map[string]interface{}{
					"op":    w.op,
					"error": err.Error(),
				})
			}
		}
		cancel()
	}
}

func (c *EventController) notify() {
	c.mu.Lock()
	n := c.notifier
	c.mu.Unlock()
	if n != nil {
		n.Notify()
	}
}

// mergeEdits applies operator edits to the current cues
func mergeEdits(current, edited []domain.Cue) []domain.Cue {
	nextID := 1
	for _, cue := range current {
		if cue.ID >= nextID {
			nextID = cue.ID + 1
		}
	}
	for _, cue := range edited {
		if cue.ID >= nextID {
			nextID = cue.ID + 1
		}
	}

	out := make([]domain.Cue, 0, len(edited))
	for _, edit := range edited {
		var cue domain.Cue
		if existing, err := timer.Find(current, edit.ID); err == nil && edit.ID != 0 {
			cue = existing.Clone()
		} else {
			cue = domain.Cue{ID: edit.ID}
			if cue.ID == 0 {
				cue.ID = nextID
				nextID++
			}
		}

		cue.Title = edit.Title
		cue.Speaker = edit.Speaker
		cue.StartTime = edit.StartTime
		if edit.StartTime12 != "" && edit.StartTime12 != timefmt.To12Hour(edit.StartTime) {
			cue.StartTime = timefmt.To24Hour(edit.StartTime12)
		}

		duration, seconds := timefmt.SanitizeDuration(edit.Duration)
		cue.Duration = duration
		switch timer.StateOf(&cue) {
		case timer.Idle:
			timer.Reset(&cue)
		case timer.Stopped:
			cue.RemainingTime = seconds
		default:
			cue.RemainingTime = seconds - cue.ElapsedTime
		}
		out = append(out, cue)
	}
	return out
}

// chainStartTimes sets each cue's start to the previous start plus the
// previous duration, beginning from the first cue's own start time
func chainStartTimes(cues []domain.Cue) {
	if len(cues) == 0 {
		return
	}
	current := cues[0].StartTime
	for i := range cues {
		cues[i].StartTime = current
		cues[i].StartTime12 = timefmt.To12Hour(current)
		current = timefmt.NextStartTime(current, cues[i].Duration)
	}
}
