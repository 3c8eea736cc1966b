package domain

import "time"

// Cue represents one scheduled, timed segment of the live event.
// Array position in Event.Cues conveys running order; ID is stable within an event.
type Cue struct {
	ID          int    `json:"id"`
	StartTime   string `json:"startTime"`   // 24-hour canonical "HH:MM"
	StartTime12 string `json:"startTime12"` // display form "H:MM AM"
	Duration    string `json:"duration"`    // planned duration "M:SS"
	Title       string `json:"title"`
	Speaker     string `json:"speaker"`

	IsRunning     bool `json:"isRunning"`
	RemainingTime int  `json:"remainingTime"` // signed seconds, negative means overtime
	ElapsedTime   int  `json:"elapsedTime"`   // accumulated running seconds
	// ElapsedAtStart is ElapsedTime captured when the current running interval began.
	ElapsedAtStart int `json:"elapsedAtStart"`

	ActualStartTime *time.Time `json:"actualStartTime"`
	ActualEndTime   *time.Time `json:"actualEndTime"`
	ActualDuration  int        `json:"actualDuration"`
	StartedAt       *time.Time `json:"startedAt"`
}

// Event is the single live event driven by the operator session
type Event struct {
	Title          string    `json:"title"`
	Cues           []Cue     `json:"timers"`
	ActiveCueIndex int       `json:"activeTimer"`
	EventProgress  float64   `json:"eventProgress"`
	TotalElapsed   int       `json:"totalElapsed"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can hand out snapshots safely
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	out.Cues = make([]Cue, len(e.Cues))
	for i, c := range e.Cues {
		out.Cues[i] = c.Clone()
	}
	return &out
}

// Clone copies a cue including its timestamp pointers
func (c Cue) Clone() Cue {
	c.ActualStartTime = cloneTime(c.ActualStartTime)
	c.ActualEndTime = cloneTime(c.ActualEndTime)
	c.StartedAt = cloneTime(c.StartedAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DefaultEventTitle is used when an event is created by import or reset
const DefaultEventTitle = "New Event"

// MessageType classifies operator announcements
type MessageType string

const (
	MessageInfo     MessageType = "info"
	MessageAlert    MessageType = "alert"
	MessageQuestion MessageType = "question"
)

// Valid reports whether t is a known message type
func (t MessageType) Valid() bool {
	switch t {
	case MessageInfo, MessageAlert, MessageQuestion:
		return true
	}
	return false
}

// Message is an operator-authored announcement attached to the event
type Message struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// DeviceType identifies the kind of connected staff device
type DeviceType string

const (
	DeviceMonitor    DeviceType = "monitor"
	DeviceSmartphone DeviceType = "smartphone"
	DeviceTV         DeviceType = "tv"
)

// Valid reports whether t is a known device type
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceMonitor, DeviceSmartphone, DeviceTV:
		return true
	}
	return false
}

// ConnectedDevice is a heartbeat-refreshed staff device entry
type ConnectedDevice struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     DeviceType `json:"type"`
	LastSeen time.Time  `json:"lastSeen"`
	UserID   string     `json:"userId"`
}

// ChatMessage is a direct message between two signed-in users
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Role is the externally stored privilege level of a user
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleProgramDirector Role = "program_director"
	RoleUser            Role = "user"
)

// User represents a signed-in staff member
type User struct {
	ID        string    `json:"id"`
	GoogleID  string    `json:"-"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventPatch is a partial, top-level-field update of the event document.
// Nil fields are left untouched by the store.
type EventPatch struct {
	Title          *string
	Cues           []Cue
	SetCues        bool
	ActiveCueIndex *int
	EventProgress  *float64
	TotalElapsed   *int
}

// DeletesEvent reports whether applying the patch removes the event document
func (p EventPatch) DeletesEvent() bool {
	return p.SetCues && len(p.Cues) == 0
}

// Segment is one cue's slice of the aggregate progress bar
type Segment struct {
	CueID        int     `json:"cueId"`
	WidthPercent float64 `json:"widthPercent"`
	FillPercent  float64 `json:"fillPercent"`
}

// ProgressSummary backs the "Elapsed / Completed% / Remaining" line
type ProgressSummary struct {
	Elapsed          int     `json:"elapsed"`
	CompletedPercent float64 `json:"completedPercent"`
	Remaining        int     `json:"remaining"`
}

// ProgressView is everything the operator's progress panel renders
type ProgressView struct {
	EventProgress float64         `json:"eventProgress"`
	PlannedTotal  int             `json:"plannedTotal"`
	Segments      []Segment       `json:"segments"`
	Summary       ProgressSummary `json:"summary"`
}

// AnalyticsRow is one line of the per-cue analytics export
type AnalyticsRow struct {
	CueNumber       int    `json:"cueNumber"`
	StartTime       string `json:"startTime"`
	Name            string `json:"name"`
	Presenter       string `json:"presenter"`
	PlannedDuration string `json:"plannedDuration"`
	ActualDuration  string `json:"actualDuration"`
	Difference      string `json:"difference"`
	Status          string `json:"status"`
}

// AnalyticsSummary is one line of the summary sheet
type AnalyticsSummary struct {
	Label string `json:"summary"`
	Value string `json:"value"`
}

// Analytics is the tabular dataset handed to the spreadsheet writer
type Analytics struct {
	Rows    []AnalyticsRow     `json:"rows"`
	Summary []AnalyticsSummary `json:"summary"`
}
