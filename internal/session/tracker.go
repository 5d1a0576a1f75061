// Package session tracks the progress of generation runs so HTTP
// clients can poll for status while a run executes in the background.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// DefaultTTL is how long a completed session stays queryable before a
// sweep evicts it.
const DefaultTTL = time.Hour

// Snapshot is a point-in-time copy of one session's state. History is
// populated only when asked for.
type Snapshot struct {
	ID          string        `json:"session_id"`
	Current     model.Event   `json:"current"`
	History     []model.Event `json:"history,omitempty"`
	Active      bool          `json:"active"`
	Completed   bool          `json:"completed"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt time.Time     `json:"completed_at,omitempty"`
}

type session struct {
	current     model.Event
	history     []model.Event
	completed   bool
	createdAt   time.Time
	completedAt time.Time
}

// Tracker is a mutex-guarded session registry. There is no background
// reaper: every public call sweeps completed sessions past their TTL, so
// an idle tracker holds entries until the next touch.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

// NewTracker creates a tracker. A ttl <= 0 falls back to DefaultTTL.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session. Creating an id that already exists
// resets it.
func (t *Tracker) Create(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()

	t.sessions[id] = &session{createdAt: t.now()}
}

// Emit appends an event to the session's history and makes it current.
// Terminal event types mark the session completed, which starts its TTL
// countdown. Emitting to an unknown id is dropped.
func (t *Tracker) Emit(id string, eventType, message string, payload map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()

	s, ok := t.sessions[id]
	if !ok {
		zap.L().Debug("event for unknown session dropped",
			zap.String("session_id", id),
			zap.String("type", eventType),
		)
		return
	}

	ev := model.Event{
		Timestamp: t.now(),
		Type:      eventType,
		Message:   message,
		Payload:   payload,
	}
	s.current = ev
	s.history = append(s.history, ev)
	if model.Terminal(eventType) {
		s.completed = true
		s.completedAt = ev.Timestamp
	}
}

// Status returns a snapshot of the session, or ok=false if the id is
// unknown or already evicted. includeHistory controls whether the full
// event list is copied; the current event always is.
func (t *Tracker) Status(id string, includeHistory bool) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()

	s, ok := t.sessions[id]
	if !ok {
		return Snapshot{}, false
	}

	snap := Snapshot{
		ID:          id,
		Current:     s.current,
		Active:      !s.completed,
		Completed:   s.completed,
		CreatedAt:   s.createdAt,
		CompletedAt: s.completedAt,
	}
	if includeHistory {
		snap.History = make([]model.Event, len(s.history))
		copy(snap.History, s.history)
	}
	return snap, true
}

// Remove evicts a session immediately.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Len reports how many sessions are currently tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()
	return len(t.sessions)
}

// sweep evicts completed sessions whose TTL has elapsed. Caller must
// hold t.mu. Incomplete sessions are never evicted; a stuck run stays
// visible to whoever is polling it.
func (t *Tracker) sweep() {
	now := t.now()
	for id, s := range t.sessions {
		if s.completed && now.Sub(s.completedAt) > t.ttl {
			delete(t.sessions, id)
		}
	}
}
