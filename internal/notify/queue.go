// Package notify keeps the transient user-facing messages raised by pages.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is what pages raise messages through.
type Notifier interface {
	Push(message string, severity Severity) string
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Queue holds live notifications in arrival order. Each entry expires after
// the TTL unless dismissed first. Timers run on their own goroutines, so all
// mutation goes through mu.
type Queue struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	entries  []*entry
	closed   bool
	onChange func([]Notification)
}

func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now}
}

// OnChange registers fn to receive the list after every push or removal.
func (q *Queue) OnChange(fn func([]Notification)) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push appends a notification and returns its id. Pushing to a closed queue
// returns an id but stores nothing.
func (q *Queue) Push(message string, severity Severity) string {
	id := uuid.NewString()
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return id
	}
	e := &entry{n: Notification{ID: id, Message: message, Severity: severity, CreatedAt: q.now()}}
	e.timer = time.AfterFunc(q.ttl, func() { q.remove(id) })
	q.entries = append(q.entries, e)
	snapshot, fn := q.listLocked(), q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return id
}

func (q *Queue) Success(message string) string { return q.Push(message, Success) }
func (q *Queue) Error(message string) string   { return q.Push(message, Error) }
func (q *Queue) Warning(message string) string { return q.Push(message, Warning) }
func (q *Queue) Info(message string) string    { return q.Push(message, Info) }

// Dismiss removes the notification and cancels its timer. Unknown ids are ignored.
func (q *Queue) Dismiss(id string) bool {
	return q.remove(id)
}

func (q *Queue) remove(id string) bool {
	q.mu.Lock()
	idx := -1
	for i, e := range q.entries {
		if e.n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return false
	}
	q.entries[idx].timer.Stop()
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	snapshot, fn := q.listLocked(), q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return true
}

// List returns the live notifications oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.listLocked()
}

func (q *Queue) listLocked() []Notification {
	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

// Close stops every pending timer and drops all entries.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.closed = true
}
