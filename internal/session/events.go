package session

import (
	"fmt"
	"sync"
)

// EventKind classifies a change to the session's user list.
type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventFailed  EventKind = "failed"
)

// Event describes one change a view may want to re-render for.
type Event struct {
	Kind   EventKind
	UserID int    // zero for list-wide events
	Name   string // display name of the affected user, if known
	Count  int    // list length after the change
	Err    error  // set for EventFailed
}

// eventBuffer is the capacity of the event channel.
const eventBuffer = 64

// eventReporter fans change events out through a buffered channel. Emits
// after close are dropped, so in-flight calls can outlive the session.
type eventReporter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func newEventReporter() *eventReporter {
	return &eventReporter{ch: make(chan Event, eventBuffer)}
}

// emit never blocks; events are dropped when nobody drains the channel.
func (r *eventReporter) emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *eventReporter) subscribe() <-chan Event {
	return r.ch
}

func (r *eventReporter) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.ch)
}

// FormatEvent renders an Event as a one-line status message.
func FormatEvent(ev Event) string {
	switch ev.Kind {
	case EventLoaded:
		return fmt.Sprintf("  ● loaded %d users", ev.Count)
	case EventCreated:
		return fmt.Sprintf("  ✓ created user %d (%s)", ev.UserID, ev.Name)
	case EventUpdated:
		return fmt.Sprintf("  ✓ updated user %d (%s)", ev.UserID, ev.Name)
	case EventDeleted:
		return fmt.Sprintf("  ✓ deleted user %d", ev.UserID)
	case EventFailed:
		if ev.UserID != 0 {
			return fmt.Sprintf("  ✗ user %d: %v", ev.UserID, ev.Err)
		}
		return fmt.Sprintf("  ✗ %v", ev.Err)
	default:
		return fmt.Sprintf("  ? %s", ev.Kind)
	}
}
