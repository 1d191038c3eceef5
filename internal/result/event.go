package result

import (
	"sync"

	"github.com/raphi011/gitfleet/internal/registry"
)

// EventKind distinguishes progress notifications.
type EventKind string

const (
	EventSuccess EventKind = "success"
	EventError   EventKind = "error"
	EventFinish  EventKind = "finish"
)

// Event is one progress notification of a batch call.
// Repo is nil for the finish event.
type Event struct {
	Kind    EventKind
	Op      string
	Percent int
	Repo    *registry.Repo
	Status  Status
	Message string
}

// Listener receives progress events. Calls happen on the goroutine running
// the batch; implementations that update a UI must marshal to their own
// context.
type Listener interface {
	OnSuccess(Event)
	OnError(Event)
	OnFinish(Event)
}

// ListenerFunc adapts a single function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnSuccess(e Event) { f(e) }
func (f ListenerFunc) OnError(e Event)   { f(e) }
func (f ListenerFunc) OnFinish(e Event)  { f(e) }

// Multi fans events out to several listeners in order. Nil entries are skipped.
func Multi(listeners ...Listener) Listener {
	return ListenerFunc(func(e Event) {
		for _, l := range listeners {
			if l != nil {
				Dispatch(l, e)
			}
		}
	})
}

// Dispatch calls the Listener method matching e.Kind.
func Dispatch(l Listener, e Event) {
	switch e.Kind {
	case EventSuccess:
		l.OnSuccess(e)
	case EventError:
		l.OnError(e)
	case EventFinish:
		l.OnFinish(e)
	}
}

// Recorder is a Listener that keeps every event it sees.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnSuccess(e Event) { r.add(e) }
func (r *Recorder) OnError(e Event)   { r.add(e) }
func (r *Recorder) OnFinish(e Event)  { r.add(e) }

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
