package chat

import "sync"

// Reporter receives assembly events in order.
type Reporter interface {
	Send(event *Event) error
}

// NoOpReporter drops every event.
type NoOpReporter struct{}

func (r *NoOpReporter) Send(event *Event) error {
	return nil
}

// RecordingReporter keeps every event, for tests that assert on what a transport would see.
// Safe for concurrent use.
type RecordingReporter struct {
	mu     sync.Mutex
	events []*Event
}

func (r *RecordingReporter) Send(event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *RecordingReporter) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]*Event, len(r.events))
	copy(cp, r.events)
	return cp
}

// OfType filters the recorded events.
func (r *RecordingReporter) OfType(t EventType) []*Event {
	var out []*Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
