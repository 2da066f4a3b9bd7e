package chat

import "time"

type EventType string

const (
	EventLoading EventType = "loading"
	EventState   EventType = "state"
	EventPartial EventType = "partial"
	EventFinal   EventType = "final"
	EventFailed  EventType = "failed"
)

// State is a step of one assembly. Every invocation starts at StateIdle and ends at StateDone.
type State string

const (
	StateIdle      State = "idle"
	StateEasterEgg State = "easter_egg"
	StateStreaming State = "streaming"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
	StateDone      State = "done"
)

// Event is what transports relay to the user while a reply is assembled.
type Event struct {
	Type      EventType `json:"type"`
	State     State     `json:"state,omitempty"`
	Text      string    `json:"text,omitempty"`
	Indicator string    `json:"indicator,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func NewLoading(message, indicator string) *Event {
	return &Event{Type: EventLoading, Text: message, Indicator: indicator, Timestamp: time.Now().UnixMilli()}
}

func NewStateChange(state State) *Event {
	return &Event{Type: EventState, State: state, Timestamp: time.Now().UnixMilli()}
}

// NewPartial carries the reply so far, cursor included.
func NewPartial(text string) *Event {
	return &Event{Type: EventPartial, Text: text, Timestamp: time.Now().UnixMilli()}
}

func NewFinal(text string) *Event {
	return &Event{Type: EventFinal, Text: text, Timestamp: time.Now().UnixMilli()}
}

// NewFailed carries the apology shown in place of a reply.
func NewFailed(text, code string) *Event {
	return &Event{Type: EventFailed, Text: text, Code: code, Timestamp: time.Now().UnixMilli()}
}
