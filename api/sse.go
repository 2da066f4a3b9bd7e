package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SaiNageswarS/chat-boot/chat"
	"github.com/SaiNageswarS/chat-boot/dispatch"
)

// sseReporter streams chat events as Server-Sent Events. Headers go out with the first event, so
// a request that never produces one can still be answered with a plain status code.
type sseReporter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
	eventID int64
}

func newSSEReporter(w http.ResponseWriter, flusher http.Flusher) *sseReporter {
	return &sseReporter{w: w, flusher: flusher}
}

func (s *sseReporter) Send(event *chat.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.write(string(event.Type), data)
}

type outcomePayload struct {
	Outcome dispatch.Outcome `json:"outcome"`
	Error   string           `json:"error,omitempty"`
}

// sendOutcome closes the stream with what the dispatcher did.
func (s *sseReporter) sendOutcome(outcome dispatch.Outcome, err error) error {
	payload := outcomePayload{Outcome: outcome}
	if err != nil {
		payload.Error = err.Error()
	}
	data, _ := json.Marshal(payload)
	return s.write("outcome", data)
}

func (s *sseReporter) write(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
	}

	s.eventID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.eventID, event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseReporter) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
