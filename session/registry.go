package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Factory builds a new session for id. It loads the system prompt and picks defaults.
type Factory func(id string) (*Session, error)

// Registry holds the live sessions of this process. Sessions are never written anywhere else.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	now      func() time.Time
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

func (r *Registry) Create() (*Session, error) {
	s, err := r.factory(uuid.NewString())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session and stops its running generation, if any.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep ends sessions idle for longer than ttl and returns their ids.
func (r *Registry) Sweep(ttl time.Duration) []string {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, s := range expired {
		s.Close()
		ids = append(ids, s.ID())
	}
	return ids
}
