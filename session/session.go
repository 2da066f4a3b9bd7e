package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SaiNageswarS/chat-boot/catalog"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrTurnInProgress = errors.New("a reply is still being generated")
	ErrStaleTurn      = errors.New("turn was superseded by a reset")
	ErrNoPendingTurn  = errors.New("no user message is waiting for a reply")
	ErrUnknownTheme   = errors.New("unknown theme")
	ErrNoModels       = errors.New("catalog has no models")
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type GenerationConfig struct {
	ModelID     string  `json:"model_id"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// ConfigUpdate carries the fields a user changed. Nil fields are left alone.
type ConfigUpdate struct {
	ModelID     *string  `json:"model_id,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type UIState struct {
	WelcomeVisible bool   `json:"welcome_visible"`
	TurnCount      int    `json:"turn_count"`
	Theme          string `json:"theme"`
}

// Turn identifies one user submission awaiting its reply.
type Turn struct {
	epoch  uint64
	Prompt string
}

// Snapshot is a read-only copy of a session for transports.
type Snapshot struct {
	ID           string           `json:"id"`
	Messages     []Message        `json:"messages"`
	Config       GenerationConfig `json:"config"`
	UI           UIState          `json:"ui"`
	TurnInFlight bool             `json:"turn_in_flight"`
	Moods        []MoodEntry      `json:"moods"`
}

// Session is one user's conversation and settings. All mutation goes through its methods, which
// keep messages[0] as the only system message and TurnCount equal to the number of user messages.
type Session struct {
	mu sync.Mutex

	id         string
	system     Message
	messages   []Message
	config     GenerationConfig
	ui         UIState
	moods      MoodLog
	catalog    *catalog.Catalog
	lastActive time.Time

	// epoch changes on every reset so replies to turns from before the reset are dropped.
	epoch    uint64
	inFlight bool
	cancel   context.CancelFunc
}

// New creates a session seeded with the system prompt and the default model at defaultModelIndex.
// An out-of-range index falls back to the first model; check DefaultModelFallback to report it.
func New(id, systemPrompt string, models *catalog.Catalog, defaultModelIndex int) (*Session, error) {
	model, _ := models.Default(defaultModelIndex)
	if model.ID == "" {
		return nil, ErrNoModels
	}

	system := Message{Role: RoleSystem, Content: systemPrompt}
	return &Session{
		id:       id,
		system:   system,
		messages: []Message{system},
		config: GenerationConfig{
			ModelID:     model.ID,
			MaxTokens:   catalog.DefaultTokens(model),
			Temperature: catalog.DefaultTemperature,
		},
		ui: UIState{
			WelcomeVisible: true,
			Theme:          ThemeLight,
		},
		catalog:    models,
		lastActive: time.Now(),
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// AppendUserMessage records a user submission and marks a reply as owed. It refuses while a
// previous reply is still being generated.
func (s *Session) AppendUserMessage(text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.inFlight {
		return Turn{}, ErrTurnInProgress
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.ui.TurnCount++
	s.ui.WelcomeVisible = false
	s.inFlight = true
	return Turn{epoch: s.epoch, Prompt: text}, nil
}

// AppendAssistantMessage records a reply. It never fails.
func (s *Session) AppendAssistantMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: text})
	s.clearTurn()
}

// CompleteTurn commits the reply for turn unless a reset happened since it started.
func (s *Session) CompleteTurn(turn Turn, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if turn.epoch != s.epoch {
		return ErrStaleTurn
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: text})
	s.clearTurn()
	return nil
}

// AbandonTurn releases the in-flight marker without committing anything. The user message stays,
// so the reply can be generated later through ResumeTurn.
func (s *Session) AbandonTurn(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.epoch != s.epoch {
		return
	}
	s.clearTurn()
}

// BindCancel lets Reset stop the generation of turn.
func (s *Session) BindCancel(turn Turn, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.epoch != s.epoch || !s.inFlight {
		cancel()
		return
	}
	s.cancel = cancel
}

// PendingUserTurn reports whether the last message is a user message that has no reply and no
// generation running for it.
func (s *Session) PendingUserTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

// ResumeTurn claims the pending user message for a new generation.
func (s *Session) ResumeTurn() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.inFlight {
		return Turn{}, ErrTurnInProgress
	}
	if !s.pendingLocked() {
		return Turn{}, ErrNoPendingTurn
	}
	s.inFlight = true
	return Turn{epoch: s.epoch, Prompt: s.messages[len(s.messages)-1].Content}, nil
}

// Reset truncates the conversation to the system message, clears the mood log, shows the
// welcome screen again and stops any running generation. Calling it twice is the same as once.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.cancel != nil {
		s.cancel()
	}
	s.clearTurn()
	s.epoch++

	s.messages = []Message{s.system}
	s.ui.TurnCount = 0
	s.ui.WelcomeVisible = true
	s.moods.Clear()
}

func (s *Session) DismissWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.ui.WelcomeVisible = false
}

func (s *Session) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.ui.Theme = theme
	return nil
}

// UpdateGenerationConfig applies upd. Numbers outside the allowed range are clamped; only an
// unknown model is rejected, in which case nothing changes.
func (s *Session) UpdateGenerationConfig(upd ConfigUpdate) (GenerationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	next := s.config
	if upd.ModelID != nil {
		next.ModelID = *upd.ModelID
	}

	model, err := s.catalog.Lookup(next.ModelID)
	if err != nil {
		return s.config, fmt.Errorf("%w: %q", err, next.ModelID)
	}

	if upd.MaxTokens != nil {
		next.MaxTokens = *upd.MaxTokens
	}
	next.MaxTokens = catalog.ClampMaxTokens(model, next.MaxTokens)

	if upd.Temperature != nil {
		next.Temperature = catalog.ClampTemperature(*upd.Temperature)
	}

	s.config = next
	return next, nil
}

func (s *Session) GenerationConfig() GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Session) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// Messages returns a copy of the conversation, system message first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked()
}

// LastMessage returns the newest message; the system message when nothing else exists.
func (s *Session) LastMessage() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[len(s.messages)-1]
}

func (s *Session) TurnInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) LogMood(label, notes string) (MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.moods.Log(label, notes, time.Now())
}

func (s *Session) MoodTrend() MoodTrend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moods.Trend()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:           s.id,
		Messages:     s.messagesLocked(),
		Config:       s.config,
		UI:           s.ui,
		TurnInFlight: s.inFlight,
		Moods:        s.moods.Entries(),
	}
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops any running generation. The registry calls it when the session ends.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.clearTurn()
}

func (s *Session) messagesLocked() []Message {
	cp := make([]Message, len(s.messages))
	copy(cp, s.messages)
	return cp
}

func (s *Session) pendingLocked() bool {
	last := s.messages[len(s.messages)-1]
	return !s.inFlight && last.Role == RoleUser
}

func (s *Session) clearTurn() {
	s.inFlight = false
	s.cancel = nil
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}
