package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		catalog.Model{ID: "llama-3.3-70b-versatile", TokenLimit: 8192, Provider: catalog.ProviderGroq},
		catalog.Model{ID: "llama-3.2-1b-preview", TokenLimit: 4096, Provider: catalog.ProviderGroq},
		catalog.Model{ID: "mixtral-8x22b-instruct", TokenLimit: 65536, Provider: catalog.ProviderGroq},
	)
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("s-1", "You are Mnemosyne.", testCatalog(), 1)
	require.NoError(t, err)
	return s
}

func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	msgs := s.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, RoleSystem, msgs[0].Role)

	systems, users := 0, 0
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			systems++
		case RoleUser:
			users++
		}
	}
	assert.Equal(t, 1, systems, "exactly one system message")
	assert.Equal(t, users, s.UI().TurnCount, "turn count matches user messages")
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, []Message{{Role: RoleSystem, Content: "You are Mnemosyne."}}, s.Messages())
	assert.Equal(t, UIState{WelcomeVisible: true, TurnCount: 0, Theme: ThemeLight}, s.UI())
	assert.Equal(t, GenerationConfig{ModelID: "llama-3.2-1b-preview", MaxTokens: 2048, Temperature: 0.7}, s.GenerationConfig())
	assertInvariants(t, s)
}

func TestNewSessionDefaultIndexOutOfRange(t *testing.T) {
	s, err := New("s-1", "prompt", testCatalog(), 9)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", s.GenerationConfig().ModelID)

	_, err = New("s-2", "prompt", catalog.New(), 0)
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestAppendUserMessage(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.AppendUserMessage("Early signs of anxiety?")
	require.NoError(t, err)
	assert.Equal(t, "Early signs of anxiety?", turn.Prompt)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "Early signs of anxiety?"}, msgs[1])
	assert.Equal(t, 1, s.UI().TurnCount)
	assert.False(t, s.UI().WelcomeVisible)
	assert.True(t, s.TurnInFlight())
	assertInvariants(t, s)
}

func TestAppendUserMessageRejectsEmpty(t *testing.T) {
	s := newTestSession(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.AppendUserMessage(text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Len(t, s.Messages(), 1)
	assert.Equal(t, 0, s.UI().TurnCount)
	assert.True(t, s.UI().WelcomeVisible)
}

func TestAppendUserMessageWhileInFlight(t *testing.T) {
	s := newTestSession(t)

	_, err := s.AppendUserMessage("first")
	require.NoError(t, err)

	_, err = s.AppendUserMessage("second")
	assert.ErrorIs(t, err, ErrTurnInProgress)
	assert.Len(t, s.Messages(), 2)
	assertInvariants(t, s)
}

func TestCompleteTurn(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)
	require.NoError(t, s.CompleteTurn(turn, "hi there"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, "hi there", msgs[2].Content)
	assert.False(t, s.TurnInFlight())

	_, err = s.AppendUserMessage("next")
	assert.NoError(t, err)
}

func TestAppendAssistantMessageAlwaysSucceeds(t *testing.T) {
	s := newTestSession(t)

	s.AppendAssistantMessage("")
	s.AppendAssistantMessage("Connection issue. Please try again. 🙏")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assertInvariants(t, s)
}

func TestCompleteTurnAfterResetIsDropped(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)

	s.Reset()
	assert.ErrorIs(t, s.CompleteTurn(turn, "late reply"), ErrStaleTurn)
	assert.Len(t, s.Messages(), 1)
	assertInvariants(t, s)
}

func TestResetCancelsInFlightTurn(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.BindCancel(turn, cancel)

	s.Reset()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, s.TurnInFlight())
}

func TestBindCancelOnStaleTurnCancelsImmediately(t *testing.T) {
	s := newTestSession(t)

	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)
	s.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.BindCancel(turn, cancel)
	assert.Error(t, ctx.Err())
}

func TestAbandonAndResumeTurn(t *testing.T) {
	s := newTestSession(t)

	_, err := s.ResumeTurn()
	assert.ErrorIs(t, err, ErrNoPendingTurn)

	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)
	assert.False(t, s.PendingUserTurn(), "in-flight turn is not pending")

	_, err = s.ResumeTurn()
	assert.ErrorIs(t, err, ErrTurnInProgress)

	s.AbandonTurn(turn)
	assert.True(t, s.PendingUserTurn())
	assert.Len(t, s.Messages(), 2, "abandoning commits nothing")

	resumed, err := s.ResumeTurn()
	require.NoError(t, err)
	assert.Equal(t, "hello", resumed.Prompt)
	require.NoError(t, s.CompleteTurn(resumed, "hi"))
	assert.False(t, s.PendingUserTurn())
	assertInvariants(t, s)
}

func TestResetAfterThreeTurns(t *testing.T) {
	s := newTestSession(t)

	for _, q := range []string{"one", "two", "three"} {
		turn, err := s.AppendUserMessage(q)
		require.NoError(t, err)
		require.NoError(t, s.CompleteTurn(turn, "reply to "+q))
	}
	_, err := s.LogMood("Good", "slept well")
	require.NoError(t, err)
	s.DismissWelcome()
	require.Len(t, s.Messages(), 7)

	s.Reset()

	assert.Equal(t, []Message{{Role: RoleSystem, Content: "You are Mnemosyne."}}, s.Messages())
	assert.Equal(t, 0, s.UI().TurnCount)
	assert.True(t, s.UI().WelcomeVisible)
	assert.Empty(t, s.Snapshot().Moods)
	assertInvariants(t, s)
}

func TestResetIsIdempotent(t *testing.T) {
	s := newTestSession(t)
	turn, err := s.AppendUserMessage("hello")
	require.NoError(t, err)
	require.NoError(t, s.CompleteTurn(turn, "hi"))

	s.Reset()
	once := s.Snapshot()
	s.Reset()
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
}

func TestUpdateGenerationConfig(t *testing.T) {
	t.Run("max tokens above the model limit is clamped", func(t *testing.T) {
		s := newTestSession(t)
		cfg, err := s.UpdateGenerationConfig(ConfigUpdate{MaxTokens: ptr(100000)})
		require.NoError(t, err)
		assert.Equal(t, 4096, cfg.MaxTokens)
	})

	t.Run("temperature is clamped into [0,1]", func(t *testing.T) {
		s := newTestSession(t)
		cfg, err := s.UpdateGenerationConfig(ConfigUpdate{Temperature: ptr(1.5)})
		require.NoError(t, err)
		assert.Equal(t, 1.0, cfg.Temperature)

		cfg, err = s.UpdateGenerationConfig(ConfigUpdate{Temperature: ptr(-2.0)})
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Temperature)

		cfg, err = s.UpdateGenerationConfig(ConfigUpdate{Temperature: ptr(math.NaN())})
		require.NoError(t, err)
		assert.Equal(t, catalog.DefaultTemperature, cfg.Temperature)
	})

	t.Run("switching model re-clamps max tokens", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.UpdateGenerationConfig(ConfigUpdate{ModelID: ptr("mixtral-8x22b-instruct"), MaxTokens: ptr(30000)})
		require.NoError(t, err)

		cfg, err := s.UpdateGenerationConfig(ConfigUpdate{ModelID: ptr("llama-3.2-1b-preview")})
		require.NoError(t, err)
		assert.Equal(t, GenerationConfig{ModelID: "llama-3.2-1b-preview", MaxTokens: 4096, Temperature: 0.7}, cfg)
	})

	t.Run("unknown model is rejected without changes", func(t *testing.T) {
		s := newTestSession(t)
		before := s.GenerationConfig()
		_, err := s.UpdateGenerationConfig(ConfigUpdate{ModelID: ptr("gpt-2"), MaxTokens: ptr(512)})
		assert.ErrorIs(t, err, catalog.ErrUnknownModel)
		assert.Equal(t, before, s.GenerationConfig())
	})
}

func TestSetTheme(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.UI().Theme)
	assert.ErrorIs(t, s.SetTheme("neon"), ErrUnknownTheme)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Assistant ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, r)

	_, err = ParseRole("tool")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestLastActiveIsTouched(t *testing.T) {
	s := newTestSession(t)
	before := s.LastActive()
	time.Sleep(2 * time.Millisecond)
	s.DismissWelcome()
	assert.True(t, s.LastActive().After(before))
}

func ptr[T any](v T) *T {
	return &v
}
