package memory

import (
	"testing"

	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/stretchr/testify/assert"
)

func TestFromSession(t *testing.T) {
	conv := FromSession([]session.Message{
		{Role: session.RoleSystem, Content: "You are Mnemosyne."},
		{Role: session.RoleUser, Content: "Hello"},
		{Role: session.RoleAssistant, Content: ""},
		{Role: "", Content: "orphan"},
		{Role: session.RoleUser, Content: "Still there?"},
	})

	assert.Equal(t, []llm.Message{
		{Role: "system", Content: "You are Mnemosyne."},
		{Role: "user", Content: "Hello"},
		{Role: "user", Content: "Still there?"},
	}, conv.Messages)
}

func TestConversation_LastUserMessage(t *testing.T) {
	conversation := &Conversation{}
	_, ok := conversation.LastUserMessage()
	assert.False(t, ok)

	conversation = FromSession([]session.Message{
		{Role: session.RoleUser, Content: "first"},
		{Role: session.RoleAssistant, Content: "reply"},
		{Role: session.RoleUser, Content: "write me a poem"},
		{Role: session.RoleAssistant, Content: "..."},
	})

	last, ok := conversation.LastUserMessage()
	assert.True(t, ok)
	assert.Equal(t, "write me a poem", last)
}

func TestConversation_Empty(t *testing.T) {
	conversation := &Conversation{Messages: []llm.Message{{Role: "system", Content: "prompt"}}}
	assert.True(t, conversation.Empty())

	conversation.Messages = append(conversation.Messages, llm.Message{Role: "user", Content: "  "})
	assert.True(t, conversation.Empty(), "whitespace is nothing to answer")

	conversation.Messages = append(conversation.Messages, llm.Message{Role: "user", Content: "hi"})
	assert.False(t, conversation.Empty())
}

func TestWindow_Apply(t *testing.T) {
	system := llm.Message{Role: "system", Content: "prompt"}
	history := []llm.Message{
		system,
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi!"},
		{Role: "user", Content: "How are you?"},
		{Role: "assistant", Content: "I'm good!"},
		{Role: "user", Content: "What's the weather?"},
		{Role: "assistant", Content: "It's sunny!"},
	}

	tests := []struct {
		name     string
		maxTurns int
		input    []llm.Message
		expected []llm.Message
	}{
		{
			name:     "empty messages",
			maxTurns: 5,
			input:    []llm.Message{},
			expected: []llm.Message{},
		},
		{
			name:     "zero keeps the full history",
			maxTurns: 0,
			input:    history,
			expected: history,
		},
		{
			name:     "fewer turns than max",
			maxTurns: 5,
			input:    history,
			expected: history,
		},
		{
			name:     "exactly max turns",
			maxTurns: 3,
			input:    history,
			expected: history,
		},
		{
			name:     "more turns than max keeps the system message",
			maxTurns: 2,
			input:    history,
			expected: []llm.Message{
				system,
				{Role: "user", Content: "How are you?"},
				{Role: "assistant", Content: "I'm good!"},
				{Role: "user", Content: "What's the weather?"},
				{Role: "assistant", Content: "It's sunny!"},
			},
		},
		{
			name:     "pending user message",
			maxTurns: 1,
			input:    append(append([]llm.Message{}, history...), llm.Message{Role: "user", Content: "And tomorrow?"}),
			expected: []llm.Message{
				system,
				{Role: "user", Content: "And tomorrow?"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.maxTurns)
			result := w.Apply(&Conversation{Messages: tt.input})
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWindow_NilKeepsEverything(t *testing.T) {
	var w *Window
	msgs := []llm.Message{{Role: "user", Content: "hi"}}
	assert.Equal(t, msgs, w.Apply(&Conversation{Messages: msgs}))
}
