package memory

import (
	"strings"

	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/session"
)

// Conversation is the history as the completion service receives it.
type Conversation struct {
	Messages []llm.Message
}

// FromSession copies the session history, dropping messages with an empty role or content.
func FromSession(msgs []session.Message) *Conversation {
	conv := &Conversation{Messages: make([]llm.Message, 0, len(msgs))}
	for _, m := range msgs {
		if m.Role == "" || m.Content == "" {
			continue
		}
		conv.Messages = append(conv.Messages, llm.Message{Role: m.Role.String(), Content: m.Content})
	}
	return conv
}

// LastUserMessage returns the content of the newest user message, if any.
func (m *Conversation) LastUserMessage() (string, bool) {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == session.RoleUser.String() {
			return m.Messages[i].Content, true
		}
	}
	return "", false
}

// Empty reports whether there is nothing a model could answer.
func (m *Conversation) Empty() bool {
	for _, msg := range m.Messages {
		if msg.Role != session.RoleSystem.String() && strings.TrimSpace(msg.Content) != "" {
			return false
		}
	}
	return true
}
