package memory

import (
	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/session"
)

// Window limits how much history is sent with each request.
type Window struct {
	maxTurns int
}

// NewWindow keeps the last maxTurns user turns. maxTurns <= 0 keeps everything.
func NewWindow(maxTurns int) *Window {
	return &Window{maxTurns: maxTurns}
}

// Apply returns the system messages followed by the last maxTurns user messages and
// whatever follows each of them.
func (w *Window) Apply(conv *Conversation) []llm.Message {
	msgs := conv.Messages
	if w == nil || w.maxTurns <= 0 || len(msgs) == 0 {
		return msgs
	}

	var system, rest []llm.Message
	for _, m := range msgs {
		if m.Role == session.RoleSystem.String() {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	out := make([]llm.Message, 0, len(msgs))
	out = append(out, system...)
	return append(out, w.trim(rest)...)
}

// trim walks backward to the maxTurns-th user message from the end and keeps everything after it.
func (w *Window) trim(msgs []llm.Message) []llm.Message {
	usersSeen := 0
	start := 0 // keep all when there are fewer than maxTurns user turns
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleUser.String() {
			usersSeen++
			if usersSeen == w.maxTurns {
				start = i
				break
			}
		}
	}
	return msgs[start:]
}
