package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/SaiNageswarS/chat-boot/chat"
	"github.com/SaiNageswarS/chat-boot/dispatch"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// wsCommand is a client message. Type is one of the dispatch event kinds.
type wsCommand struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// wsMessage is a server message.
type wsMessage struct {
	Type     string            `json:"type"` // event | outcome | snapshot | error
	Event    *chat.Event       `json:"event,omitempty"`
	Outcome  dispatch.Outcome  `json:"outcome,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsReporter forwards chat events over the socket.
type wsReporter struct {
	ctx  context.Context
	conn *websocket.Conn
}

func (r *wsReporter) Send(event *chat.Event) error {
	return wsjson.Write(r.ctx, r.conn, wsMessage{Type: "event", Event: event})
}

// originPatterns turns configured origins into the host patterns websocket.Accept expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// HandleWebSocket carries the same commands as the HTTP routes over one connection. Replies stream
// back as event messages; a reset arriving mid-reply cancels it.
func (h *Handler) HandleWebSocket(origins []string) http.HandlerFunc {
	patterns := originPatterns(origins)

	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.session(w, r)
		if !ok {
			return
		}

		// Server write/read timeouts would otherwise survive the hijack and cut long-lived sockets.
		rc := http.NewResponseController(w)
		_ = rc.SetReadDeadline(time.Time{})
		_ = rc.SetWriteDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
		if err != nil {
			logger.Error("Failed to accept WebSocket", zap.String("session_id", sess.ID()), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "session ended")

		// The request context is cancelled on hijack in some servers; tie the turns to the socket instead.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		logger.Info("WebSocket connected", zap.String("session_id", sess.ID()))
		h.readLoop(ctx, conn, sess)
		logger.Info("WebSocket closed", zap.String("session_id", sess.ID()))
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session) {
	ctx, cancel := context.WithCancel(ctx)
	var turns sync.WaitGroup
	defer turns.Wait()
	// Stop running turns once the socket is gone, before waiting for them.
	defer cancel()

	snapshot := sess.Snapshot()
	if err := wsjson.Write(ctx, conn, wsMessage{Type: "snapshot", Snapshot: &snapshot}); err != nil {
		return
	}

	reporter := &wsReporter{ctx: ctx, conn: conn}
	for {
		var cmd wsCommand
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				logger.Error("WebSocket read error", zap.String("session_id", sess.ID()), zap.Error(err))
			}
			return
		}

		ev := dispatch.Event{Kind: dispatch.Kind(cmd.Type), Text: cmd.Text, Index: cmd.Index}
		switch ev.Kind {
		case dispatch.SubmitText, dispatch.QuickPrompt, dispatch.Resume:
			if !h.limiter.Allow(sess.ID()) {
				wsjson.Write(ctx, conn, wsMessage{Type: "error", Error: "too many messages, slow down"})
				continue
			}
			turns.Add(1)
			go func() {
				defer turns.Done()
				h.runCommand(ctx, conn, sess, ev, reporter)
			}()
		default:
			h.runCommand(ctx, conn, sess, ev, reporter)
		}
	}
}

func (h *Handler) runCommand(ctx context.Context, conn *websocket.Conn, sess *session.Session, ev dispatch.Event, reporter chat.Reporter) {
	outcome, err := h.dispatcher.Handle(ctx, sess, ev, reporter)
	if ctx.Err() != nil {
		return
	}

	msg := wsMessage{Type: "outcome", Outcome: outcome}
	if err != nil {
		msg.Type = "error"
		msg.Error = err.Error()
	}
	if ev.Kind == dispatch.Reset || ev.Kind == dispatch.DismissWelcome {
		snapshot := sess.Snapshot()
		msg.Snapshot = &snapshot
	}
	wsjson.Write(ctx, conn, msg)
}
