package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/chat-boot/chat"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"
)

var ErrUnknownQuickPrompt = errors.New("unknown quick prompt")

// Kind is a user action.
type Kind string

const (
	SubmitText     Kind = "submit"
	QuickPrompt    Kind = "quick_prompt"
	Reset          Kind = "reset"
	DismissWelcome Kind = "dismiss_welcome"
	Resume         Kind = "resume"
)

// Event is one user action. QuickPrompt events name the prompt either by Index or by Text.
type Event struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// Outcome says what Handle did with an event.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeReplied   Outcome = "replied"
	OutcomeFailed    Outcome = "failed"  // the apology was committed
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeDiscarded Outcome = "discarded" // a reset overtook the turn
	OutcomeReset     Outcome = "reset"
	OutcomeDismissed Outcome = "dismissed"
)

// TurnAssembler produces one assistant reply.
type TurnAssembler interface {
	Assemble(ctx context.Context, req chat.Request, reporter chat.Reporter) (chat.Result, error)
}

type Dispatcher struct {
	assembler    TurnAssembler
	quickPrompts []string
}

func NewDispatcher(assembler TurnAssembler, quickPrompts []string) *Dispatcher {
	return &Dispatcher{assembler: assembler, quickPrompts: quickPrompts}
}

// Handle applies ev to sess. When a user message is added, Handle returns only after its reply
// has been committed or the turn was abandoned.
func (d *Dispatcher) Handle(ctx context.Context, sess *session.Session, ev Event, reporter chat.Reporter) (Outcome, error) {
	switch ev.Kind {
	case SubmitText:
		return d.submit(ctx, sess, ev.Text, reporter)

	case QuickPrompt:
		text, err := d.resolveQuickPrompt(ev)
		if err != nil {
			return OutcomeIgnored, err
		}
		return d.quickPrompt(ctx, sess, text, reporter)

	case Reset:
		sess.Reset()
		logger.Info("Session reset", zap.String("session_id", sess.ID()))
		return OutcomeReset, nil

	case DismissWelcome:
		sess.DismissWelcome()
		return OutcomeDismissed, nil

	case Resume:
		return d.resume(ctx, sess, reporter)

	default:
		return OutcomeIgnored, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (d *Dispatcher) submit(ctx context.Context, sess *session.Session, text string, reporter chat.Reporter) (Outcome, error) {
	turn, err := sess.AppendUserMessage(text)
	if errors.Is(err, session.ErrEmptyMessage) {
		return OutcomeIgnored, nil
	}
	if err != nil {
		return OutcomeIgnored, err
	}
	return d.runTurn(ctx, sess, turn, reporter)
}

// quickPrompt suppresses a repeat of the last user message. If that message never got its
// reply, the reply is generated now.
func (d *Dispatcher) quickPrompt(ctx context.Context, sess *session.Session, text string, reporter chat.Reporter) (Outcome, error) {
	sess.DismissWelcome()

	last := sess.LastMessage()
	if last.Role == session.RoleUser && last.Content == text {
		if sess.PendingUserTurn() {
			return d.resume(ctx, sess, reporter)
		}
		return OutcomeIgnored, nil
	}
	return d.submit(ctx, sess, text, reporter)
}

func (d *Dispatcher) resume(ctx context.Context, sess *session.Session, reporter chat.Reporter) (Outcome, error) {
	turn, err := sess.ResumeTurn()
	if errors.Is(err, session.ErrNoPendingTurn) {
		return OutcomeIgnored, nil
	}
	if err != nil {
		return OutcomeIgnored, err
	}
	return d.runTurn(ctx, sess, turn, reporter)
}

func (d *Dispatcher) runTurn(ctx context.Context, sess *session.Session, turn session.Turn, reporter chat.Reporter) (Outcome, error) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess.BindCancel(turn, cancel)

	req := chat.Request{
		SessionID: sess.ID(),
		Messages:  sess.Messages(),
		Config:    sess.GenerationConfig(),
	}

	result, err := async.Await(async.Go(func() (chat.Result, error) {
		return d.assembler.Assemble(turnCtx, req, reporter)
	}))
	if err != nil {
		sess.AbandonTurn(turn)
		if !errors.Is(err, chat.ErrTurnAbandoned) {
			logger.Error("Turn failed", zap.String("session_id", sess.ID()), zap.Error(err))
		}
		return OutcomeAbandoned, err
	}

	if err := sess.CompleteTurn(turn, result.Text); err != nil {
		logger.Info("Dropped reply for a reset session", zap.String("session_id", sess.ID()))
		return OutcomeDiscarded, nil
	}

	if result.State == chat.StateFailed {
		return OutcomeFailed, nil
	}
	return OutcomeReplied, nil
}

func (d *Dispatcher) resolveQuickPrompt(ev Event) (string, error) {
	if ev.Index != nil {
		i := *ev.Index
		if i < 0 || i >= len(d.quickPrompts) {
			return "", fmt.Errorf("%w: index %d", ErrUnknownQuickPrompt, i)
		}
		return d.quickPrompts[i], nil
	}

	text := strings.TrimSpace(ev.Text)
	for _, q := range d.quickPrompts {
		if q == text {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuickPrompt, ev.Text)
}
