package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/memory"
	"github.com/SaiNageswarS/chat-boot/persona"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

const (
	// Cursor trails every partial reply while it is still streaming.
	Cursor = "▌"
	// Apology replaces the reply when the completion service fails.
	Apology = "Connection issue. Please try again. 🙏"
)

var (
	// ErrTurnAbandoned means the caller went away before the reply was ready. Nothing may be
	// committed for the turn.
	ErrTurnAbandoned = errors.New("turn abandoned")

	errNoUserMessage = errors.New("nothing to answer")
)

// Request is one reply to assemble.
type Request struct {
	SessionID string
	Messages  []session.Message
	Config    session.GenerationConfig
}

// Result is the text to commit as the assistant message and the state the assembly ended in:
// StateComplete, StateEasterEgg or StateFailed.
type Result struct {
	Text  string
	State State
}

// Assembler turns a conversation into one assistant reply, streaming progress to a Reporter.
type Assembler struct {
	clients        map[string]llm.LLMClient
	catalog        *catalog.Catalog
	easterEgg      *persona.EasterEgg
	loadingLine    func() (string, string)
	window         *memory.Window
	easterEggDelay time.Duration
	turnTimeout    time.Duration
}

// Assemble runs the reply state machine once. The only error it returns is ErrTurnAbandoned;
// provider failures become the apology with StateFailed.
func (a *Assembler) Assemble(ctx context.Context, req Request, reporter Reporter) (Result, error) {
	if reporter == nil {
		reporter = &NoOpReporter{}
	}

	conv := memory.FromSession(req.Messages)
	lastUser, _ := conv.LastUserMessage()

	if a.loadingLine != nil {
		message, indicator := a.loadingLine()
		reporter.Send(NewLoading(message, indicator))
	}

	if a.easterEgg.Match(lastUser) {
		return a.easterEggReply(ctx, req, reporter)
	}

	reporter.Send(NewStateChange(StateStreaming))
	start := time.Now()

	text, err := a.stream(ctx, conv, req.Config, reporter)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("Turn abandoned during streaming",
				zap.String("session_id", req.SessionID), zap.Error(ctx.Err()))
			return Result{}, ErrTurnAbandoned
		}

		logger.Error("Failed to stream reply",
			zap.String("session_id", req.SessionID),
			zap.String("model", req.Config.ModelID),
			zap.Error(err))
		reporter.Send(NewStateChange(StateFailed))
		reporter.Send(NewFailed(Apology, failureCode(err)))
		reporter.Send(NewStateChange(StateDone))
		return Result{Text: Apology, State: StateFailed}, nil
	}

	logger.Info("Reply streamed",
		zap.String("session_id", req.SessionID),
		zap.String("model", req.Config.ModelID),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	reporter.Send(NewStateChange(StateComplete))
	reporter.Send(NewFinal(text))
	reporter.Send(NewStateChange(StateDone))
	return Result{Text: text, State: StateComplete}, nil
}

func (a *Assembler) easterEggReply(ctx context.Context, req Request, reporter Reporter) (Result, error) {
	reporter.Send(NewStateChange(StateEasterEgg))
	logger.Info("Easter egg triggered", zap.String("session_id", req.SessionID))

	if a.easterEggDelay > 0 {
		timer := time.NewTimer(a.easterEggDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Result{}, ErrTurnAbandoned
		}
	}

	reporter.Send(NewFinal(a.easterEgg.Response))
	reporter.Send(NewStateChange(StateDone))
	return Result{Text: a.easterEgg.Response, State: StateEasterEgg}, nil
}

func (a *Assembler) stream(ctx context.Context, conv *memory.Conversation, cfg session.GenerationConfig, reporter Reporter) (string, error) {
	if conv.Empty() {
		return "", errNoUserMessage
	}

	client, err := a.clientFor(cfg.ModelID)
	if err != nil {
		return "", err
	}

	if a.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.turnTimeout)
		defer cancel()
	}

	var reply strings.Builder
	err = client.GenerateInference(
		ctx, a.window.Apply(conv),
		func(chunk string) error {
			if chunk == "" {
				return nil
			}
			reply.WriteString(chunk)
			reporter.Send(NewPartial(reply.String() + Cursor))
			return nil
		},
		llm.WithModel(cfg.ModelID),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
		llm.WithStreaming(true),
	)
	if err != nil {
		return "", err
	}
	// A stream that ends without text is still a complete, empty reply.
	return reply.String(), nil
}

func (a *Assembler) clientFor(modelID string) (llm.LLMClient, error) {
	model, err := a.catalog.Lookup(modelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, modelID)
	}
	client, ok := a.clients[model.Provider]
	if !ok {
		return nil, fmt.Errorf("no client for provider %q", model.Provider)
	}
	return client, nil
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, catalog.ErrUnknownModel):
		return "unknown_model"
	case errors.Is(err, errNoUserMessage):
		return "empty_history"
	default:
		return "provider_error"
	}
}
