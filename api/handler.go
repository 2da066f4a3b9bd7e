package api

import (
	"encoding/json"
	"net/http"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/dispatch"
	"github.com/SaiNageswarS/chat-boot/persona"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20

// Handler serves sessions of a single persona.
type Handler struct {
	registry   *session.Registry
	dispatcher *dispatch.Dispatcher
	persona    *persona.Persona
	limiter    *SessionLimiter
}

func NewHandler(registry *session.Registry, dispatcher *dispatch.Dispatcher, p *persona.Persona, limiter *SessionLimiter) *Handler {
	return &Handler{
		registry:   registry,
		dispatcher: dispatcher,
		persona:    p,
		limiter:    limiter,
	}
}

type personaResponse struct {
	Key              string              `json:"key"`
	AppName          string              `json:"app_name"`
	Tagline          string              `json:"tagline"`
	InputPlaceholder string              `json:"input_placeholder"`
	QuickPrompts     []string            `json:"quick_prompts"`
	MoodLabels       []session.MoodLabel `json:"mood_labels"`
}

func (h *Handler) HandleGetPersona(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, personaResponse{
		Key:              h.persona.Key,
		AppName:          h.persona.AppName,
		Tagline:          h.persona.Tagline,
		InputPlaceholder: h.persona.InputPlaceholder,
		QuickPrompts:     h.persona.QuickPrompts,
		MoodLabels:       session.MoodLabels(),
	})
}

type modelsResponse struct {
	Models        []catalog.Model `json:"models"`
	Default       string          `json:"default"`
	MinMaxTokens  int             `json:"min_max_tokens"`
	MaxTokensStep int             `json:"max_tokens_step"`
	DefaultTemp   float64         `json:"default_temperature"`
}

func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	def, _ := h.persona.Catalog.Default(h.persona.DefaultModelIndex)
	RespondJSON(w, http.StatusOK, modelsResponse{
		Models:        h.persona.Catalog.Models(),
		Default:       def.ID,
		MinMaxTokens:  catalog.MinMaxTokens,
		MaxTokensStep: catalog.MinMaxTokens,
		DefaultTemp:   catalog.DefaultTemperature,
	})
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.registry.Create()
	if err != nil {
		respondErr(w, err)
		return
	}
	logger.Info("Session created", zap.String("session_id", sess.ID()))
	RespondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.registry.Delete(id); err != nil {
		respondErr(w, err)
		return
	}
	h.limiter.Forget(id)
	logger.Info("Session ended", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// messageRequest carries either free text or a quick prompt, by index or by text.
type messageRequest struct {
	Text            string `json:"text"`
	QuickPrompt     *int   `json:"quick_prompt,omitempty"`
	QuickPromptText string `json:"quick_prompt_text,omitempty"`
}

func (m messageRequest) event() dispatch.Event {
	switch {
	case m.QuickPrompt != nil:
		return dispatch.Event{Kind: dispatch.QuickPrompt, Index: m.QuickPrompt}
	case m.QuickPromptText != "":
		return dispatch.Event{Kind: dispatch.QuickPrompt, Text: m.QuickPromptText}
	default:
		return dispatch.Event{Kind: dispatch.SubmitText, Text: m.Text}
	}
}

// HandlePostMessage answers with an SSE stream of chat events when a reply is generated, 204 when
// the submission was ignored and 409 while another reply is still streaming.
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.limiter.Allow(sess.ID()) {
		RespondError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}

	var req messageRequest
	if !decode(w, r, &req) {
		return
	}
	h.stream(w, r, sess, req.event())
}

func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.limiter.Allow(sess.ID()) {
		RespondError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}
	h.stream(w, r, sess, dispatch.Event{Kind: dispatch.Resume})
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, sess *session.Session, ev dispatch.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sse := newSSEReporter(w, flusher)
	outcome, err := h.dispatcher.Handle(r.Context(), sess, ev, sse)

	if sse.Started() {
		if r.Context().Err() == nil {
			sse.sendOutcome(outcome, err)
		}
		return
	}

	switch {
	case err != nil:
		respondErr(w, err)
	case outcome == dispatch.OutcomeIgnored:
		w.WriteHeader(http.StatusNoContent)
	default:
		RespondJSON(w, http.StatusOK, outcomePayload{Outcome: outcome})
	}
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, dispatch.Event{Kind: dispatch.Reset})
}

func (h *Handler) HandleDismissWelcome(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, dispatch.Event{Kind: dispatch.DismissWelcome})
}

// command runs an event that never produces a reply and answers with the new snapshot.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, ev dispatch.Event) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := h.dispatcher.Handle(r.Context(), sess, ev, nil); err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var upd session.ConfigUpdate
	if !decode(w, r, &upd) {
		return
	}

	cfg, err := sess.UpdateGenerationConfig(upd)
	if err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cfg)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req themeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := sess.SetTheme(req.Theme); err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sess.UI())
}

type moodRequest struct {
	Mood  string `json:"mood"`
	Notes string `json:"notes"`
}

func (h *Handler) HandleLogMood(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req moodRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := sess.LogMood(req.Mood, req.Notes)
	if err != nil {
		respondErr(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) HandleGetMoods(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, sess.MoodTrend())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	return sess, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
