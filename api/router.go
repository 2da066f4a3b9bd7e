package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterDependencies struct {
	Handler        *Handler
	AllowedOrigins []string
}

// NewRouter wires every route. Streaming routes are kept out of the request timeout, since a
// reply is bounded by the turn timeout instead.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "Last-Event-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := deps.Handler
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/persona", h.HandleGetPersona)
			r.Get("/models", h.HandleListModels)
			r.Post("/sessions", h.HandleCreateSession)

			r.Get("/sessions/{sessionID}", h.HandleGetSession)
			r.Delete("/sessions/{sessionID}", h.HandleDeleteSession)
			r.Post("/sessions/{sessionID}/reset", h.HandleReset)
			r.Post("/sessions/{sessionID}/welcome/dismiss", h.HandleDismissWelcome)
			r.Patch("/sessions/{sessionID}/config", h.HandleUpdateConfig)
			r.Put("/sessions/{sessionID}/theme", h.HandleSetTheme)
			r.Post("/sessions/{sessionID}/moods", h.HandleLogMood)
			r.Get("/sessions/{sessionID}/moods", h.HandleGetMoods)
		})

		r.Post("/sessions/{sessionID}/messages", h.HandlePostMessage)
		r.Post("/sessions/{sessionID}/resume", h.HandleResume)
		r.Get("/sessions/{sessionID}/ws", h.HandleWebSocket(deps.AllowedOrigins))
	})

	return r
}
