package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/chat-boot/api"
	"github.com/SaiNageswarS/chat-boot/appconfig"
	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/chat"
	"github.com/SaiNageswarS/chat-boot/dispatch"
	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/persona"
	"github.com/SaiNageswarS/chat-boot/prompts"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/server"
	"go.uber.org/zap"
)

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg := appconfig.New()
	if err := config.LoadConfig("config.ini", ccfgg); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	ccfgg.ApplyDefaults()

	p, err := persona.Lookup(ccfgg.Persona)
	if err != nil {
		logger.Fatal("Failed to load persona",
			zap.String("persona", ccfgg.Persona),
			zap.Strings("available", persona.Keys()),
			zap.Error(err))
	}

	clients := provideClients(ccfgg)
	restrictCatalog(&p, ccfgg.DefaultModelIndex, clients)

	assembler := chat.NewAssemblerBuilder().
		WithCatalog(p.Catalog).
		WithPersona(&p).
		WithEasterEggDelay(ccfgg.EasterEggDelay()).
		WithTurnTimeout(ccfgg.TurnTimeout()).
		WithHistoryWindow(ccfgg.HistoryWindow)
	for provider, client := range clients {
		assembler = assembler.WithClient(provider, client)
	}

	systemPrompt := prompts.LoadSystemPrompt(ccfgg.PromptDir, p.PromptFile, p.PromptData())
	registry := session.NewRegistry(func(id string) (*session.Session, error) {
		return session.New(id, systemPrompt, p.Catalog, p.DefaultModelIndex)
	})

	limiter := api.NewSessionLimiter(ccfgg.RateLimitPerSecond, ccfgg.RateLimitBurst)
	handler := api.NewHandler(registry, dispatch.NewDispatcher(assembler.Build(), p.QuickPrompts), &p, limiter)

	router := api.NewRouter(api.RouterDependencies{
		Handler:        handler,
		AllowedOrigins: ccfgg.Origins(),
	})

	// The boot server owns "/" (grpc-web), /health and /metrics; the chat API lives under /v1/.
	boot, err := server.New().
		GRPCPort(ccfgg.GRPCPort).
		HTTPPort(ccfgg.HTTPPort).
		Provide(ccfgg).
		Handle("/v1/", router.ServeHTTP).
		Build()
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}

	ctx := getCancellableContext()
	go sweepSessions(ctx, registry, limiter, ccfgg.SessionIdleTTL())

	logger.Info("Starting chat server",
		zap.String("persona", p.Key),
		zap.Int("models", p.Catalog.Len()))

	// catch SIGINT ‑> cancel
	if err := boot.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// provideClients builds one client per configured provider. Groq is required; the others are
// enabled by their environment.
func provideClients(ccfgg *appconfig.AppConfig) map[string]llm.LLMClient {
	clients := map[string]llm.LLMClient{}

	groq, err := llm.ProvideGroqClient()
	if err != nil {
		logger.Fatal("Failed to create Groq client", zap.Error(err))
	}
	clients[catalog.ProviderGroq] = groq

	claude, err := llm.ProvideAnthropicClient()
	switch {
	case err == nil:
		clients[catalog.ProviderAnthropic] = claude
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Info("Anthropic models disabled, ANTHROPIC_API_KEY not set")
	default:
		logger.Fatal("Failed to create Claude client", zap.Error(err))
	}

	if ccfgg.OllamaEnabled {
		ollamaClient, err := llm.ProvideOllamaClient()
		if err != nil {
			logger.Fatal("Failed to create Ollama client", zap.Error(err))
		}
		clients[catalog.ProviderOllama] = ollamaClient
	}

	return clients
}

// restrictCatalog hides models no client can serve and re-points the default model index at the
// configured model inside the smaller catalog.
func restrictCatalog(p *persona.Persona, defaultIndex int, clients map[string]llm.LLMClient) {
	want, ok := p.Catalog.Default(defaultIndex)
	if !ok {
		logger.Error("Default model index out of range, using the first model",
			zap.Int("default_model_index", defaultIndex),
			zap.String("model", want.ID))
	}

	p.Catalog = p.Catalog.Restrict(func(provider string) bool {
		_, enabled := clients[provider]
		return enabled
	})
	if p.Catalog.Len() == 0 {
		logger.Fatal("No models available for the configured providers", zap.String("persona", p.Key))
	}

	p.DefaultModelIndex = 0
	for i, m := range p.Catalog.Models() {
		if m.ID == want.ID {
			p.DefaultModelIndex = i
			return
		}
	}
	logger.Error("Default model is not served by any provider, using the first model",
		zap.String("model", want.ID))
}

func sweepSessions(ctx context.Context, registry *session.Registry, limiter *api.SessionLimiter, ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ended := registry.Sweep(ttl); len(ended) > 0 {
				limiter.Forget(ended...)
				logger.Info("Ended idle sessions",
					zap.Int("count", len(ended)),
					zap.Int("active", registry.Len()),
					zap.Int("limiters", limiter.Len()))
			}
		}
	}
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
