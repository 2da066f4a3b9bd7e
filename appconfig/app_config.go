package appconfig

import (
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	Persona           string `env:"CHAT-PERSONA" ini:"persona"`
	HTTPPort          string `env:"HTTP-PORT" ini:"http_port"`
	GRPCPort          string `env:"GRPC-PORT" ini:"grpc_port"`
	PromptDir         string `ini:"prompt_dir"`
	DefaultModelIndex int    `ini:"default_model_index"`
	HistoryWindow     int    `ini:"history_window"`

	TurnTimeoutSeconds int `ini:"turn_timeout_seconds"`
	EasterEggDelayMs   int `ini:"easter_egg_delay_ms"`
	SessionIdleMinutes int `ini:"session_idle_minutes"`

	RateLimitPerSecond float64 `ini:"rate_limit_per_second"`
	RateLimitBurst     int     `ini:"rate_limit_burst"`

	OllamaEnabled  bool   `env:"OLLAMA-ENABLED" ini:"ollama_enabled"`
	AllowedOrigins string `ini:"allowed_origins"`
}

// New returns the settings used for keys config.ini leaves out.
func New() *AppConfig {
	cfg := &AppConfig{
		DefaultModelIndex: 5,
		EasterEggDelayMs:  1000,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills settings left empty in config.ini. DefaultModelIndex and HistoryWindow
// are meaningful at zero and are left alone.
func (c *AppConfig) ApplyDefaults() {
	if c.Persona == "" {
		c.Persona = "mnemosyne"
	}
	if c.HTTPPort == "" {
		c.HTTPPort = ":8080"
	}
	// The boot server always opens a gRPC listener, even with no services registered.
	if c.GRPCPort == "" {
		c.GRPCPort = ":50051"
	}
	if c.PromptDir == "" {
		c.PromptDir = "."
	}
	if c.TurnTimeoutSeconds <= 0 {
		c.TurnTimeoutSeconds = 90
	}
	if c.EasterEggDelayMs < 0 {
		c.EasterEggDelayMs = 1000
	}
	if c.SessionIdleMinutes <= 0 {
		c.SessionIdleMinutes = 60
	}
	if c.RateLimitPerSecond <= 0 {
		c.RateLimitPerSecond = 1
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
}

func (c *AppConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

func (c *AppConfig) EasterEggDelay() time.Duration {
	return time.Duration(c.EasterEggDelayMs) * time.Millisecond
}

func (c *AppConfig) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// Origins splits allowed_origins on commas. Empty means any origin.
func (c *AppConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
