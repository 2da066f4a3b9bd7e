package appconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &AppConfig{EasterEggDelayMs: -1}
	cfg.ApplyDefaults()

	assert.Equal(t, "mnemosyne", cfg.Persona)
	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, ":50051", cfg.GRPCPort)
	assert.Equal(t, 90*time.Second, cfg.TurnTimeout())
	assert.Equal(t, time.Second, cfg.EasterEggDelay())
	assert.Equal(t, time.Hour, cfg.SessionIdleTTL())
	assert.Equal(t, 0, cfg.HistoryWindow)
	assert.Equal(t, []string{"*"}, cfg.Origins())
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &AppConfig{
		Persona:            "digidopps",
		TurnTimeoutSeconds: 30,
		EasterEggDelayMs:   0,
		AllowedOrigins:     "http://localhost:3000, https://chat.example.com ,",
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "digidopps", cfg.Persona)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout())
	assert.Equal(t, time.Duration(0), cfg.EasterEggDelay())
	assert.Equal(t, []string{"http://localhost:3000", "https://chat.example.com"}, cfg.Origins())
}

func TestNew(t *testing.T) {
	cfg := New()
	assert.Equal(t, 5, cfg.DefaultModelIndex)
	assert.Equal(t, time.Second, cfg.EasterEggDelay())
	assert.Equal(t, 5, cfg.RateLimitBurst)
}
