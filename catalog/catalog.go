package catalog

import (
	"errors"
	"math"
)

const (
	// MinMaxTokens is the smallest reply budget a session may request.
	MinMaxTokens = 128
	// DefaultMaxTokens is used for new sessions unless the model allows less.
	DefaultMaxTokens = 2048
	// DefaultTemperature is the creativity level of a fresh session.
	DefaultTemperature = 0.7
)

// Provider names the backend that serves a model.
const (
	ProviderGroq      = "groq"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

var ErrUnknownModel = errors.New("unknown model")

// Model describes one selectable model.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	TokenLimit  int    `json:"token_limit"`
	Developer   string `json:"developer"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

// Catalog is an ordered, static table of models. The order is the order shown in the model picker
// and the one default model indexes refer to.
type Catalog struct {
	models []Model
}

func New(models ...Model) *Catalog {
	cp := make([]Model, len(models))
	copy(cp, models)
	return &Catalog{models: cp}
}

func (c *Catalog) Models() []Model {
	cp := make([]Model, len(c.models))
	copy(cp, c.models)
	return cp
}

func (c *Catalog) Len() int {
	return len(c.models)
}

func (c *Catalog) Lookup(id string) (Model, error) {
	for _, m := range c.models {
		if m.ID == id {
			return m, nil
		}
	}
	return Model{}, ErrUnknownModel
}

// Default returns the model at index. When index is out of range the first model is returned and
// ok is false so the caller can warn about the misconfiguration.
func (c *Catalog) Default(index int) (m Model, ok bool) {
	if len(c.models) == 0 {
		return Model{}, false
	}
	if index < 0 || index >= len(c.models) {
		return c.models[0], false
	}
	return c.models[index], true
}

// Restrict returns a catalog holding only the models whose provider is enabled.
func (c *Catalog) Restrict(enabled func(provider string) bool) *Catalog {
	kept := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		if enabled(m.Provider) {
			kept = append(kept, m)
		}
	}
	return &Catalog{models: kept}
}

// ClampMaxTokens bounds n to [MinMaxTokens, model.TokenLimit].
func ClampMaxTokens(m Model, n int) int {
	lo := MinMaxTokens
	if m.TokenLimit < lo {
		lo = m.TokenLimit
	}
	if n < lo {
		return lo
	}
	if n > m.TokenLimit {
		return m.TokenLimit
	}
	return n
}

// DefaultTokens is the initial reply budget for m.
func DefaultTokens(m Model) int {
	return min(DefaultMaxTokens, m.TokenLimit)
}

// ClampTemperature bounds t to [0, 1]. NaN becomes DefaultTemperature.
func ClampTemperature(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultTemperature
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
