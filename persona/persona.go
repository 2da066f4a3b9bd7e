package persona

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/prompts"
)

var ErrUnknownPersona = errors.New("unknown persona")

// Persona is one variant of the chat front-end. Variants differ only in data.
type Persona struct {
	Key               string
	AppName           string
	Tagline           string
	InputPlaceholder  string
	PromptFile        string
	QuickPrompts      []string
	Catalog           *catalog.Catalog
	DefaultModelIndex int
	EasterEgg         *EasterEgg
	LoadingMessages   []string
	LoadingIndicators []string
}

// EasterEgg is a fixed reply returned instead of a model call when the latest user message
// mentions one of the triggers.
type EasterEgg struct {
	Triggers []string
	Response string
}

// Match is a case-insensitive substring test against every trigger.
func (e *EasterEgg) Match(text string) bool {
	if e == nil {
		return false
	}
	lower := strings.ToLower(text)
	for _, t := range e.Triggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// LoadingLine picks a random loading message and indicator.
func (p *Persona) LoadingLine() (message, indicator string) {
	if len(p.LoadingMessages) > 0 {
		message = p.LoadingMessages[rand.IntN(len(p.LoadingMessages))]
	}
	if len(p.LoadingIndicators) > 0 {
		indicator = p.LoadingIndicators[rand.IntN(len(p.LoadingIndicators))]
	}
	return message, indicator
}

func (p *Persona) PromptData() prompts.PromptData {
	return prompts.PromptData{Persona: p.Key, AppName: p.AppName, Tagline: p.Tagline}
}

// Lookup returns a copy of the named persona so callers may restrict its catalog.
func Lookup(key string) (Persona, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, key)
	}
	return build(), nil
}

// Keys lists the registered personas in name order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
