package chat

import (
	"time"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/SaiNageswarS/chat-boot/memory"
	"github.com/SaiNageswarS/chat-boot/persona"
)

type AssemblerBuilder struct {
	assembler Assembler
}

func NewAssemblerBuilder() *AssemblerBuilder {
	return &AssemblerBuilder{
		assembler: Assembler{
			clients:        map[string]llm.LLMClient{},
			catalog:        catalog.New(),
			easterEggDelay: time.Second,
			turnTimeout:    90 * time.Second,
		},
	}
}

// WithClient serves every catalog model of provider with client.
func (b *AssemblerBuilder) WithClient(provider string, client llm.LLMClient) *AssemblerBuilder {
	b.assembler.clients[provider] = client
	return b
}

func (b *AssemblerBuilder) WithCatalog(c *catalog.Catalog) *AssemblerBuilder {
	b.assembler.catalog = c
	return b
}

// WithPersona takes the easter egg and loading lines of p.
func (b *AssemblerBuilder) WithPersona(p *persona.Persona) *AssemblerBuilder {
	b.assembler.loadingLine = p.LoadingLine
	return b.WithEasterEgg(p.EasterEgg)
}

func (b *AssemblerBuilder) WithEasterEgg(egg *persona.EasterEgg) *AssemblerBuilder {
	b.assembler.easterEgg = egg
	return b
}

func (b *AssemblerBuilder) WithEasterEggDelay(d time.Duration) *AssemblerBuilder {
	b.assembler.easterEggDelay = d
	return b
}

// WithTurnTimeout bounds one streaming request. Zero disables the bound.
func (b *AssemblerBuilder) WithTurnTimeout(d time.Duration) *AssemblerBuilder {
	b.assembler.turnTimeout = d
	return b
}

func (b *AssemblerBuilder) WithHistoryWindow(maxTurns int) *AssemblerBuilder {
	b.assembler.window = memory.NewWindow(maxTurns)
	return b
}

func (b *AssemblerBuilder) Build() *Assembler {
	a := b.assembler
	clients := make(map[string]llm.LLMClient, len(a.clients))
	for k, v := range a.clients {
		clients[k] = v
	}
	a.clients = clients
	return &a
}
