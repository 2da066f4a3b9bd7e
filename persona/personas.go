package persona

import "github.com/SaiNageswarS/chat-boot/catalog"

const (
	Mnemosyne   = "mnemosyne"
	Reenactment = "reenactment"
	DigiDopps   = "digidopps"

	DefaultPersona = Mnemosyne
)

var registry = map[string]func() Persona{
	Mnemosyne:   mnemosyne,
	Reenactment: reenactment,
	DigiDopps:   digidopps,
}

func groqModels() []catalog.Model {
	return []catalog.Model{
		{ID: "llama-3.3-70b-versatile", DisplayName: "Llama-3.3-70b-Versatile", TokenLimit: 8192, Developer: "Meta", Provider: catalog.ProviderGroq,
			Description: "Latest Llama model for versatile, detailed medical responses"},
		{ID: "Llama3-8b-8192", DisplayName: "Llama3-8b-8192", TokenLimit: 8192, Developer: "Meta", Provider: catalog.ProviderGroq,
			Description: "Efficient Llama model for fast, accurate medical insights"},
		{ID: "mistral-saba-24b", DisplayName: "Mistral-Saba-24b", TokenLimit: 32768, Developer: "Mistral", Provider: catalog.ProviderGroq,
			Description: "Specialized model with large context for in-depth narratives"},
		{ID: "mixtral-8x22b-instruct", DisplayName: "Mixtral-8x22b-Instruct", TokenLimit: 65536, Developer: "Mistral", Provider: catalog.ProviderGroq,
			Description: "Advanced Mixtral for complex medical analysis"},
		{ID: "gemma-2-27b-it", DisplayName: "Gemma-2-27b-IT", TokenLimit: 8192, Developer: "Google", Provider: catalog.ProviderGroq,
			Description: "Updated Gemma model for general-purpose medical dialogue"},
		{ID: "llama-3.2-1b-preview", DisplayName: "Llama-3.2-1b-Preview", TokenLimit: 4096, Developer: "Meta", Provider: catalog.ProviderGroq,
			Description: "Lightweight Llama model for quick responses and basic assistance"},
	}
}

var loadingIndicators = []string{"⏳", "💭", "💡", "✨", "🌀", "🔹", "🔸"}

const amandaPoem = `amanda,
you keep the porch light on for people
who have forgotten they are allowed to come home.

on the loud days you are the quiet,
on the quiet days you are the song,
and every ordinary morning
is a little less ordinary with you in it.

so here is a small lantern made of words:
may it stay lit
long after the screen goes dark.`

func mnemosyne() Persona {
	return Persona{
		Key:              Mnemosyne,
		AppName:          "Mnemosyne",
		Tagline:          "Your Reflective Mental Wellness Companion 🌿",
		InputPlaceholder: "Ask Mnemosyne about mental wellness...",
		PromptFile:       "system_prompt.txt",
		QuickPrompts: []string{
			"Early signs of anxiety?",
			"Spotting depression early?",
			"Self-care for stress?",
			"Explain biopsychosocial factors",
			"Early help for psychosis?",
		},
		Catalog:           catalog.New(groqModels()...),
		DefaultModelIndex: 5,
		EasterEgg: &EasterEgg{
			Triggers: []string{"amanda", "poem"},
			Response: "Ah, for Amanda... 💌\n\n---\n\n" + amandaPoem,
		},
		LoadingMessages: []string{
			"Gathering calming thoughts... 🧘‍♀️💭", "Weaving threads of insight... 🧶✨",
			"Consulting the echoes of memory... 🌌👂", "Brewing a supportive perspective... ☕️🌿",
			"Tuning into wellness frequencies... 🎶💖", "Planting seeds of understanding... 🌱💡",
			"Polishing gems of wisdom... 💎🧠", "Navigating the mindscape with care... 🗺️❤️",
			"Unfolding layers of awareness... 📜🦋", "Crafting a mindful response...✍️🧘‍♂️",
		},
		LoadingIndicators: loadingIndicators,
	}
}

func reenactment() Persona {
	return Persona{
		Key:              Reenactment,
		AppName:          "Chronicle",
		Tagline:          "History, told by those who lived it 📜",
		InputPlaceholder: "Ask about a moment in history...",
		PromptFile:       "reenactment_prompt.txt",
		QuickPrompts: []string{
			"Describe a day in ancient Rome",
			"What was the printing press like?",
			"Life on the Silk Road?",
			"Witness the moon landing",
			"Explain the fall of Constantinople",
		},
		Catalog:           catalog.New(groqModels()...),
		DefaultModelIndex: 0,
		LoadingMessages: []string{
			"Dusting off the archives... 📚", "Lighting the oil lamps... 🪔",
			"Unrolling the scrolls... 📜", "Consulting the chroniclers... 🖋️",
		},
		LoadingIndicators: loadingIndicators,
	}
}

func digidopps() Persona {
	models := append(groqModels(),
		catalog.Model{ID: "llama3.2:1b", DisplayName: "Llama-3.2-1b (local)", TokenLimit: 4096, Developer: "Meta", Provider: catalog.ProviderOllama,
			Description: "Runs on the local Ollama daemon"},
		catalog.Model{ID: "claude-3-5-haiku-latest", DisplayName: "Claude-3.5-Haiku", TokenLimit: 8192, Developer: "Anthropic", Provider: catalog.ProviderAnthropic,
			Description: "Fast Anthropic model for conversational replies"},
	)
	return Persona{
		Key:              DigiDopps,
		AppName:          "DigiDopps",
		Tagline:          "Your digital double, always up for a chat 🤖",
		InputPlaceholder: "Say something to your DigiDopp...",
		PromptFile:       "digidopps_prompt.txt",
		QuickPrompts: []string{
			"Tell me about yourself",
			"What should I read next?",
			"Help me plan my week",
			"Give me a fun fact",
			"Let's brainstorm ideas",
		},
		Catalog:           catalog.New(models...),
		DefaultModelIndex: 0,
		LoadingMessages: []string{
			"Syncing with your double... 🔄", "Booting up some wit... ⚙️",
			"Compiling a reply... 💾", "Reflecting your vibe... 🪞",
		},
		LoadingIndicators: loadingIndicators,
	}
}
