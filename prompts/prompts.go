package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

// FallbackSystemPrompt is used when neither the prompt file nor the embedded templates can be read.
const FallbackSystemPrompt = "You are a supportive assistant. Answer kindly and concisely."

// PromptData fills the embedded system prompt templates.
type PromptData struct {
	Persona string // template name prefix, e.g. "mnemosyne"
	AppName string
	Tagline string
}

// LoadSystemPrompt reads dir/file. A missing file yields the persona's embedded default; any other
// read failure yields the shorter embedded fallback. It never fails.
func LoadSystemPrompt(dir, file string, data PromptData) string {
	path := filepath.Join(dir, file)
	content, err := os.ReadFile(path)
	switch {
	case err == nil && strings.TrimSpace(string(content)) != "":
		return string(content)

	case err == nil, errors.Is(err, fs.ErrNotExist):
		logger.Info("System prompt file not found, using embedded default",
			zap.String("path", path), zap.String("persona", data.Persona))
		prompt, renderErr := RenderDefaultSystemPrompt(data)
		if renderErr != nil {
			logger.Error("Failed to render default system prompt", zap.Error(renderErr))
			return renderFallback(data)
		}
		return prompt

	default:
		logger.Error("Failed to read system prompt", zap.String("path", path), zap.Error(err))
		return renderFallback(data)
	}
}

// RenderDefaultSystemPrompt renders templates/<persona>_system.md.
func RenderDefaultSystemPrompt(data PromptData) (string, error) {
	return render(fmt.Sprintf("templates/%s_system.md", data.Persona), data)
}

func renderFallback(data PromptData) string {
	prompt, err := render("templates/fallback_system.md", data)
	if err != nil {
		return FallbackSystemPrompt
	}
	return prompt
}

func render(name string, data PromptData) (string, error) {
	templateContent, err := templatesFS.ReadFile(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(filepath.Base(name)).Option("missingkey=error").Parse(string(templateContent))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
