// internal/llm/factory/factory.go

// Package factory builds the configured LLM provider.
package factory

import (
	"fmt"

	"github.com/newthinker/marketmind/internal/config"
	"github.com/newthinker/marketmind/internal/llm"
	"github.com/newthinker/marketmind/internal/llm/claude"
	"github.com/newthinker/marketmind/internal/llm/ollama"
	"github.com/newthinker/marketmind/internal/llm/openai"
)

// New creates an LLM provider based on configuration. An empty provider
// name means enrichment is disabled and yields (nil, nil).
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
