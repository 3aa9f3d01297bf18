package summarizer

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
)

// New creates the Summarizer backend selected in the config. Gemini needs at
// least one API key; the keys come from the environment so they never end up
// in the config file.
func New(cfg *config.Config, apiKeys []string, log logger.Logger) (Summarizer, error) {
	switch cfg.Summarizer.Backend {
	case "gemini":
		if len(apiKeys) == 0 {
			return nil, fmt.Errorf("gemini backend requires GEMINI_API_KEYS to be set")
		}
		return &implGemini{
			apiKeys: apiKeys,
			model:   cfg.Gemini.Model,
			prompt:  cfg.Summarizer.Prompt,
			logger:  log,
		}, nil
	case "", "ollama":
		return &implOllama{
			client: &http.Client{
				Timeout: time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
			},
			baseURL: strings.TrimSuffix(cfg.Ollama.BaseURL, "/"),
			model:   cfg.Ollama.Model,
			prompt:  cfg.Summarizer.Prompt,
			logger:  log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Summarizer.Backend)
	}
}
