package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/phamtrung99/notecast/internal/domain"
	"github.com/phamtrung99/notecast/internal/logger"
)

type implGemini struct {
	apiKeys    []string
	currentKey int
	model      string
	prompt     string
	logger     logger.Logger
}

func (s *implGemini) Name() string { return "gemini" }

// Summarize sends the transcript to Gemini. Rotates API keys on 429 / quota
// errors so a free-tier key running dry mid-lecture does not kill the run.
func (s *implGemini) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := s.prompt + "\n\n" + transcript

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.apiKeys[s.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		text := collectText(result)
		if text == "" {
			return "", fmt.Errorf("gemini model %s: %w", s.model, domain.ErrEmptyOutput)
		}
		return text, nil
	}

	return "", fmt.Errorf("all gemini keys exhausted: %w", lastErr)
}

// Ping only checks that keys are configured. Burning quota on a health check
// defeats the point of rotating free-tier keys.
func (s *implGemini) Ping(_ context.Context) error {
	if len(s.apiKeys) == 0 {
		return fmt.Errorf("no gemini API keys configured: %w", domain.ErrServiceUnavailable)
	}
	return nil
}

func (s *implGemini) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return strings.TrimSpace(text)
}
