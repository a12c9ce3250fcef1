package nlp

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator is the remote free-form completion capability. Implementations
// must respect the caller's context deadline and return an error rather than
// block past it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient adapts the Gemini API to the Generator contract. A nil
// *GeminiClient is a valid degraded client whose calls fail immediately,
// which lets the pipeline run fully offline.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *log.Logger
}

// NewGeminiClient connects to the Gemini API. An empty API key returns a nil
// client and no error so callers degrade to local parsing instead of failing
// startup.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger *log.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, nil
	}
	if logger == nil {
		logger = log.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout, logger: logger}, nil
}

// Generate runs one completion under the configured timeout and returns the
// concatenated text parts of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", ErrRemoteUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	temp := float32(0.1)
	model.Temperature = &temp

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: empty response")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("gemini generate: no text parts in response")
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
