package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trendwatch/shared/config"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Tagged failures for model output that cannot be used. Callers decide
// whether to retry; a response is never turned into a partial object.
var (
	ErrEmptyResponse     = errors.New("empty model response")
	ErrMalformedResponse = errors.New("malformed model response")
)

// TextGenerator is the single-call surface the extractor and insight
// generator depend on. Tests substitute a fake.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client wraps the Gemini API for text generation and embeddings. All
// outbound requests pass through a shared token-bucket limiter pinned to
// the provider's documented requests-per-second ceiling.
type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
	limiter        *rate.Limiter
}

func NewClient(cfg *config.AIConfig) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Model returns the text-generation model name, used in cache keys.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// extractJSON pulls the outermost JSON object out of a free-form model
// response. Models routinely wrap JSON in prose or code fences.
func extractJSON(response string) (string, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return response[startIdx : endIdx+1], nil
}
