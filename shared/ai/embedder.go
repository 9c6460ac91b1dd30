package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EmbedText maps a topic label to a fixed-length vector using the
// configured embedding model.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding values for %q", ErrEmptyResponse, text)
	}
	return result.Embeddings[0].Values, nil
}
