package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embed generates a vector embedding for text. The embedder model truncates
// output to the configured dimensionality so vectors match the store schema.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := c.dimension
	resp, err := c.genai.Models.EmbedContent(ctx, c.embedModel, genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dim})
	if err != nil {
		return nil, fmt.Errorf("gemini: embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini: empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}

// Dimension returns the fixed embedding dimensionality.
func (c *Client) Dimension() int32 {
	return c.dimension
}
