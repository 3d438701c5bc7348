// Package gemini wraps the Google Gemini SDK behind the two capabilities the
// rest of sahayi consumes: text embedding (for the knowledge store) and text
// generation with model discovery (for the answer generator).
//
// The wrapper is deliberately thin. It owns the SDK client and the embedder
// model configuration; model selection, prompt assembly and fallback policy
// live with their consumers.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/malayalamlabs/sahayi/internal/log"
)

// GenerationParams is the fixed sampling configuration used for grounded
// answers. Values are chosen for near-deterministic output rather than
// creative variation.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Config configures the client.
type Config struct {
	// APIKey is the Gemini API key. Required.
	APIKey string

	// EmbedderModel is the embedding model name,
	// e.g. "gemini-embedding-001".
	EmbedderModel string

	// Dimension is the embedding output dimensionality. The embedder model
	// is asked to truncate to this size so it matches the pgvector schema.
	Dimension int32

	Logger log.Logger
}

// Client talks to the Gemini API.
type Client struct {
	genai      *genai.Client
	embedModel string
	dimension  int32
	logger     log.Logger
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.EmbedderModel == "" {
		return nil, errors.New("gemini: embedder model is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("gemini: invalid embedding dimension %d", cfg.Dimension)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Client{
		genai:      c,
		embedModel: cfg.EmbedderModel,
		dimension:  cfg.Dimension,
		logger:     cfg.Logger,
	}, nil
}

// ListModels returns the base names of all models the API key can use.
// The "models/" prefix reported by the API is stripped.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for model, err := range c.genai.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini: listing models: %w", err)
		}
		names = append(names, strings.TrimPrefix(model.Name, "models/"))
	}
	c.logger.Debug("listed models", "count", len(names))
	return names, nil
}

// Generate sends prompt to the given model and returns the response text.
func (c *Client) Generate(ctx context.Context, model, prompt string, params GenerationParams) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), generateConfig(params))
	if err != nil {
		return "", fmt.Errorf("gemini: generating content with %q: %w", model, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: model %q returned an empty response", model)
	}
	return text, nil
}

// GenerateStream streams the response text as it is produced. The sequence
// is finite and not restartable; an error mid-stream ends it.
func (c *Client) GenerateStream(ctx context.Context, model, prompt string, params GenerationParams) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.genai.Models.GenerateContentStream(ctx, model, genai.Text(prompt), generateConfig(params)) {
			if err != nil {
				yield("", fmt.Errorf("gemini: streaming from %q: %w", model, err))
				return
			}
			if chunk := resp.Text(); chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

func generateConfig(params GenerationParams) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		TopK:            genai.Ptr(params.TopK),
		MaxOutputTokens: params.MaxOutputTokens,
	}
}
