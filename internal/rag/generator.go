package rag

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/malayalamlabs/sahayi/internal/gemini"
	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// ModelClient is the generation capability the generator consumes. It is
// implemented by gemini.Client.
type ModelClient interface {
	ListModels(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, model, prompt string, params gemini.GenerationParams) (string, error)
	GenerateStream(ctx context.Context, model, prompt string, params gemini.GenerationParams) iter.Seq2[string, error]
}

// ErrNoModels is returned at construction time when the backend reports no
// usable generation model. This is the one fatal configuration failure:
// every later call would silently degrade, so startup must stop instead.
var ErrNoModels = errors.New("no generation models available")

// DefaultPreferredModels is the ordered model preference list, newest
// first. Overridable through configuration.
var DefaultPreferredModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-pro",
}

// defaultGenerationParams keeps answers grounded and near-deterministic.
var defaultGenerationParams = gemini.GenerationParams{
	Temperature:     0.3,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 1024,
}

// fallbackResponses is the fixed per-language apology returned whenever the
// backend fails or produces nothing usable.
var fallbackResponses = map[language.Language]string{
	language.Malayalam: "ക്ഷമിക്കണം, പ്രതികരണം സൃഷ്ടിക്കുന്നതിൽ പിശക് സംഭവിച്ചു. വീണ്ടും ശ്രമിക്കുക.",
	language.Manglish:  "Sorry, response create cheyyunathil error sambhavichu. Veendum sramikkuka.",
	language.English:   "Sorry, there was an error generating the response. Please try again.",
}

// FallbackResponse returns the canned apology for lang, English on miss.
func FallbackResponse(lang language.Language) string {
	if resp, ok := fallbackResponses[lang]; ok {
		return resp
	}
	return fallbackResponses[language.English]
}

// selectModel picks the generation model: the first preference that
// substring-matches an available model wins, otherwise the first available
// model, otherwise ErrNoModels.
func selectModel(preferred, available []string) (string, error) {
	for _, want := range preferred {
		for _, name := range available {
			if strings.Contains(name, want) {
				return name, nil
			}
		}
	}
	if len(available) > 0 {
		return available[0], nil
	}
	return "", ErrNoModels
}

// Generator produces answers through a generation backend. Generate and
// Stream never fail past their boundary: every backend error degrades to
// the per-language fallback string, so callers always receive text.
type Generator struct {
	client ModelClient
	model  string
	params gemini.GenerationParams
	logger log.Logger
}

// NewGenerator probes the backend for available models and resolves the one
// to use for the generator's lifetime. Returns ErrNoModels (wrapped) when
// nothing is available — callers must treat that as fatal.
func NewGenerator(ctx context.Context, client ModelClient, preferred []string, logger log.Logger) (*Generator, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if len(preferred) == 0 {
		preferred = DefaultPreferredModels
	}

	available, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("probing generation models: %w", err)
	}

	model, err := selectModel(preferred, available)
	if err != nil {
		return nil, err
	}
	logger.Info("selected generation model", "model", model, "available", len(available))

	return &Generator{
		client: client,
		model:  model,
		params: defaultGenerationParams,
		logger: logger,
	}, nil
}

// Model returns the resolved backend model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate answers query grounded on contexts, in lang. On any backend
// failure it returns the per-language fallback string.
func (g *Generator) Generate(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) string {
	prompt := BuildPrompt(query, lang, contexts)

	text, err := g.client.Generate(ctx, g.model, prompt, g.params)
	if err != nil {
		g.degrade(ctx, err, lang)
		return FallbackResponse(lang)
	}
	return strings.TrimSpace(text)
}

// Stream answers incrementally. The sequence is finite and not restartable.
// On mid-stream failure, or when the backend produces no chunks at all, the
// fallback string is emitted as the final chunk so the stream never ends
// empty-handed.
func (g *Generator) Stream(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) iter.Seq[string] {
	prompt := BuildPrompt(query, lang, contexts)

	return func(yield func(string) bool) {
		emitted := false
		for chunk, err := range g.client.GenerateStream(ctx, g.model, prompt, g.params) {
			if err != nil {
				g.degrade(ctx, err, lang)
				yield(FallbackResponse(lang))
				return
			}
			emitted = true
			if !yield(chunk) {
				return
			}
		}
		if !emitted {
			g.degrade(ctx, errors.New("stream produced no chunks"), lang)
			yield(FallbackResponse(lang))
		}
	}
}

// degrade records a generation failure before falling back, both as a
// structured log entry and on the active trace span.
func (g *Generator) degrade(ctx context.Context, err error, lang language.Language) {
	g.logger.Error("generation degraded to fallback",
		"model", g.model, "language", lang, "error", err)

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.AddEvent("generation degraded to fallback")
}
