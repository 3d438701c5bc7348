package rag

import (
	"context"
	"iter"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
)

// staticResponses are the canned per-language answers of the offline
// generator.
var staticResponses = map[language.Language]string{
	language.Malayalam: "ഇത് ഒരു പരീക്ഷണ മോഡ് ആണ്. ദയവായി നിങ്ങളുടെ Gemini API കീ സജ്ജമാക്കുക.",
	language.Manglish:  "Ithu oru test mode aanu. Dayavaayi ningalude Gemini API key set cheyyu.",
	language.English:   "This is a test mode. Please configure your Gemini API key.",
}

// Static is an offline generator: fixed canned per-language responses and
// no external calls. It keeps the pipeline operable and testable when no
// generation backend is configured.
type Static struct{}

// NewStatic creates the offline generator.
func NewStatic() *Static {
	return &Static{}
}

// Model identifies the offline backend.
func (*Static) Model() string {
	return "static-offline"
}

// Generate returns the canned response for lang.
func (*Static) Generate(_ context.Context, _ string, _ []knowledge.Context, lang language.Language) string {
	if resp, ok := staticResponses[lang]; ok {
		return resp
	}
	return staticResponses[language.English]
}

// Stream yields the canned response as a single chunk.
func (s *Static) Stream(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(s.Generate(ctx, query, contexts, lang))
	}
}
