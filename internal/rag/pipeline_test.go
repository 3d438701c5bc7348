package rag

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// mockSearcher implements Searcher.
type mockSearcher struct {
	contexts  []knowledge.Context
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockSearcher) Search(_ context.Context, query string, topK int) ([]knowledge.Context, error) {
	m.lastQuery, m.lastTopK = query, topK
	return m.contexts, m.err
}

// captureAnswerer records what the pipeline hands to generation.
type captureAnswerer struct {
	text         string
	lastQuery    string
	lastLang     language.Language
	lastContexts []knowledge.Context
}

func (c *captureAnswerer) Generate(_ context.Context, query string, contexts []knowledge.Context, lang language.Language) string {
	c.lastQuery, c.lastContexts, c.lastLang = query, contexts, lang
	return c.text
}

func (c *captureAnswerer) Stream(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) iter.Seq[string] {
	text := c.Generate(ctx, query, contexts, lang)
	return func(yield func(string) bool) { yield(text) }
}

func (*captureAnswerer) Model() string { return "capture" }

func newTestPipeline(store Searcher, gen Answerer) *Pipeline {
	return NewPipeline(language.NewDetector(), store, gen, log.NewNop())
}

func TestAnswerLanguageResolution(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		override string
		want     language.Language
	}{
		{"valid override wins", "what time does the library open", "ml", language.Malayalam},
		{"override alias accepted", "hello", "malayalam", language.Malayalam},
		{"invalid override falls back to detection", "library evide aanu", "klingon", language.Manglish},
		{"no override detects malayalam script", "ലൈബ്രറി എപ്പോൾ തുറക്കും", "", language.Malayalam},
		{"no override detects english", "what time does the library open", "", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &captureAnswerer{text: "answer"}
			p := newTestPipeline(&mockSearcher{}, gen)

			ans := p.Answer(context.Background(), tt.query, tt.override)
			if ans.Language != tt.want {
				t.Errorf("resolved language = %q, want %q", ans.Language, tt.want)
			}
			if gen.lastLang != tt.want {
				t.Errorf("generator received language %q, want %q", gen.lastLang, tt.want)
			}
		})
	}
}

func TestAnswerPassesContextsToGenerator(t *testing.T) {
	contexts := []knowledge.Context{
		{Content: "College library opens at 9 AM | ലൈബ്രറി 9 മണിക്ക് | Library 9 manikku", Score: 0.12},
	}
	store := &mockSearcher{contexts: contexts}
	gen := &captureAnswerer{text: "The library opens at 9 AM."}
	p := newTestPipeline(store, gen)

	ans := p.Answer(context.Background(), "what time does the library open", "")

	if store.lastQuery != "what time does the library open" {
		t.Errorf("store searched %q", store.lastQuery)
	}
	if store.lastTopK != knowledge.DefaultTopK {
		t.Errorf("topK = %d, want %d", store.lastTopK, knowledge.DefaultTopK)
	}
	if len(gen.lastContexts) != 1 || gen.lastContexts[0] != contexts[0] {
		t.Errorf("generator received contexts %+v", gen.lastContexts)
	}
	if len(ans.Contexts) != 1 {
		t.Errorf("answer carries %d contexts, want 1", len(ans.Contexts))
	}
	if ans.Text != "The library opens at 9 AM." {
		t.Errorf("answer text = %q", ans.Text)
	}

	// the composed prompt must carry the retrieved content verbatim
	prompt := BuildPrompt(gen.lastQuery, gen.lastLang, gen.lastContexts)
	if !strings.Contains(prompt, contexts[0].Content) {
		t.Errorf("prompt missing retrieved context verbatim:\n%s", prompt)
	}
}

func TestAnswerRetrievalFailureDegradesToNoContexts(t *testing.T) {
	store := &mockSearcher{err: errors.New("index unavailable")}
	gen := &captureAnswerer{text: "ungrounded answer"}
	p := newTestPipeline(store, gen)

	ans := p.Answer(context.Background(), "anything", "")

	if len(ans.Contexts) != 0 {
		t.Errorf("expected no contexts after retrieval failure, got %d", len(ans.Contexts))
	}
	if ans.Text != "ungrounded answer" {
		t.Errorf("pipeline must still answer after retrieval failure, got %q", ans.Text)
	}
	if gen.lastContexts != nil {
		t.Errorf("generator should receive nil contexts, got %+v", gen.lastContexts)
	}
}

func TestStreamAnswer(t *testing.T) {
	store := &mockSearcher{contexts: []knowledge.Context{{Content: "fact"}}}
	gen := &captureAnswerer{text: "streamed answer"}
	p := newTestPipeline(store, gen)

	seq, lang, contexts := p.StreamAnswer(context.Background(), "library evide", "")

	if lang != language.Manglish {
		t.Errorf("resolved language = %q, want manglish", lang)
	}
	if len(contexts) != 1 {
		t.Errorf("contexts = %d, want 1", len(contexts))
	}

	var chunks []string
	for c := range seq {
		chunks = append(chunks, c)
	}
	if strings.Join(chunks, "") != "streamed answer" {
		t.Errorf("streamed %q", chunks)
	}
}
