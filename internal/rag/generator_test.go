package rag

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/malayalamlabs/sahayi/internal/gemini"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// mockModelClient implements ModelClient.
type mockModelClient struct {
	models  []string
	listErr error

	text   string
	genErr error

	chunks    []string
	streamErr error // emitted after chunks

	lastModel  string
	lastPrompt string
	lastParams gemini.GenerationParams
}

func (m *mockModelClient) ListModels(context.Context) ([]string, error) {
	return m.models, m.listErr
}

func (m *mockModelClient) Generate(_ context.Context, model, prompt string, params gemini.GenerationParams) (string, error) {
	m.lastModel, m.lastPrompt, m.lastParams = model, prompt, params
	return m.text, m.genErr
}

func (m *mockModelClient) GenerateStream(_ context.Context, model, prompt string, params gemini.GenerationParams) iter.Seq2[string, error] {
	m.lastModel, m.lastPrompt, m.lastParams = model, prompt, params
	return func(yield func(string, error) bool) {
		for _, c := range m.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if m.streamErr != nil {
			yield("", m.streamErr)
		}
	}
}

func newTestGenerator(t *testing.T, client *mockModelClient) *Generator {
	t.Helper()
	g, err := NewGenerator(context.Background(), client, nil, log.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestSelectModel(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		available []string
		want      string
		wantErr   bool
	}{
		{
			name:      "first preference wins",
			preferred: []string{"gemini-2.5-flash", "gemini-pro"},
			available: []string{"gemini-pro", "gemini-2.5-flash"},
			want:      "gemini-2.5-flash",
		},
		{
			name:      "substring match",
			preferred: []string{"gemini-1.5-flash"},
			available: []string{"gemini-1.5-flash-001"},
			want:      "gemini-1.5-flash-001",
		},
		{
			name:      "later preference used when earlier missing",
			preferred: []string{"gemini-2.5-flash", "gemini-pro"},
			available: []string{"gemini-pro"},
			want:      "gemini-pro",
		},
		{
			name:      "no preference matches falls back to first available",
			preferred: []string{"gemini-2.5-flash"},
			available: []string{"palm-2", "bison"},
			want:      "palm-2",
		},
		{
			name:      "nothing available",
			preferred: []string{"gemini-2.5-flash"},
			available: nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectModel(tt.preferred, tt.available)
			if tt.wantErr {
				if !errors.Is(err, ErrNoModels) {
					t.Fatalf("selectModel error = %v, want ErrNoModels", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectModel: %v", err)
			}
			if got != tt.want {
				t.Errorf("selectModel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGeneratorFatalWithoutModels(t *testing.T) {
	_, err := NewGenerator(context.Background(), &mockModelClient{}, nil, log.NewNop())
	if !errors.Is(err, ErrNoModels) {
		t.Fatalf("NewGenerator with no models: err = %v, want ErrNoModels", err)
	}

	_, err = NewGenerator(context.Background(), &mockModelClient{listErr: errors.New("network down")}, nil, log.NewNop())
	if err == nil {
		t.Fatal("NewGenerator with failing probe should error")
	}
}

func TestGenerate(t *testing.T) {
	client := &mockModelClient{
		models: []string{"gemini-2.5-flash"},
		text:   "  The library opens at 9 AM.  \n",
	}
	g := newTestGenerator(t, client)

	got := g.Generate(context.Background(), "library timing?", nil, language.English)
	if got != "The library opens at 9 AM." {
		t.Errorf("Generate = %q, want trimmed response", got)
	}
	if client.lastModel != "gemini-2.5-flash" {
		t.Errorf("called model %q", client.lastModel)
	}
	if client.lastParams != defaultGenerationParams {
		t.Errorf("generation params = %+v, want fixed defaults", client.lastParams)
	}
	if !strings.Contains(client.lastPrompt, "library timing?") {
		t.Errorf("prompt missing query:\n%s", client.lastPrompt)
	}
}

func TestGenerateFallsBackPerLanguage(t *testing.T) {
	for _, lang := range language.All() {
		t.Run(lang.String(), func(t *testing.T) {
			client := &mockModelClient{
				models: []string{"gemini-2.5-flash"},
				genErr: errors.New("backend unavailable"),
			}
			g := newTestGenerator(t, client)

			got := g.Generate(context.Background(), "q", nil, lang)
			if got != FallbackResponse(lang) {
				t.Errorf("Generate under failure = %q, want exact fallback %q", got, FallbackResponse(lang))
			}
		})
	}
}

func TestStream(t *testing.T) {
	client := &mockModelClient{
		models: []string{"gemini-2.5-flash"},
		chunks: []string{"The library ", "opens at 9 AM."},
	}
	g := newTestGenerator(t, client)

	var got []string
	for chunk := range g.Stream(context.Background(), "q", nil, language.English) {
		got = append(got, chunk)
	}
	if strings.Join(got, "") != "The library opens at 9 AM." {
		t.Errorf("streamed %q", got)
	}
}

func TestStreamMidFailureEmitsFallback(t *testing.T) {
	client := &mockModelClient{
		models:    []string{"gemini-2.5-flash"},
		chunks:    []string{"The library "},
		streamErr: errors.New("connection reset"),
	}
	g := newTestGenerator(t, client)

	var got []string
	for chunk := range g.Stream(context.Background(), "q", nil, language.Manglish) {
		got = append(got, chunk)
	}
	if len(got) != 2 {
		t.Fatalf("streamed %d chunks, want partial output plus fallback", len(got))
	}
	if got[len(got)-1] != FallbackResponse(language.Manglish) {
		t.Errorf("final chunk = %q, want fallback", got[len(got)-1])
	}
}

func TestStreamEmptyEmitsFallback(t *testing.T) {
	client := &mockModelClient{models: []string{"gemini-2.5-flash"}}
	g := newTestGenerator(t, client)

	var got []string
	for chunk := range g.Stream(context.Background(), "q", nil, language.English) {
		got = append(got, chunk)
	}
	if len(got) != 1 || got[0] != FallbackResponse(language.English) {
		t.Errorf("empty stream yielded %q, want single fallback chunk", got)
	}
}

func TestStaticGenerator(t *testing.T) {
	s := NewStatic()

	for _, lang := range language.All() {
		text := s.Generate(context.Background(), "q", nil, lang)
		if text == "" {
			t.Errorf("Static.Generate(%s) returned empty text", lang)
		}
		var chunks []string
		for c := range s.Stream(context.Background(), "q", nil, lang) {
			chunks = append(chunks, c)
		}
		if len(chunks) != 1 || chunks[0] != text {
			t.Errorf("Static.Stream(%s) = %q, want single chunk %q", lang, chunks, text)
		}
	}

	if s.Generate(context.Background(), "q", nil, language.Malayalam) ==
		s.Generate(context.Background(), "q", nil, language.English) {
		t.Error("static responses should be localized per language")
	}
}

func TestFallbackResponseUnknownLanguage(t *testing.T) {
	if FallbackResponse(language.Language("xx")) != fallbackResponses[language.English] {
		t.Error("unknown language should fall back to the English apology")
	}
}
