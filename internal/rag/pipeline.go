// Package rag implements the retrieval-augmented answering pipeline.
//
// A query flows through four stages:
//
//	query → language resolution → vector retrieval → prompt assembly → generation
//
// The pipeline never returns an error for data-dependent failures. A failed
// retrieval degrades to "no contexts" (the model is still asked, ungrounded);
// a failed generation degrades to a fixed per-language fallback string. Both
// degradations are logged and recorded on the active trace span. The only
// fatal condition is construction-time: no usable generation model.
package rag

import (
	"context"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// Searcher is the retrieval capability the pipeline consumes, implemented
// by knowledge.Store.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Context, error)
}

// Answerer produces answer text. Implementations never return errors; they
// degrade to fallback text internally. Implemented by Generator and Static.
type Answerer interface {
	Generate(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) string
	Stream(ctx context.Context, query string, contexts []knowledge.Context, lang language.Language) iter.Seq[string]
	Model() string
}

// Answer is the result of one pipeline call.
type Answer struct {
	Text     string
	Language language.Language
	Contexts []knowledge.Context
}

// Pipeline composes the detector, the knowledge store and the generator.
// It is stateless between calls apart from those injected collaborators.
type Pipeline struct {
	detector  *language.Detector
	store     Searcher
	generator Answerer
	logger    log.Logger
	tracer    trace.Tracer
}

// NewPipeline creates a Pipeline. All collaborators are required.
func NewPipeline(detector *language.Detector, store Searcher, generator Answerer, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		detector:  detector,
		store:     store,
		generator: generator,
		logger:    logger,
		tracer:    otel.Tracer("sahayi/rag"),
	}
}

// Answer resolves the response language (a valid override wins, otherwise
// detection), retrieves the top contexts and generates the answer. It
// always returns text.
func (p *Pipeline) Answer(ctx context.Context, query, override string) Answer {
	ctx, span := p.tracer.Start(ctx, "rag.answer")
	defer span.End()

	lang := p.resolveLanguage(query, override)
	contexts := p.retrieve(ctx, query, lang)
	text := p.generator.Generate(ctx, query, contexts, lang)

	span.SetAttributes(
		attribute.String("rag.language", lang.String()),
		attribute.Int("rag.contexts", len(contexts)),
	)
	return Answer{Text: text, Language: lang, Contexts: contexts}
}

// StreamAnswer is the incremental variant: language and contexts are
// resolved up front, the answer text arrives as a lazy chunk sequence.
func (p *Pipeline) StreamAnswer(ctx context.Context, query, override string) (iter.Seq[string], language.Language, []knowledge.Context) {
	ctx, span := p.tracer.Start(ctx, "rag.answer_stream")
	defer span.End()

	lang := p.resolveLanguage(query, override)
	contexts := p.retrieve(ctx, query, lang)
	return p.generator.Stream(ctx, query, contexts, lang), lang, contexts
}

func (p *Pipeline) resolveLanguage(query, override string) language.Language {
	if lang, ok := language.Parse(override); ok {
		return lang
	}
	return p.detector.Detect(query)
}

// retrieve searches the store and degrades any failure to "no contexts".
func (p *Pipeline) retrieve(ctx context.Context, query string, lang language.Language) []knowledge.Context {
	contexts, err := p.store.Search(ctx, query, knowledge.DefaultTopK)
	if err != nil {
		p.logger.Warn("retrieval degraded to no contexts", "language", lang, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.AddEvent("retrieval degraded to no contexts")
		return nil
	}
	return contexts
}
