package knowledge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/malayalamlabs/sahayi/internal/log"
)

// DefaultTopK is the number of contexts returned when the caller does not
// ask for a specific count.
const DefaultTopK = 3

// querier is the database surface the store needs. *DB implements it;
// tests substitute an in-memory fake.
type querier interface {
	UpsertDocument(ctx context.Context, row DocumentRow) error
	SearchDocuments(ctx context.Context, embedding pgvector.Vector, limit int32) ([]SearchRow, error)
	CountDocuments(ctx context.Context) (int64, error)
	ListDocuments(ctx context.Context, limit, offset int32) ([]Document, error)
}

// Store manages the corpus with vector search. Embeddings are computed
// synchronously at insert time and never recomputed; replacing a document's
// text replaces its embedding.
//
// Store is safe for concurrent reads. Concurrent writes are not ordered by
// the store; the last upsert for an ID wins.
type Store struct {
	q        querier
	embedder Embedder
	logger   log.Logger
}

// New creates a Store.
func New(q querier, embedder Embedder, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{q: q, embedder: embedder, logger: logger}
}

// Insert adds a single document and returns its generated ID. The ID is
// UUID-based rather than random-number-based so two concurrent inserts
// cannot collide.
func (s *Store) Insert(ctx context.Context, english, malayalam, manglish string) (string, error) {
	doc := Document{
		ID:        "doc_" + uuid.NewString(),
		English:   english,
		Malayalam: malayalam,
		Manglish:  manglish,
	}
	if err := s.add(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// add embeds the document's combined text and upserts it.
func (s *Store) add(ctx context.Context, doc Document) error {
	content := doc.CombinedText()
	if content == "" {
		return fmt.Errorf("document %q has no text in any language", doc.ID)
	}

	vec, err := s.embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding document %q: %w", doc.ID, err)
	}

	err = s.q.UpsertDocument(ctx, DocumentRow{
		ID:        doc.ID,
		English:   doc.English,
		Malayalam: doc.Malayalam,
		Manglish:  doc.Manglish,
		Content:   content,
		Embedding: vec,
	})
	if err != nil {
		return err
	}

	s.logger.Debug("stored document", "id", doc.ID, "content_length", len(content))
	return nil
}

// embed runs the embedder and enforces the store's fixed dimensionality.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	values, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}
	if want := int(s.embedder.Dimension()); len(values) != want {
		return pgvector.Vector{}, fmt.Errorf("embedding has %d dimensions, store expects %d", len(values), want)
	}
	return pgvector.NewVector(values), nil
}

// Search embeds query and returns at most topK contexts ordered by
// ascending cosine distance. topK <= 0 means DefaultTopK. An empty store
// yields an empty slice, not an error.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Context, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.q.SearchDocuments(ctx, vec, int32(topK)) // #nosec G115 -- topK is a small positive request parameter
	if err != nil {
		return nil, err
	}

	contexts := make([]Context, 0, len(rows))
	for _, row := range rows {
		contexts = append(contexts, Context{
			Content: row.Content,
			Metadata: Metadata{
				English:   row.English,
				Malayalam: row.Malayalam,
				Manglish:  row.Manglish,
			},
			Score: row.Distance,
		})
	}
	return contexts, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.q.CountDocuments(ctx)
}

// List returns documents in insertion order.
func (s *Store) List(ctx context.Context, limit, offset int32) ([]Document, error) {
	const maxListLimit = 1000
	if limit <= 0 || limit > maxListLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d, got %d", maxListLimit, limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	return s.q.ListDocuments(ctx, limit, offset)
}
