// Package knowledge stores the multilingual campus corpus as dense vectors
// in PostgreSQL + pgvector and answers nearest-neighbor queries over it.
//
// Each document carries up to three language renditions of the same fact
// (English, Malayalam, Manglish). The renditions are joined into one
// combined text that is embedded once, so a query in any of the three
// languages lands near the same vector.
package knowledge

import (
	"context"
	"strings"
)

// Document is one corpus entry. At least one language field is non-empty.
type Document struct {
	ID        string `json:"id"`
	English   string `json:"english"`
	Malayalam string `json:"malayalam"`
	Manglish  string `json:"manglish"`
}

// CombinedText joins the non-empty language fields with " | ". This is the
// embedding input and the content surfaced in retrieval results.
func (d Document) CombinedText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.English, d.Malayalam, d.Manglish} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

// Metadata carries the per-language renditions of a retrieved document.
type Metadata struct {
	English   string `json:"english"`
	Malayalam string `json:"malayalam"`
	Manglish  string `json:"manglish"`
}

// Context is a single retrieval result. Score is cosine distance: smaller
// means more similar. Contexts are produced per query and never persisted.
type Context struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	Score    float32  `json:"score"`
}

// Embedder produces fixed-length vector embeddings. Implementations must be
// deterministic for identical input and keep Dimension stable for the
// lifetime of a store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int32
}
