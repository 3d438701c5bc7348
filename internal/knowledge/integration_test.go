package knowledge

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/malayalamlabs/sahayi/db"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// setupIntegrationStore connects to the database named by
// SAHAYI_TEST_DATABASE_URL, runs migrations and returns a store over an
// empty documents table. Skips the test when the variable is unset.
func setupIntegrationStore(t *testing.T) *Store {
	t.Helper()

	connURL := os.Getenv("SAHAYI_TEST_DATABASE_URL")
	if connURL == "" {
		t.Skip("SAHAYI_TEST_DATABASE_URL not set, skipping integration test")
	}

	if err := db.Migrate(connURL); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		t.Fatalf("parsing connection config: %v", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE documents"); err != nil {
		t.Fatalf("truncating documents: %v", err)
	}

	return New(NewDB(pool), &fakeEmbedder{dim: 768}, log.NewNop())
}

func TestIntegrationRoundTrip(t *testing.T) {
	store := setupIntegrationStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, "The library opens at 8 AM.", "ലൈബ്രറി രാവിലെ 8 മണിക്ക് തുറക്കും.", "Library 8 manikku thurakkum.")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !strings.HasPrefix(id, "doc_") {
		t.Errorf("Insert() id = %q, want doc_ prefix", id)
	}

	if _, err := store.Insert(ctx, "Exam fees are due by month end.", "", ""); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	contexts, err := store.Search(ctx, "when does the library open", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(contexts) != 2 {
		t.Fatalf("Search() returned %d contexts, want 2", len(contexts))
	}
	if !strings.Contains(contexts[0].Content, "library") {
		t.Errorf("top context = %q, want the library document first", contexts[0].Content)
	}
	if contexts[0].Score > contexts[1].Score {
		t.Errorf("results not ordered by distance: %v > %v", contexts[0].Score, contexts[1].Score)
	}

	docs, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("List() returned %d documents, want 2", len(docs))
	}
}

func TestIntegrationIngestReplacesInPlace(t *testing.T) {
	store := setupIntegrationStore(t)
	ctx := context.Background()

	corpus := `{"text": "The bus leaves at 5 PM. | ബസ് 5 മണിക്ക് പുറപ്പെടും. | Bus 5 manikku purappedum."}
{"text": "Scholarship forms close July 31."}`

	n, err := store.Ingest(ctx, strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Ingest() = %d, want 2", n)
	}

	// Ingesting again reuses the positional IDs instead of duplicating.
	if _, err := store.Ingest(ctx, strings.NewReader(corpus)); err != nil {
		t.Fatalf("re-Ingest() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() after re-ingest = %d, want 2", count)
	}
}
