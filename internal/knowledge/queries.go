package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DocumentRow is the write shape for the documents table.
type DocumentRow struct {
	ID        string
	English   string
	Malayalam string
	Manglish  string
	Content   string
	Embedding pgvector.Vector
}

// SearchRow is one vector search hit, ordered by ascending cosine distance.
type SearchRow struct {
	English   string
	Malayalam string
	Manglish  string
	Content   string
	Distance  float32
}

const upsertDocumentSQL = `INSERT INTO documents (id, english, malayalam, manglish, content, embedding)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		english = EXCLUDED.english,
		malayalam = EXCLUDED.malayalam,
		manglish = EXCLUDED.manglish,
		content = EXCLUDED.content,
		embedding = EXCLUDED.embedding`

// <=> is pgvector cosine distance; the ivfflat index on the table uses the
// same operator class, so ordering and index agree.
const searchDocumentsSQL = `SELECT english, malayalam, manglish, content, embedding <=> $1 AS distance
	FROM documents
	ORDER BY embedding <=> $1
	LIMIT $2`

const countDocumentsSQL = `SELECT count(*) FROM documents`

const listDocumentsSQL = `SELECT id, english, malayalam, manglish
	FROM documents
	ORDER BY created_at, id
	LIMIT $1 OFFSET $2`

// DB runs the documents-table queries against a pgx pool.
// The pool must have pgvector types registered (see app setup).
type DB struct {
	pool *pgxpool.Pool
}

// NewDB wraps a pgx pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// UpsertDocument inserts a document or fully replaces an existing one.
func (db *DB) UpsertDocument(ctx context.Context, row DocumentRow) error {
	_, err := db.pool.Exec(ctx, upsertDocumentSQL,
		row.ID, row.English, row.Malayalam, row.Manglish, row.Content, row.Embedding)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", row.ID, err)
	}
	return nil
}

// SearchDocuments returns the limit nearest documents to embedding by cosine
// distance, closest first.
func (db *DB) SearchDocuments(ctx context.Context, embedding pgvector.Vector, limit int32) ([]SearchRow, error) {
	rows, err := db.pool.Query(ctx, searchDocumentsSQL, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	results, err := pgx.CollectRows(rows, pgx.RowToStructByPos[SearchRow])
	if err != nil {
		return nil, fmt.Errorf("scanning search results: %w", err)
	}
	return results, nil
}

// CountDocuments returns the total number of stored documents.
func (db *DB) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	if err := db.pool.QueryRow(ctx, countDocumentsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// ListDocuments returns documents in insertion order.
func (db *DB) ListDocuments(ctx context.Context, limit, offset int32) ([]Document, error) {
	rows, err := db.pool.Query(ctx, listDocumentsSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Document])
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}
	return docs, nil
}
