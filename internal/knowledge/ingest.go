package knowledge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// record is one line of the corpus file: a JSON object whose "text" field
// holds up to three pipe-delimited language variants.
type record struct {
	Text string `json:"text"`
}

// parseRecord parses one JSONL line into a document without an ID.
// The text field is split on "|", each part trimmed, and the parts mapped
// positionally to English, Malayalam, Manglish. Missing trailing slots are
// left empty.
func parseRecord(line []byte) (Document, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Document{}, fmt.Errorf("parsing record: %w", err)
	}
	if strings.TrimSpace(rec.Text) == "" {
		return Document{}, fmt.Errorf("record has no text field")
	}

	parts := strings.Split(rec.Text, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	var doc Document
	if len(parts) > 0 {
		doc.English = parts[0]
	}
	if len(parts) > 1 {
		doc.Malayalam = parts[1]
	}
	if len(parts) > 2 {
		doc.Manglish = parts[2]
	}
	return doc, nil
}

// Ingest bulk-loads JSONL corpus records from r. Documents get sequential
// IDs ("doc_0", "doc_1", ...) so re-ingesting the same file replaces rather
// than duplicates. Malformed lines are skipped and logged; the returned
// count covers only successfully stored documents. An embedding or storage
// failure aborts the load and returns the count so far.
func (s *Store) Ingest(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		doc, err := parseRecord([]byte(raw))
		if err != nil {
			s.logger.Warn("skipping malformed corpus record", "line", line, "error", err)
			continue
		}
		doc.ID = fmt.Sprintf("doc_%d", count)

		if err := s.add(ctx, doc); err != nil {
			return count, fmt.Errorf("ingesting line %d: %w", line, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("reading corpus: %w", err)
	}

	s.logger.Info("corpus ingested", "documents", count)
	return count, nil
}
