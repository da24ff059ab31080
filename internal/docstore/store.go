// Package docstore owns the fixed sample corpus: loaded once at startup,
// immutable for the process lifetime.
package docstore

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

//go:embed dataset/documents.json
var datasetFS embed.FS

// Store holds the validated document collection in load order.
type Store struct {
	docs []domain.Document
	byID map[string]int
}

// Load parses the bundled dataset. Any record missing a required field,
// or colliding on id with an earlier record, rejects the whole load:
// a silently-corrupted corpus is worse than a startup failure.
func Load() (*Store, error) {
	data, err := datasetFS.ReadFile("dataset/documents.json")
	if err != nil {
		return nil, fmt.Errorf("read bundled dataset: %w", err)
	}
	return Parse(data)
}

// Parse builds a Store from raw JSON. Split out from Load so tests can
// feed their own fixtures.
func Parse(data []byte) (*Store, error) {
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataFormat, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", domain.ErrDataFormat)
	}

	byID := make(map[string]int, len(docs))
	for i, d := range docs {
		if d.ID == "" || d.Title == "" || d.Text == "" {
			return nil, fmt.Errorf("%w: record %d is missing a required field (id/title/text)", domain.ErrDataFormat, i)
		}
		if prev, ok := byID[d.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q (records %d and %d)", domain.ErrDataFormat, d.ID, prev, i)
		}
		byID[d.ID] = i
	}

	return &Store{docs: docs, byID: byID}, nil
}

// All returns the documents in insertion order. The returned slice is a
// copy; callers cannot mutate the store through it.
func (s *Store) All() []domain.Document {
	out := make([]domain.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// ByID returns the document with the given id, or domain.ErrNotFound.
func (s *Store) ByID(id string) (domain.Document, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return s.docs[i], nil
}

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.docs) }

// TotalWords returns the word count across the whole corpus.
func (s *Store) TotalWords() int {
	var n int
	for _, d := range s.docs {
		n += d.WordCount()
	}
	return n
}
