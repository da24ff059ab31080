package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

// --- Mocks ---

// mockEmbedder returns canned vectors per text. Unknown text fails.
type mockEmbedder struct {
	vectors  map[string][]float32
	embedErr error
	batchErr error
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedErr != nil {
		return domain.EmbeddingResult{}, m.embedErr
	}
	vec, ok := m.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, fmt.Errorf("no vector for %q", text)
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	return domain.BatchFallback(ctx, m, texts)
}

func testDocs() []domain.Document {
	return []domain.Document{
		{ID: "d1", Title: "AI", Text: "artificial intelligence and machine learning", Category: "tech"},
		{ID: "d2", Title: "Diet", Text: "healthy diet and exercise", Category: "health"},
		{ID: "d3", Title: "MedML", Text: "machine learning for healthcare", Category: "tech"},
	}
}

func testVectors() map[string][]float32 {
	return map[string][]float32{
		"artificial intelligence and machine learning": {1, 0, 0},
		"healthy diet and exercise":                    {0, 1, 0},
		"machine learning for healthcare":              {0.9, 0, 0.1},
	}
}

// --- Strategy selection ---

func TestNew_NilEmbedderFallsBack(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "some-model", nil)

	if !e.UsingFallback() {
		t.Error("expected UsingFallback=true with nil embedder")
	}
	if e.Strategy() != "keyword" {
		t.Errorf("Strategy() = %q, expected keyword", e.Strategy())
	}
	if e.Model() != KeywordModel {
		t.Errorf("Model() = %q, expected %q", e.Model(), KeywordModel)
	}
}

func TestNew_EmbedderFailureFallsBackAndSearchStillWorks(t *testing.T) {
	emb := &mockEmbedder{batchErr: errors.New("provider down")}
	e := New(context.Background(), testDocs(), emb, "test-model", nil)

	if !e.UsingFallback() {
		t.Fatal("expected fallback after corpus embedding failure")
	}

	results, err := e.Search(context.Background(), "machine learning", 5)
	if err != nil {
		t.Fatalf("Search after fallback failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected keyword results after fallback")
	}
	if results[0].Document.ID != "d1" {
		t.Errorf("expected d1 first, got %s", results[0].Document.ID)
	}
}

func TestNew_EmbeddingStrategySelected(t *testing.T) {
	emb := &mockEmbedder{vectors: testVectors()}
	e := New(context.Background(), testDocs(), emb, "test-model", nil)

	if e.UsingFallback() {
		t.Fatal("expected embedding strategy")
	}
	if e.Strategy() != "embedding" {
		t.Errorf("Strategy() = %q, expected embedding", e.Strategy())
	}
	if e.Model() != "test-model" {
		t.Errorf("Model() = %q, expected test-model", e.Model())
	}
}

// --- Search contract ---

func TestSearch_TopKValidation(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	for _, topK := range []int{0, -1, -100} {
		if _, err := e.Search(context.Background(), "machine", topK); !errors.Is(err, domain.ErrInvalidTopK) {
			t.Errorf("topK=%d: expected ErrInvalidTopK, got %v", topK, err)
		}
	}
}

func TestSearch_TopKClampedToCorpusSize(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	results, err := e.Search(context.Background(), "machine learning", 100)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != len(testDocs()) {
		t.Errorf("expected %d results (clamped), got %d", len(testDocs()), len(results))
	}
}

func TestSearch_EmptyAndZeroTokenQueries(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	for _, query := range []string{"", "   ", "\t\n", "?!...", "--- ,,, !!!"} {
		results, err := e.Search(context.Background(), query, 5)
		if err != nil {
			t.Errorf("query %q: unexpected error %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("query %q: expected empty results, got %d", query, len(results))
		}
	}
}

func TestSearch_Deterministic(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	first, err := e.Search(context.Background(), "machine learning healthcare", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := e.Search(context.Background(), "machine learning healthcare", 3)
		if err != nil {
			t.Fatalf("repeat %d failed: %v", i, err)
		}
		if len(again) != len(first) {
			t.Fatalf("repeat %d: length %d != %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Document.ID != first[j].Document.ID || again[j].Score != first[j].Score {
				t.Fatalf("repeat %d: result %d differs", i, j)
			}
		}
	}
}

func TestSearch_ScoresInRangeAndSorted(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	results, err := e.Search(context.Background(), "machine learning exercise", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("result %d: score %f out of [0,1]", i, r.Score)
		}
		if i > 0 && results[i-1].Score < r.Score {
			t.Errorf("results not sorted descending at %d", i)
		}
	}
}

// The documented three-document scenario: query "machine learning" fully
// matches d1 and d3, tie broken by load order, d2 scores zero.
func TestSearch_KeywordScenario(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	results, err := e.Search(context.Background(), "machine learning", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "d1" || results[0].Score != 1.0 {
		t.Errorf("first = %s(%f), expected d1(1.0)", results[0].Document.ID, results[0].Score)
	}
	if results[1].Document.ID != "d3" || results[1].Score != 1.0 {
		t.Errorf("second = %s(%f), expected d3(1.0)", results[1].Document.ID, results[1].Score)
	}
}

func TestSearch_FullTextRoundTrip(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	results, err := e.Search(context.Background(), "healthy diet and exercise", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Document.ID != "d2" {
		t.Fatalf("expected d2 first, got %s", results[0].Document.ID)
	}
	if results[0].Score != 1.0 {
		t.Errorf("round-trip score = %f, expected 1.0", results[0].Score)
	}
}

func TestSearch_ZeroScoreDocumentsNotExcluded(t *testing.T) {
	e := New(context.Background(), testDocs(), nil, "", nil)

	results, err := e.Search(context.Background(), "machine learning", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all 3 documents, got %d", len(results))
	}
	if results[2].Document.ID != "d2" || results[2].Score != 0 {
		t.Errorf("last = %s(%f), expected d2(0)", results[2].Document.ID, results[2].Score)
	}
}

// --- Embedding strategy search ---

func TestSearch_EmbeddingRanking(t *testing.T) {
	vectors := testVectors()
	vectors["machine learning"] = []float32{1, 0, 0}
	emb := &mockEmbedder{vectors: vectors}

	e := New(context.Background(), testDocs(), emb, "test-model", nil)
	if e.UsingFallback() {
		t.Fatal("expected embedding strategy")
	}

	results, err := e.Search(context.Background(), "machine learning", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Document.ID != "d1" {
		t.Errorf("expected d1 first (identical direction), got %s", results[0].Document.ID)
	}
	if results[1].Document.ID != "d3" {
		t.Errorf("expected d3 second, got %s", results[1].Document.ID)
	}
	for i, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("result %d: score %f out of [0,1]", i, r.Score)
		}
	}
}

func TestSearch_EmbeddingQueryFailureReturnsError(t *testing.T) {
	emb := &mockEmbedder{vectors: testVectors()}
	e := New(context.Background(), testDocs(), emb, "test-model", nil)

	emb.embedErr = fmt.Errorf("boom: %w", domain.ErrEmbeddingProviderError)

	_, err := e.Search(context.Background(), "machine learning", 3)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}

	// The strategy stays fixed: no silent keyword re-ranking.
	if e.UsingFallback() {
		t.Error("engine must not switch strategies after a per-query failure")
	}
}
