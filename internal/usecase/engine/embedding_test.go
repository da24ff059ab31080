package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

func TestNormalize_UnitLength(t *testing.T) {
	v := normalize([]float32{3, 4})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("normalized vector has squared length %f, want 1", sum)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := normalize([]float32{0, 0, 0})
	for i, x := range v {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %f", i, x)
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.0000001, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestNewEmbeddingScorer_DimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"artificial intelligence and machine learning": {1, 0, 0},
		"healthy diet and exercise":                    {0, 1},
		"machine learning for healthcare":              {0, 0, 1},
	}}

	_, err := newEmbeddingScorer(context.Background(), testDocs(), emb)
	if err == nil {
		t.Fatal("expected error for mismatched corpus vector dimensions")
	}
}

func TestNewEmbeddingScorer_CountMismatch(t *testing.T) {
	emb := &shortBatchEmbedder{}

	_, err := newEmbeddingScorer(context.Background(), testDocs(), emb)
	if err == nil {
		t.Fatal("expected error when provider returns too few vectors")
	}
}

func TestEmbeddingScorer_QueryDimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{vectors: testVectors()}
	sc, err := newEmbeddingScorer(context.Background(), testDocs(), emb)
	if err != nil {
		t.Fatalf("newEmbeddingScorer failed: %v", err)
	}

	emb.vectors["tiny"] = []float32{1}
	_, err = sc.score(context.Background(), "tiny")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbeddingScorer_NegativeCosineClampedToZero(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"artificial intelligence and machine learning": {1, 0, 0},
		"healthy diet and exercise":                    {0, 1, 0},
		"machine learning for healthcare":              {0, 0, 1},
		"opposite": {-1, 0, 0},
	}}
	sc, err := newEmbeddingScorer(context.Background(), testDocs(), emb)
	if err != nil {
		t.Fatalf("newEmbeddingScorer failed: %v", err)
	}

	scores, err := sc.score(context.Background(), "opposite")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if scores[0] != 0 {
		t.Errorf("anti-parallel score = %f, want 0 after clamping", scores[0])
	}
}

// shortBatchEmbedder returns fewer vectors than inputs.
type shortBatchEmbedder struct{}

func (s *shortBatchEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func (s *shortBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts)-1)}, nil
}
