package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

// embeddingScorer ranks documents by cosine similarity between the query
// vector and corpus vectors cached at construction. The corpus is small
// enough that a linear scan is indistinguishable from an ANN index, so no
// index is built.
type embeddingScorer struct {
	embedder domain.Embedder
	vectors  [][]float32 // unit-length, one per document in corpus order
}

// newEmbeddingScorer vectorizes the whole corpus through embedder. Uses a
// single batch call when the provider supports it.
func newEmbeddingScorer(ctx context.Context, docs []domain.Document, embedder domain.Embedder) (*embeddingScorer, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := embedder.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, embedder, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(res.Embeddings) != len(docs) {
		return nil, fmt.Errorf("embed corpus: got %d vectors for %d documents", len(res.Embeddings), len(docs))
	}

	dim := 0
	vectors := make([][]float32, len(res.Embeddings))
	for i, vec := range res.Embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("embed corpus: empty vector for document %d", i)
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, fmt.Errorf("embed corpus: vector dimension mismatch at document %d (%d != %d)", i, len(vec), dim)
		}
		vectors[i] = normalize(vec)
	}

	return &embeddingScorer{embedder: embedder, vectors: vectors}, nil
}

func (s *embeddingScorer) score(ctx context.Context, query string) ([]float64, error) {
	res, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(res.Embedding) != len(s.vectors[0]) {
		return nil, fmt.Errorf("%w: query vector dimension %d, corpus dimension %d",
			domain.ErrEmbeddingProviderError, len(res.Embedding), len(s.vectors[0]))
	}

	q := normalize(res.Embedding)

	scores := make([]float64, len(s.vectors))
	for i, v := range s.vectors {
		// Both vectors are unit-length, so the dot product is the cosine.
		// Clamp to [0,1]: negative similarity carries no ranking value here.
		scores[i] = clamp01(dot(q, v))
	}
	return scores, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalize returns a unit-length copy of v. A zero vector is returned
// unchanged so it scores 0 against everything.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
