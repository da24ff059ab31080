// Package engine ranks the sample corpus against a query string.
//
// Strategy selection happens once, in New: if an embedding provider is
// available and the whole corpus can be vectorized, queries are ranked by
// cosine similarity; otherwise the engine degrades to keyword-overlap
// scoring and stays there for its lifetime. A degraded search experience
// is preferable to a service that refuses to start.
package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

// KeywordModel is the model identifier reported under the keyword strategy.
const KeywordModel = "keyword"

// DefaultTopK is the result limit applied when the caller does not set one.
const DefaultTopK = 5

// Result pairs a document with its relevance score in [0,1].
type Result struct {
	Document domain.Document
	Score    float64
}

// scorer is the per-strategy ranking contract: one score per document,
// in corpus order.
type scorer interface {
	score(ctx context.Context, query string) ([]float64, error)
}

// Engine ranks a fixed document collection. Immutable after New; a single
// instance is safe for concurrent use.
type Engine struct {
	docs          []domain.Document
	scorer        scorer
	model         string
	usingFallback bool
}

// New selects a ranking strategy and returns a ready engine.
//
// With a non-nil embedder the whole corpus is vectorized up front (the
// only slow step, amortized across every later query). Any failure here
// is absorbed: the engine logs a warning and falls back to keyword
// scoring rather than failing startup. The decision is final for the
// engine's lifetime.
func New(ctx context.Context, docs []domain.Document, embedder domain.Embedder, model string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{docs: docs}

	if embedder != nil {
		sc, err := newEmbeddingScorer(ctx, docs, embedder)
		if err == nil {
			e.scorer = sc
			e.model = model
			logger.Info("Search engine ready",
				zap.String("strategy", "embedding"),
				zap.String("model", model),
				zap.Int("documents", len(docs)),
			)
			return e
		}
		logger.Warn("Embedding strategy initialization failed, falling back to keyword search",
			zap.String("model", model),
			zap.Error(err),
		)
	}

	e.scorer = newKeywordScorer(docs)
	e.model = KeywordModel
	e.usingFallback = true
	logger.Info("Search engine ready",
		zap.String("strategy", "keyword"),
		zap.Int("documents", len(docs)),
	)
	return e
}

// Search ranks the corpus against query and returns at most topK results,
// sorted by descending score; ties keep corpus load order.
//
// topK must be positive and is clamped to the corpus size. A query that is
// empty, whitespace, or has no tokens after normalization yields an empty
// slice and no error.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	if len(tokenize(query)) == 0 {
		return []Result{}, nil
	}

	scores, err := e.scorer.score(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(e.docs))
	for i, d := range e.docs {
		results[i] = Result{Document: d, Score: scores[i]}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// UsingFallback reports whether the engine degraded to keyword scoring.
func (e *Engine) UsingFallback() bool { return e.usingFallback }

// Model returns the active embedding model identifier, or KeywordModel
// under the fallback strategy. Display-only.
func (e *Engine) Model() string { return e.model }

// Strategy returns "embedding" or "keyword". Display-only.
func (e *Engine) Strategy() string {
	if e.usingFallback {
		return "keyword"
	}
	return "embedding"
}
