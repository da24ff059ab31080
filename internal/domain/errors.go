package domain

import "errors"

var (
	// ErrDataFormat signals a malformed or duplicate-id record in the bundled dataset.
	ErrDataFormat = errors.New("invalid dataset format")
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidTopK signals a non-positive result limit.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
