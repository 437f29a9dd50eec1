// Package vectorstore provides the vector index backing local retrieval:
// an in-process flat index loaded from a pre-built corpus file, and a
// remote Qdrant-backed index. Both are read-only at query time from the
// retriever's perspective.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks kaspabot/internal/vectorstore Index

import "context"

// SearchResult is a nearest-neighbor hit. Distance is the Euclidean
// distance between the query and the stored vector (lower is closer).
// Meta carries the chunk provenance fields stored alongside the vector
// (content, source, section, filename, url).
type SearchResult struct {
	ID       string
	Distance float32
	Meta     map[string]any
}

// Index defines the nearest-neighbor search contract consumed by the
// local retriever. Implementations may be in-process or networked.
type Index interface {
	// Search returns up to n nearest neighbors ordered by ascending distance.
	Search(ctx context.Context, query []float32, n int) ([]SearchResult, error)

	// Count returns the number of vectors in the index.
	Count(ctx context.Context) (int, error)
}
