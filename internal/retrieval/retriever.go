// Package retrieval implements the local retriever: embedding-based
// nearest-neighbor search over the corpus index with a deterministic,
// rule-driven re-ranking pass.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/evidence"
	"kaspabot/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks kaspabot/internal/retrieval Embedder

// Embedder produces a query embedding via the external embedding service.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// overFetchFactor widens the nearest-neighbor search beyond k. Ranking
// boosts are content-based and may promote candidates that sit outside the
// naive top-k by raw distance.
const overFetchFactor = 4

// Retriever performs semantic retrieval with heuristic re-ranking.
type Retriever struct {
	embedder Embedder
	index    vectorstore.Index
	rules    []Rule
}

// NewRetriever creates a local retriever. A nil or empty rule set falls
// back to the default rules.
func NewRetriever(embedder Embedder, index vectorstore.Index, rules []Rule) *Retriever {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		rules:    rules,
	}
}

// Retrieve returns up to k chunks ranked best-first, with the internal
// score stripped; ranking is baked into slice order.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]evidence.Chunk, error) {
	chunks, err := r.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return evidence.StripScores(chunks), nil
}

// RetrieveScored is Retrieve with the final score retained on each chunk,
// for call sites that surface it as citation metadata.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, k int) ([]evidence.Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	queryVec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	size, err := r.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to size index: %w", err)
	}
	if size == 0 {
		logger.WarnContext(ctx, "vector index is empty")
		return []evidence.Chunk{}, nil
	}

	searchN := k * overFetchFactor
	if searchN > size {
		searchN = size
	}

	hits, err := r.index.Search(ctx, queryVec, searchN)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	queryLower := strings.ToLower(query)

	candidates := make([]evidence.Chunk, 0, len(hits))
	for _, hit := range hits {
		content, _ := hit.Meta["content"].(string)
		if content == "" {
			logger.WarnContext(ctx, "skipping hit without content", "id", hit.ID)
			continue
		}
		source, _ := hit.Meta["source"].(string)
		section, _ := hit.Meta["section"].(string)
		filename, _ := hit.Meta["filename"].(string)
		metaURL, _ := hit.Meta["url"].(string)

		base := 1 / (1 + float64(hit.Distance))
		contentLower := strings.ToLower(content)

		boost := 1.0
		for _, rule := range r.rules {
			boost *= rule.boost(queryLower, contentLower, source)
		}

		candidates = append(candidates, evidence.Chunk{
			Content:  content,
			Source:   source,
			Section:  section,
			Filename: filename,
			URL:      metaURL,
			Score:    base * boost,
		})
	}

	// Stable sort: candidates with equal final scores keep search-result
	// (insertion) order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k < len(candidates) {
		candidates = candidates[:k]
	}

	logger.DebugContext(ctx, "local retrieval completed",
		"query_length", len(query),
		"over_fetched", len(hits),
		"returned", len(candidates),
	)
	return candidates, nil
}
