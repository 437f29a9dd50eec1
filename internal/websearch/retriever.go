package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/evidence"
)

//go:generate go run go.uber.org/mock/mockgen -source=retriever.go -destination=mocks/mock_searcher.go -package=mocks

// Searcher performs one grounded generation request and returns the raw
// model text.
type Searcher interface {
	GenerateGrounded(ctx context.Context, prompt string) (string, error)
}

// Retriever turns grounded web search output into evidence chunks.
type Retriever struct {
	searcher Searcher
}

// NewRetriever creates a web retriever on top of a grounded search client.
func NewRetriever(searcher Searcher) *Retriever {
	return &Retriever{searcher: searcher}
}

// webFact is the JSON shape the search prompt asks the model to emit.
type webFact struct {
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Date    string  `json:"date"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

func searchPrompt(query string, k int) string {
	return fmt.Sprintf(`Search the web for current information about the Kaspa blockchain relevant to this question:

%s

Respond with ONLY a JSON array of at most %d atomic facts, newest first. Each element must have this shape:
{"content": "<one self-contained factual statement>", "url": "<source url>", "date": "<publication date if known, else \"unknown\">", "source": "web_search", "score": <relevance between 0.0 and 1.0>}

Only include facts about Kaspa. Do not include commentary outside the JSON array.`, query, k)
}

// Retrieve runs one grounded search and returns at most k chunks.
//
// The method degrades instead of failing: a context deadline yields an empty
// set, any other service error yields a single synthetic chunk describing
// the failure, and unparseable output is passed through as one chunk.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]evidence.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	logger := contextutil.LoggerFromContext(ctx)

	raw, err := r.searcher.GenerateGrounded(ctx, searchPrompt(query, k))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			logger.WarnContext(ctx, "web search timed out", "error", err)
			return []evidence.Chunk{}, nil
		}
		logger.WarnContext(ctx, "web search failed", "error", err)
		return []evidence.Chunk{{
			Content: fmt.Sprintf("Web search was unavailable for this question: %v", err),
			Source:  evidence.SourceWeb,
			Score:   0.5,
		}}, nil
	}

	chunks := parseFacts(raw, k)
	logger.DebugContext(ctx, "web search complete", "query", query, "chunks", len(chunks))
	return chunks, nil
}

// parseFacts decodes the model output into chunks. Output that is not a
// JSON array is returned whole as a single maximum-score chunk so the
// arbitrator still sees the evidence.
func parseFacts(raw string, k int) []evidence.Chunk {
	text := stripCodeFences(strings.TrimSpace(raw))

	var facts []webFact
	if err := json.Unmarshal([]byte(text), &facts); err != nil {
		if text == "" {
			return []evidence.Chunk{}
		}
		return []evidence.Chunk{{
			Content: text,
			Source:  evidence.SourceWeb,
			Score:   1.0,
		}}
	}

	chunks := make([]evidence.Chunk, 0, len(facts))
	for _, f := range facts {
		if strings.TrimSpace(f.Content) == "" {
			continue
		}
		score := f.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		date := f.Date
		if strings.TrimSpace(date) == "" {
			date = "unknown"
		}
		chunks = append(chunks, evidence.Chunk{
			Content: f.Content,
			Source:  evidence.SourceWeb,
			URL:     f.URL,
			Date:    date,
			Score:   score,
		})
		if len(chunks) == k {
			break
		}
	}
	return chunks
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	trimmed := strings.TrimPrefix(text, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
