package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
)

// CorpusRecord is one entry of the pre-built corpus file: a chunk of text,
// its provenance, and the embedding computed offline.
type CorpusRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Section   string    `json:"section,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	URL       string    `json:"url,omitempty"`
	Embedding []float32 `json:"embedding"`
}

// MemoryIndex is a flat in-process index using brute-force Euclidean
// distance. Reads are concurrent; Add takes the write lock, so index
// mutation should not race heavy query load.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	meta      []map[string]any
}

// NewMemoryIndex creates an empty flat index for vectors of the given size.
func NewMemoryIndex(dimension int) (*MemoryIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be greater than 0")
	}
	return &MemoryIndex{dimension: dimension}, nil
}

// ReadCorpus reads and validates a corpus JSON file.
func ReadCorpus(path string) ([]CorpusRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var records []CorpusRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no records", path)
	}
	return records, nil
}

// LoadCorpus reads a corpus JSON file and builds a flat index from it.
// The index dimension is taken from the first record.
func LoadCorpus(path string) (*MemoryIndex, error) {
	records, err := ReadCorpus(path)
	if err != nil {
		return nil, err
	}

	idx, err := NewMemoryIndex(len(records[0].Embedding))
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if rec.Content == "" {
			return nil, fmt.Errorf("corpus record %d has empty content", i)
		}
		if err := idx.Add(rec); err != nil {
			return nil, fmt.Errorf("corpus record %d: %w", i, err)
		}
	}
	return idx, nil
}

// Add appends a record to the index.
func (m *MemoryIndex) Add(rec CorpusRecord) error {
	if len(rec.Embedding) != m.dimension {
		return fmt.Errorf("vector has size %d, expected %d", len(rec.Embedding), m.dimension)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = append(m.vectors, rec.Embedding)
	m.meta = append(m.meta, map[string]any{
		"id":       rec.ID,
		"content":  rec.Content,
		"source":   rec.Source,
		"section":  rec.Section,
		"filename": rec.Filename,
		"url":      rec.URL,
	})
	return nil
}

// Search returns up to n nearest neighbors by Euclidean distance,
// ascending. Ties keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, n int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != m.dimension {
		return nil, fmt.Errorf("query vector has size %d, expected %d", len(query), m.dimension)
	}
	if n <= 0 {
		return nil, fmt.Errorf("n must be greater than 0")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]SearchResult, 0, len(m.vectors))
	for i, vec := range m.vectors {
		id, _ := m.meta[i]["id"].(string)
		results = append(results, SearchResult{
			ID:       id,
			Distance: euclidean(query, vec),
			Meta:     m.meta[i],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if n < len(results) {
		results = results[:n]
	}
	return results, nil
}

// Count returns the number of vectors in the index.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

func euclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
