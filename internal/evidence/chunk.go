// Package evidence defines the unit of retrieved evidence shared by the
// local and web retrievers, the arbiter, and the answer service.
package evidence

// SourceWeb is the source category assigned to chunks produced by the
// web retriever.
const SourceWeb = "web_search"

// Chunk is a single retrieved passage plus provenance.
//
// Content is always non-empty for chunks returned by a retriever; every
// other field may be the empty string. Score is an internal ranking value:
// unbounded positive for local retrieval, in [0,1] for web retrieval. Most
// call sites receive chunks with Score already stripped; it is retained
// only where citations need it.
type Chunk struct {
	Content  string  `json:"content"`
	Source   string  `json:"source"`
	Section  string  `json:"section,omitempty"`
	Filename string  `json:"filename,omitempty"`
	URL      string  `json:"url,omitempty"`
	Date     string  `json:"date,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// Citation is the provenance record echoed to API clients for each chunk
// that contributed to an answer.
type Citation struct {
	Source   string  `json:"source"`
	Section  string  `json:"section"`
	Filename string  `json:"filename"`
	URL      string  `json:"url"`
	Score    float64 `json:"score,omitempty"`
}

// CitationFor builds a Citation from a chunk.
func CitationFor(c Chunk) Citation {
	return Citation{
		Source:   c.Source,
		Section:  c.Section,
		Filename: c.Filename,
		URL:      c.URL,
		Score:    c.Score,
	}
}

// StripScores returns a copy of chunks with the internal score zeroed.
// Ranking survives in slice order.
func StripScores(chunks []Chunk) []Chunk {
	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		c.Score = 0
		out[i] = c
	}
	return out
}
