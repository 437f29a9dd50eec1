package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports transcripts in JSON format (pretty-printed).
type JSONExporter struct{}

// Export writes a transcript as indented JSON.
func (e *JSONExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(t)
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string {
	return "json"
}

// ContentType returns the response content type for this format.
func (e *JSONExporter) ContentType() string {
	return "application/json"
}
