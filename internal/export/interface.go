// Package export renders conversation transcripts in downloadable formats.
package export

import (
	"fmt"
	"io"

	"kaspabot/internal/storage"
)

// Transcript bundles a conversation summary with its full message log.
type Transcript struct {
	Conversation storage.ConversationRecord `json:"conversation"`
	Messages     []storage.MessageRecord    `json:"messages"`
}

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "html":
		return &HTMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: markdown, html, json)", format)
	}
}
