package export

import (
	"fmt"
	"io"
	"strings"

	"kaspabot/internal/storage"
)

// MarkdownExporter exports transcripts in Markdown format.
type MarkdownExporter struct{}

// Export writes a transcript as a Markdown document.
func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	title := t.Conversation.Title
	if title == "" {
		title = fmt.Sprintf("Conversation %s", t.Conversation.ID)
	}
	if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
		return err
	}

	if t.Conversation.UserID != "" {
		_, _ = fmt.Fprintf(w, "**User:** %s  \n", t.Conversation.UserID)
	}
	_, _ = fmt.Fprintf(w, "**Started:** %s  \n", t.Conversation.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range t.Messages {
		label := "You"
		if msg.Role == storage.RoleAssistant {
			label = "KaspaBot"
		}
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", label, msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Content)

		if sources := citationLine(msg); sources != "" {
			_, _ = fmt.Fprintf(w, "_%s_\n\n", sources)
		}
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// citationLine summarizes any citation metadata stored on a turn.
func citationLine(msg storage.MessageRecord) string {
	raw, ok := msg.Metadata["citations"].([]any)
	if !ok || len(raw) == 0 {
		return ""
	}

	seen := make(map[string]bool)
	parts := make([]string, 0, len(raw))
	for _, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		label, _ := fields["source"].(string)
		if section, _ := fields["section"].(string); section != "" {
			label += ":" + section
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		parts = append(parts, label)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Sources: " + strings.Join(parts, ", ")
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string {
	return "md"
}

// ContentType returns the response content type for this format.
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}
