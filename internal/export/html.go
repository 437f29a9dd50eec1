package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLExporter exports transcripts as standalone HTML documents. The
// transcript is rendered to Markdown first and then converted.
type HTMLExporter struct{}

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Export writes a transcript as an HTML page.
func (e *HTMLExporter) Export(t *Transcript, w io.Writer) error {
	var md bytes.Buffer
	if err := (&MarkdownExporter{}).Export(t, &md); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := htmlRenderer.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}

	title := t.Conversation.Title
	if title == "" {
		title = t.Conversation.ID
	}

	if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
hr { border: none; border-top: 1px solid #ddd; margin: 1.5rem 0; }
em { color: #666; }
</style>
</head>
<body>
%s</body>
</html>
`, title, body.String()); err != nil {
		return err
	}
	return nil
}

// Extension returns the file extension for this format.
func (e *HTMLExporter) Extension() string {
	return "html"
}

// ContentType returns the response content type for this format.
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}
