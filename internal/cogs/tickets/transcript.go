package tickets

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// TranscriptRenderer writes closed ticket transcripts as standalone HTML
// pages. Message content is treated as markdown so code snippets pasted
// into a ticket keep their formatting.
type TranscriptRenderer struct {
	dir string
	md  goldmark.Markdown
}

// NewTranscriptRenderer creates a renderer writing under dir.
func NewTranscriptRenderer(dir string) *TranscriptRenderer {
	return &TranscriptRenderer{
		dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
		),
	}
}

const transcriptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Ticket {{.Ticket.ID}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
header { border-bottom: 1px solid #ddd; padding-bottom: 1rem; }
.entry { margin: 1rem 0; }
.meta { color: #666; font-size: 0.85rem; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
</style>
</head>
<body>
<header>
<h1>{{.Ticket.Subject}}</h1>
<p class="meta">Ticket {{.Ticket.ID}} opened by {{.Ticket.OpenerName}} at {{.Ticket.OpenedAt.Format "2006-01-02 15:04 MST"}}{{if .Ticket.ClosedAt}}, closed at {{.Ticket.ClosedAt.Format "2006-01-02 15:04 MST"}}{{end}}</p>
</header>
{{range .Entries}}
<div class="entry">
<p class="meta">{{.AuthorName}} · {{.At.Format "15:04:05"}}</p>
{{.HTML}}
</div>
{{end}}
</body>
</html>
`

type renderedEntry struct {
	AuthorName string
	At         time.Time
	HTML       template.HTML
}

// Render writes the ticket's transcript page and returns the file path.
func (tr *TranscriptRenderer) Render(guildID string, t *Ticket) (string, error) {
	tmpl, err := template.New("transcript").Parse(transcriptTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing transcript template: %w", err)
	}

	entries := make([]renderedEntry, 0, len(t.Transcript))
	for _, e := range t.Transcript {
		var buf bytes.Buffer
		if err := tr.md.Convert([]byte(e.Content), &buf); err != nil {
			return "", fmt.Errorf("converting transcript entry: %w", err)
		}
		entries = append(entries, renderedEntry{
			AuthorName: e.AuthorName,
			At:         e.At,
			HTML:       template.HTML(buf.String()),
		})
	}

	var page bytes.Buffer
	if err := tmpl.Execute(&page, map[string]any{"Ticket": t, "Entries": entries}); err != nil {
		return "", fmt.Errorf("executing transcript template: %w", err)
	}

	dir := filepath.Join(tr.dir, guildID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating transcript directory: %w", err)
	}
	path := filepath.Join(dir, t.ID+".html")
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	return path, nil
}
