package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/changeline/changeline/pkg/reconcile"
)

// MarkdownWriter renders entities as a readable Markdown report: one bullet
// per entity with its links, followed by narrative sections when present.
type MarkdownWriter struct {
	Title string
}

// Write implements Writer.
func (mw *MarkdownWriter) Write(w io.Writer, result *reconcile.Result) error {
	var b strings.Builder

	title := mw.Title
	if title == "" {
		title = "Change Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Run `%s`: %d entities, %d matched across sources.\n\n",
		result.RunID, len(result.Entities), result.Stats.Matched)

	for _, entity := range result.Entities {
		mw.writeEntity(&b, entity)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (mw *MarkdownWriter) writeEntity(b *strings.Builder, e *reconcile.Entity) {
	fmt.Fprintf(b, "- **[%s] %s**", e.ID, e.Title)
	if e.Product != "" {
		fmt.Fprintf(b, " (%s)", e.Product)
	}
	fmt.Fprintf(b, " (confidence %d)\n", e.Confidence)

	if e.Status != "" {
		fmt.Fprintf(b, "  - Status: %s\n", e.Status)
	}
	if e.Severity != "" {
		fmt.Fprintf(b, "  - Severity: %s\n", e.Severity)
	}
	for _, link := range e.Links {
		fmt.Fprintf(b, "  - [%s](%s)\n", link.Label, link.URL)
	}
	if e.Summary != "" {
		fmt.Fprintf(b, "  - %s\n", firstLine(e.Summary))
	}
	if n := e.Narrative; n != nil {
		if n.Changes != "" {
			fmt.Fprintf(b, "  - What's changing: %s\n", firstLine(n.Changes))
		}
		if n.Actions != "" {
			fmt.Fprintf(b, "  - Action items: %s\n", firstLine(n.Actions))
		}
	}
	b.WriteByte('\n')
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
