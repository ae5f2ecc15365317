package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/changeline/changeline/pkg/reconcile"
)

// csvHeader is the fixed column set of the CSV export.
var csvHeader = []string{
	"id", "title", "product", "services", "status", "category",
	"severity", "is_major", "last_updated", "confidence", "summary", "links",
}

// CSVWriter renders entities as flat CSV rows.
type CSVWriter struct{}

// Write implements Writer.
func (cw *CSVWriter) Write(w io.Writer, result *reconcile.Result) error {
	out := csv.NewWriter(w)
	if err := out.Write(csvHeader); err != nil {
		return err
	}

	for _, entity := range result.Entities {
		if err := out.Write(csvRow(entity)); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

func csvRow(e *reconcile.Entity) []string {
	links := make([]string, 0, len(e.Links))
	for _, link := range e.Links {
		links = append(links, link.Label+": "+link.URL)
	}

	return []string{
		e.ID,
		e.Title,
		e.Product,
		strings.Join(e.Services, "; "),
		e.Status,
		e.Category,
		e.Severity,
		formatBool(e.IsMajor),
		formatTime(e.LastUpdated),
		strconv.Itoa(e.Confidence),
		e.Summary,
		strings.Join(links, " | "),
	}
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
