package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changeline/changeline/pkg/reconcile"
)

func sampleResult() *reconcile.Result {
	updated := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	major := true

	return &reconcile.Result{
		RunID: "run-1",
		Stats: reconcile.Stats{Anchors: 1, Candidates: 1, Matched: 1},
		Entities: []*reconcile.Entity{
			{
				ID:          "498123",
				Title:       "Outlook suggested replies",
				Product:     "Outlook",
				Services:    []string{"Outlook", "Exchange"},
				Status:      "Rolling out",
				Severity:    "normal",
				IsMajor:     &major,
				LastUpdated: &updated,
				Confidence:  70,
				Summary:     "Replies get suggestions.",
				Links: []reconcile.Link{
					{Label: "Roadmap", URL: "https://example.com/roadmap/498123"},
				},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"yml", FormatYAML, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{Indent: true}).Write(&buf, sampleResult()))

	var decoded struct {
		RunID    string `json:"runId"`
		Entities []struct {
			ID         string `json:"id"`
			Confidence int    `json:"confidence"`
		} `json:"entities"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Entities, 1)
	assert.Equal(t, "498123", decoded.Entities[0].ID)
	assert.Equal(t, 70, decoded.Entities[0].Confidence)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "498123", rows[1][0])
	assert.Equal(t, "Outlook; Exchange", rows[1][3])
	assert.Equal(t, "true", rows[1][7])
	assert.Equal(t, "2025-08-01T12:00:00Z", rows[1][8])
	assert.Equal(t, "70", rows[1][9])
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{Title: "Weekly Changes"}).Write(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "# Weekly Changes")
	assert.Contains(t, out, "- **[498123] Outlook suggested replies**")
	assert.Contains(t, out, "[Roadmap](https://example.com/roadmap/498123)")
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLWriter{}).Write(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "498123")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteFile(path, FormatJSON, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "498123"))
}

func TestWriteFileUnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x"), Format("bogus"), sampleResult())
	assert.Error(t, err)
}
