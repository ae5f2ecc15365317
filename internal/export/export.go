// Package export writes reconciled entities to the formats callers consume:
// JSON, CSV, Markdown, and YAML. The core owns no persisted state; file
// layout and format choice stay here at the boundary.
package export

import (
	"io"
	"os"
	"strings"

	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/reconcile"
)

// Format names a supported export format.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// ParseFormat resolves a format name, tolerating the usual short spellings.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewValidationError("format", s, "unknown export format")
	}
}

// Writer renders a reconciliation result to a stream.
type Writer interface {
	Write(w io.Writer, result *reconcile.Result) error
}

// NewWriter returns the writer for a format.
func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return &JSONWriter{Indent: true}, nil
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	case FormatYAML:
		return &YAMLWriter{}, nil
	default:
		return nil, errors.NewValidationError("format", string(format), "unknown export format")
	}
}

// WriteFile renders a result to a file, picking the writer from the format.
func WriteFile(path string, format Format, result *reconcile.Result) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := writer.Write(f, result); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
