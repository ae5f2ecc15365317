package export

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/changeline/changeline/pkg/reconcile"
)

// YAMLWriter renders the full entity set as a YAML document.
type YAMLWriter struct{}

// Write implements Writer.
func (yw *YAMLWriter) Write(w io.Writer, result *reconcile.Result) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	defer func() { _ = enc.Close() }()

	return enc.Encode(report{
		RunID:    result.RunID,
		Stats:    result.Stats,
		Entities: result.Entities,
	})
}
