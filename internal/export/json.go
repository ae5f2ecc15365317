package export

import (
	"encoding/json"
	"io"

	"github.com/changeline/changeline/pkg/reconcile"
)

// JSONWriter renders the full entity set as a JSON document.
type JSONWriter struct {
	Indent bool
}

// report is the JSON export envelope.
type report struct {
	RunID    string              `json:"runId"`
	Stats    reconcile.Stats     `json:"stats"`
	Entities []*reconcile.Entity `json:"entities"`
}

// Write implements Writer.
func (jw *JSONWriter) Write(w io.Writer, result *reconcile.Result) error {
	enc := json.NewEncoder(w)
	if jw.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report{
		RunID:    result.RunID,
		Stats:    result.Stats,
		Entities: result.Entities,
	})
}
