// Package sources defines the narrow interface the pipeline uses to obtain
// raw feed payloads. Each source delivers opaque raw records; normalization
// and everything after it happen inside the pipeline, never here.
package sources

import (
	"context"

	"github.com/changeline/changeline/pkg/feeds"
)

// Source fetches one feed's raw records.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Kind is the source kind tag stamped onto normalized records.
	Kind() feeds.Kind

	// Fetch retrieves the feed's current raw records. Implementations own
	// their retry and paging behavior.
	Fetch(ctx context.Context) ([]feeds.RawRecord, error)
}
