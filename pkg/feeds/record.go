// Package feeds defines the canonical record shape shared by every feed
// source and the normalizer that produces it. Raw per-source payloads are
// loosely shaped maps; nothing downstream of this package ever touches them
// except as opaque provenance.
package feeds

import "time"

// Kind tags a record with the source it came from.
type Kind string

// Known source kinds.
const (
	KindRoadmap       Kind = "roadmap"
	KindMessageCenter Kind = "messagecenter"
	KindWeb           Kind = "web"
)

// String returns the string representation of a source kind.
func (k Kind) String() string {
	return string(k)
}

// RawRecord is an opaque per-source payload. Shapes vary by source and by
// feed version and are never assumed complete.
type RawRecord map[string]any

// Timestamps holds the known temporal attributes of a record. Any of them
// may be nil; the window filter treats a record with none as undated.
type Timestamps struct {
	Created  *time.Time
	Modified *time.Time
	Start    *time.Time
	End      *time.Time
}

// Any reports whether at least one timestamp is present.
func (t Timestamps) Any() bool {
	return t.Created != nil || t.Modified != nil || t.Start != nil || t.End != nil
}

// Earliest returns the earliest present timestamp, or the zero time when
// none is present.
func (t Timestamps) Earliest() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, ts := range []*time.Time{t.Created, t.Modified, t.Start, t.End} {
		if ts == nil {
			continue
		}
		if !found || ts.Before(earliest) {
			earliest = *ts
			found = true
		}
	}
	return earliest, found
}

// Record is the canonical normalized shape of one feed item.
//
// Title is never empty for an accepted record unless the source supplied a
// stable identifier instead. NaturalID is present only when the source
// supplied a stable identifier. Records are created once per ingestion pass
// and never mutated afterward.
type Record struct {
	Kind      Kind
	NaturalID string
	Title     string
	Body      string

	// Product and the descriptive catalog fields below are populated from
	// whatever the source exposed; empty means the source did not say.
	Product  string
	Status   string
	Category string
	Summary  string
	URL      string

	// Severity and IsMajor are operational metadata carried only by the
	// admin message feed.
	Severity string
	IsMajor  *bool

	// Services is a deduplicated, order-preserving set of service/workload
	// tags. Clouds is the same for jurisdiction/cloud tags.
	Services []string
	Clouds   []string

	Timestamps Timestamps

	// DateTexts carries raw date-bearing strings the source exposed in
	// non-ISO forms ("Q3 CY2025", "August 2025"). The window filter runs
	// its parsing cascade over these.
	DateTexts []string

	// Raw is the original payload, kept for provenance only.
	Raw RawRecord
}

// HasTimestamp reports whether the record carries any temporal signal at
// all, parsed or not.
func (r *Record) HasTimestamp() bool {
	return r.Timestamps.Any() || len(r.DateTexts) > 0
}
