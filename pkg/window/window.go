// Package window decides whether noisy, inconsistently dated and tagged
// records fall inside a caller-supplied time window and jurisdiction set.
// Date parsing degrades to an "undated" classification rather than erroring;
// unknown jurisdictions pass through rather than excluding.
package window

import (
	"time"

	"github.com/changeline/changeline/pkg/feeds"
)

// daysPerMonth is the fixed approximation used to convert a lookback
// expressed in months into a day count.
const daysPerMonth = 30.44

// Window is a caller-supplied inclusion window. Either Since/Until are set
// explicitly, or LookbackMonths expresses a trailing window ending now. A
// zero Window includes everything dated.
type Window struct {
	Since          *time.Time
	Until          *time.Time
	LookbackMonths int

	// KeepUndated opts undated records into the window. The default is
	// strict exclusion.
	KeepUndated bool

	// Now overrides the clock for lookback windows. Nil means time.Now.
	Now func() time.Time
}

// Bounds resolves the window to concrete since/until instants. An explicit
// Since/Until pair wins over a lookback.
func (w Window) Bounds() (since, until *time.Time) {
	if w.Since != nil || w.Until != nil {
		return w.Since, w.Until
	}
	if w.LookbackMonths > 0 {
		now := time.Now
		if w.Now != nil {
			now = w.Now
		}
		end := now().UTC()
		start := end.AddDate(0, 0, -int(daysPerMonth*float64(w.LookbackMonths)))
		return &start, &end
	}
	return nil, nil
}

// IsZero reports whether the window constrains nothing.
func (w Window) IsZero() bool {
	return w.Since == nil && w.Until == nil && w.LookbackMonths == 0
}

// Contains reports whether an instant falls inside the window bounds.
func (w Window) Contains(t time.Time) bool {
	since, until := w.Bounds()
	if since != nil && t.Before(*since) {
		return false
	}
	if until != nil && t.After(*until) {
		return false
	}
	return true
}

// EarliestDate returns the earliest parseable date among a record's known
// date-bearing attributes, running the fuzzy cascade over its date texts.
// The second return value is false for undated records.
func EarliestDate(rec *feeds.Record) (time.Time, bool) {
	earliest, found := rec.Timestamps.Earliest()
	for _, text := range rec.DateTexts {
		t, ok := ParseDate(text)
		if !ok {
			continue
		}
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}
	return earliest, found
}

// IncludeByDate decides date inclusion for one record. A record whose
// earliest parseable date falls within the window is included; an undated
// record is included only when the window keeps undated records.
func IncludeByDate(rec *feeds.Record, w Window) bool {
	if w.IsZero() {
		return true
	}
	earliest, dated := EarliestDate(rec)
	if !dated {
		return w.KeepUndated
	}
	return w.Contains(earliest)
}

// IncludeByCloud decides jurisdiction inclusion. A record with no detected
// jurisdiction tag is included under any filter (unknown never excludes); a
// tagged record is included only when a canonicalized tag is in the
// requested set. An empty requested set includes everything.
func IncludeByCloud(rec *feeds.Record, requested []string) bool {
	if len(requested) == 0 || len(rec.Clouds) == 0 {
		return true
	}
	want := make(map[string]struct{}, len(requested))
	for _, cloud := range requested {
		want[CanonicalCloud(cloud)] = struct{}{}
	}
	for _, tag := range rec.Clouds {
		if _, ok := want[CanonicalCloud(tag)]; ok {
			return true
		}
	}
	return false
}

// Include is the combined window/jurisdiction decision for one record.
func Include(rec *feeds.Record, w Window, clouds []string) bool {
	return IncludeByDate(rec, w) && IncludeByCloud(rec, clouds)
}

// Filter returns the records passing the combined decision, preserving
// input order.
func Filter(records []*feeds.Record, w Window, clouds []string) []*feeds.Record {
	out := make([]*feeds.Record, 0, len(records))
	for _, rec := range records {
		if Include(rec, w, clouds) {
			out = append(out, rec)
		}
	}
	return out
}
