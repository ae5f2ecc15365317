package feeds

import (
	"strings"
	"time"

	"github.com/changeline/changeline/pkg/errors"
)

// ErrUnusable is returned when a raw record yields neither a usable title
// nor a usable identifier. Callers drop the record and may count it; the
// rejection is never fatal.
var ErrUnusable = errors.New("record has no usable title or identifier")

// aliases lists, per logical field, the key names probed in order. Probing
// is case-insensitive and tolerant of naming-convention drift: "featureId",
// "FeatureID", "feature_id" and "Feature Id" all resolve to the same key.
var aliases = map[string][]string{
	"id":       {"id", "featureId", "publicId", "roadmapId", "messageId", "guid"},
	"title":    {"title", "name", "subject", "headline"},
	"body":     {"body", "bodyContent", "description", "shortDescription", "content", "details"},
	"product":  {"product", "productWorkload", "workload", "primaryProduct"},
	"status":   {"status", "roadmapStatus", "publicRoadmapStatus"},
	"category": {"category", "classification"},
	"summary":  {"summary", "messageSummary", "abstract"},
	"url":      {"url", "link", "webLink", "moreInfoUrl", "officialRoadmapLink"},
	"severity": {"severity"},
	"isMajor":  {"isMajorChange", "majorChange", "isMajor"},
	"services": {"services", "products", "workloads", "affectedWorkloads", "tags", "categories"},
	"clouds":   {"clouds", "cloudInstances", "cloudInstance", "tenantCloud", "instances"},
	"created":  {"created", "createdDateTime", "publishedDate", "pubDate", "published"},
	"modified": {"modified", "lastModifiedDateTime", "updated", "lastUpdated"},
	"start":    {"start", "startDateTime", "releaseDate", "plannedStart"},
	"end":      {"end", "endDateTime", "actionRequiredByDateTime", "plannedEnd"},
	"dates":    {"targetedDates", "targetedRelease", "releasePhaseDate", "timeline"},
}

// Normalize converts a raw source record into the canonical Record shape.
// It returns ErrUnusable when the record has neither a title nor a stable
// identifier; such records are dropped silently by callers.
//
// Normalize performs no I/O and never mutates the raw record.
func Normalize(kind Kind, raw RawRecord) (*Record, error) {
	keys := indexKeys(raw)

	title := cleanText(probeString(raw, keys, "title"))
	id := strings.TrimSpace(probeString(raw, keys, "id"))
	if title == "" && id == "" {
		return nil, ErrUnusable
	}

	rec := &Record{
		Kind:      kind,
		NaturalID: id,
		Title:     title,
		Body:      probeString(raw, keys, "body"),
		Product:   cleanText(probeString(raw, keys, "product")),
		Status:    cleanText(probeString(raw, keys, "status")),
		Category:  cleanText(probeString(raw, keys, "category")),
		Summary:   cleanText(probeString(raw, keys, "summary")),
		URL:       strings.TrimSpace(probeString(raw, keys, "url")),
		Severity:  cleanText(probeString(raw, keys, "severity")),
		Services:  probeStringSet(raw, keys, "services"),
		Clouds:    probeStringSet(raw, keys, "clouds"),
		Raw:       raw,
	}

	if v, ok := probe(raw, keys, "isMajor"); ok {
		if b, ok := v.(bool); ok {
			rec.IsMajor = &b
		}
	}

	rec.Timestamps = Timestamps{
		Created:  probeTime(raw, keys, "created", &rec.DateTexts),
		Modified: probeTime(raw, keys, "modified", &rec.DateTexts),
		Start:    probeTime(raw, keys, "start", &rec.DateTexts),
		End:      probeTime(raw, keys, "end", &rec.DateTexts),
	}
	if s := cleanText(probeString(raw, keys, "dates")); s != "" {
		rec.DateTexts = append(rec.DateTexts, s)
	}

	return rec, nil
}

// indexKeys builds a lookup from folded key names to the actual keys of the
// raw record, so that alias probing is insensitive to case and to
// camelCase/snake_case/space-separated drift. The first key wins when two
// raw keys fold identically.
func indexKeys(raw RawRecord) map[string]string {
	idx := make(map[string]string, len(raw))
	for k := range raw {
		f := foldKey(k)
		if _, exists := idx[f]; !exists {
			idx[f] = k
		}
	}
	return idx
}

// foldKey lowercases a key and strips separators so that "Feature Id",
// "feature_id" and "featureId" all fold to "featureid".
func foldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(toLower(r))
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// probe returns the first non-nil value among the aliases of a logical field.
func probe(raw RawRecord, keys map[string]string, field string) (any, bool) {
	for _, alias := range aliases[field] {
		if actual, ok := keys[foldKey(alias)]; ok {
			if v := raw[actual]; v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// probeString returns the first non-empty string-typed hit for a field.
func probeString(raw RawRecord, keys map[string]string, field string) string {
	for _, alias := range aliases[field] {
		actual, ok := keys[foldKey(alias)]
		if !ok {
			continue
		}
		if s := scalarString(raw[actual]); s != "" {
			return s
		}
	}
	return ""
}

// probeStringSet coerces an array-typed field to a deduplicated ordered set.
// Accepted shapes: a single string (optionally semicolon/comma separated), a
// list of strings, or a list of tagged objects carrying a name/value field.
func probeStringSet(raw RawRecord, keys map[string]string, field string) []string {
	for _, alias := range aliases[field] {
		actual, ok := keys[foldKey(alias)]
		if !ok {
			continue
		}
		if set := coerceSet(raw[actual]); len(set) > 0 {
			return set
		}
	}
	return nil
}

func coerceSet(v any) []string {
	var items []string
	switch val := v.(type) {
	case string:
		items = splitList(val)
	case []string:
		items = val
	case []any:
		for _, elem := range val {
			switch e := elem.(type) {
			case string:
				items = append(items, e)
			case map[string]any:
				for _, key := range []string{"name", "value", "tagName", "tag"} {
					if s := scalarString(e[key]); s != "" {
						items = append(items, s)
						break
					}
				}
			}
		}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = cleanText(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitList splits a scalar list representation on the separators feed
// payloads actually use.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
}

// probeTime parses a timestamp field. Strictly ISO-shaped values become
// Timestamps entries; fuzzy values ("Q3 CY2025") are preserved as date text
// for the window filter's cascade.
func probeTime(raw RawRecord, keys map[string]string, field string, texts *[]string) *time.Time {
	for _, alias := range aliases[field] {
		actual, ok := keys[foldKey(alias)]
		if !ok {
			continue
		}
		switch v := raw[actual].(type) {
		case time.Time:
			t := v
			return &t
		case *time.Time:
			if v != nil {
				t := *v
				return &t
			}
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if t, ok := parseISO(s); ok {
				return &t
			}
			*texts = append(*texts, s)
		}
	}
	return nil
}

// parseISO accepts the timestamp layouts the feeds emit verbatim: RFC 3339
// datetimes, bare ISO dates, and the RFC 1123/822 forms RSS pubDate uses.
func parseISO(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// scalarString renders a scalar value as a string, or "" when it is not a
// string-like scalar.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return ""
	}
}

// cleanText collapses runs of whitespace and strips zero-width characters
// that feed payloads routinely carry.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
