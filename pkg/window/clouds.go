package window

import "strings"

// Canonical cloud/jurisdiction labels.
const (
	CloudWorldwide = "Worldwide (Standard Multi-Tenant)"
	CloudGCCHigh   = "GCC High"
	CloudGCC       = "GCC"
	CloudDoD       = "DoD"
)

// cloudSynonyms maps folded synonym strings to their canonical label. The
// table covers the spellings the three feeds actually emit.
var cloudSynonyms = map[string]string{
	"worldwide":                         CloudWorldwide,
	"worldwide (standard multi-tenant)": CloudWorldwide,
	"standard multi-tenant":             CloudWorldwide,
	"general":                           CloudWorldwide,
	"ww":                                CloudWorldwide,
	"gcc high":                          CloudGCCHigh,
	"gcch":                              CloudGCCHigh,
	"us gcc high":                       CloudGCCHigh,
	"gcc":                               CloudGCC,
	"us gcc":                            CloudGCC,
	"government community cloud (gcc)":  CloudGCC,
	"dod":                               CloudDoD,
	"us dod":                            CloudDoD,
}

// CanonicalCloud maps a jurisdiction string onto its canonical label.
// Unrecognized strings pass through trimmed but otherwise unchanged; an
// unknown cloud is never an error.
func CanonicalCloud(s string) string {
	trimmed := strings.TrimSpace(s)
	if canonical, ok := cloudSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// CanonicalClouds canonicalizes a tag set, dropping empties and duplicates
// while preserving order.
func CanonicalClouds(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		canonical := CanonicalCloud(tag)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
