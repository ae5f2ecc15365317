package match

import (
	"net/url"
	"regexp"
	"strings"
)

// idPattern matches the numeric identifiers that roadmap items carry. It is
// tolerant of an optional "RM" prefix and of surrounding label text such as
// "Feature ID 498123" or "Roadmap ID: 498123"; the label itself is not part
// of the match.
var idPattern = regexp.MustCompile(`(?i)(?:RM)?(\d{5,7})`)

// ExtractIDs pulls all candidate roadmap identifiers out of free text. The
// text is best-effort URL-unescaped first so identifiers buried in encoded
// redirect links ("%3Ffeatureid%3D498161") still surface. The result is
// deduplicated and preserves first-occurrence order.
func ExtractIDs(text string) []string {
	if text == "" {
		return nil
	}
	if strings.Contains(text, "%") {
		if unescaped, err := url.QueryUnescape(text); err == nil {
			text = unescaped
		}
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, m := range idPattern.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
