package window

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	quarterPattern = regexp.MustCompile(`(?i)^Q([1-4])\s+(\d{4})$`)
	halfPattern    = regexp.MustCompile(`(?i)^H([12])\s+(\d{4})$`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	cyMarker       = regexp.MustCompile(`(?i)\bCY`)
)

var quarterMonth = map[string]time.Month{
	"1": time.January, "2": time.April, "3": time.July, "4": time.October,
}

// ParseDate runs the fuzzy date cascade over one feed date string. Attempts,
// in order, first success wins:
//
//  1. strict ISO-8601 date or datetime, or the RFC 1123/822 forms that RSS
//     pubDate fields carry
//  2. month name plus four-digit year ("August 2025")
//  3. quarter notation ("Q3 CY2025", optional CY prefix) -> first month of
//     the quarter, day 1
//  4. half-year notation ("H1 2025") -> month 1 or 7, day 1
//  5. bare four-digit year -> January 1
//
// The second return value is false when nothing parses; such a record is
// classified undated.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// "Q3 CY2025" and "September cy2025" both drop the calendar-year marker;
	// the feeds are not consistent about its case.
	s = strings.TrimSpace(cyMarker.ReplaceAllString(s, ""))

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

	if t, err := time.Parse("January 2006", s); err == nil {
		return t, true
	}

	if m := quarterPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		return time.Date(year, quarterMonth[m[1]], 1, 0, 0, 0, 0, time.UTC), true
	}

	if m := halfPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		month := time.January
		if m[1] == "2" {
			month = time.July
		}
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
	}

	if yearPattern.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}
