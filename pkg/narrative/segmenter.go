// Package narrative segments free-text announcement bodies into the four
// semantic buckets downstream consumers care about: summary, change
// description, impact/rollout, and required actions. Classification is a
// line-oriented state machine driven by heading-pattern detection, with a
// positional fallback for bodies that use no recognizable headings.
package narrative

import "strings"

// Sections holds the four accumulated narrative buckets. Empty buckets are
// empty strings, never absent.
type Sections struct {
	Summary string `json:"summary"`
	Changes string `json:"changes"`
	Impact  string `json:"impact"`
	Actions string `json:"actions"`
}

// Empty reports whether no bucket accumulated any text.
func (s Sections) Empty() bool {
	return s.Summary == "" && s.Changes == "" && s.Impact == "" && s.Actions == ""
}

type bucket int

const (
	bucketNone bucket = iota
	bucketSummary
	bucketChanges
	bucketImpact
	bucketActions
)

// headingGroups maps each bucket to the heading phrases that open it,
// matched case-insensitively and anchored at line start. The phrases come
// from the admin message feed's recurring section headings.
var headingGroups = []struct {
	bucket   bucket
	headings []string
}{
	{bucketSummary, []string{
		"message summary",
		"summary",
	}},
	{bucketChanges, []string{
		"what's changing",
		"what is changing",
		"changes",
		"overview",
	}},
	{bucketImpact, []string{
		"when this will happen",
		"how this will affect your organization",
		"rollout schedule",
		"rollout",
		"roll-out",
		"impact",
		"timing",
	}},
	{bucketActions, []string{
		"what you need to do",
		"what you can do to prepare",
		"action required",
		"action items",
		"next steps",
		"prepare",
	}},
}

// Fallback line counts for bodies with no recognizable heading.
const (
	fallbackSummaryLines = 6
	fallbackChangesLines = 3
)

// Segment classifies a body's lines into narrative sections. HTML bodies
// are flattened first, with list items preserved as separate lines.
//
// Each line is tested against the heading table; a heading switches the
// active bucket and is itself consumed. Non-heading lines accumulate into
// the active bucket, or are discarded while no bucket is active. If no
// heading is ever recognized and the body has at least one non-empty line,
// the first lines are assigned positionally so the pipeline stays useful
// against non-standard bodies.
func Segment(body string) Sections {
	lines := Flatten(body)

	accum := map[bucket][]string{}
	state := bucketNone
	sawHeading := false

	for _, line := range lines {
		if b, ok := matchHeading(line); ok {
			state = b
			sawHeading = true
			continue
		}
		if state != bucketNone {
			accum[state] = append(accum[state], line)
		}
	}

	if !sawHeading && len(lines) > 0 {
		return fallback(lines)
	}

	return Sections{
		Summary: strings.Join(accum[bucketSummary], "\n"),
		Changes: strings.Join(accum[bucketChanges], "\n"),
		Impact:  strings.Join(accum[bucketImpact], "\n"),
		Actions: strings.Join(accum[bucketActions], "\n"),
	}
}

// matchHeading tests a line against the heading table. Curly apostrophes
// are straightened before comparison; feed bodies use both.
func matchHeading(line string) (bucket, bool) {
	probe := strings.ToLower(strings.TrimSpace(line))
	probe = strings.ReplaceAll(probe, "’", "'")
	probe = strings.TrimLeft(probe, "#*- ")

	for _, group := range headingGroups {
		for _, heading := range group.headings {
			if !strings.HasPrefix(probe, heading) {
				continue
			}
			// A heading line is short; a sentence that merely starts with
			// the phrase keeps its bucket line status only when little
			// trails the match.
			if len(probe) <= len(heading)+2 {
				return group.bucket, true
			}
		}
	}
	return bucketNone, false
}

// fallback assigns the first up-to-six lines to Summary and the next
// up-to-three to Changes.
func fallback(lines []string) Sections {
	sections := Sections{}

	n := len(lines)
	cut := fallbackSummaryLines
	if cut > n {
		cut = n
	}
	sections.Summary = strings.Join(lines[:cut], "\n")

	rest := lines[cut:]
	if len(rest) > fallbackChangesLines {
		rest = rest[:fallbackChangesLines]
	}
	sections.Changes = strings.Join(rest, "\n")

	return sections
}
