// Package match ranks candidate records against anchor records when the two
// sources share no primary key. Scoring is pure and deterministic: the same
// anchor and pool always produce the same ranked candidates.
package match

import (
	"math"
	"sort"
	"strings"

	"github.com/changeline/changeline/pkg/feeds"
)

// Config holds the scoring constants. They are passed explicitly so boundary
// values can be tested deterministically rather than living as implicit
// globals.
type Config struct {
	// ExactIDScore is the base score assigned when the anchor's natural id
	// appears verbatim in a candidate's text. A near-certain signal; it
	// dominates the heuristic signals below.
	ExactIDScore int

	// TitleWeight scales title Jaccard similarity into points.
	TitleWeight int

	// ServiceBonus is added when any anchor service tag intersects the
	// candidate's service tags.
	ServiceBonus int

	// RecencyBonus is added when the candidate carries any timestamp at
	// all. Absence of timestamps is not penalized further.
	RecencyBonus int

	// MinScore is the acceptance threshold. Below it a match is noise, not
	// signal; exact-id matches bypass the threshold.
	MinScore int
}

// DefaultConfig returns the scoring constants the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		ExactIDScore: 70,
		TitleWeight:  50,
		ServiceBonus: 15,
		RecencyBonus: 5,
		MinScore:     35,
	}
}

// Reason records one scoring contribution, in the order applied.
type Reason struct {
	Signal string
	Points int
}

// Candidate is one scored pairing of an anchor and a pool record.
// Candidates are ephemeral: computed, consumed by the reconciler, and
// discarded within a single pass. Scores are comparable only among
// candidates of the same anchor.
type Candidate struct {
	AnchorID string
	Record   *feeds.Record
	Score    int
	Reasons  []Reason
}

// Scorer ranks a fixed candidate pool against anchors. The reverse id index
// (extracted ids to pool positions) is built once at construction; every
// other signal is recomputed per anchor, which is acceptable at feed sizes
// bounded in the low thousands.
type Scorer struct {
	cfg     Config
	pool    []*feeds.Record
	tokens  []map[string]struct{}
	idIndex map[string][]int
}

// NewScorer builds a scorer over a candidate pool.
func NewScorer(cfg Config, pool []*feeds.Record) *Scorer {
	s := &Scorer{
		cfg:     cfg,
		pool:    pool,
		tokens:  make([]map[string]struct{}, len(pool)),
		idIndex: make(map[string][]int),
	}
	for i, rec := range pool {
		s.tokens[i] = Tokenize(rec.Title)
		for _, id := range ExtractIDs(rec.Title + " " + rec.Body) {
			s.idIndex[id] = append(s.idIndex[id], i)
		}
	}
	return s
}

// Rank scores every pool record against the anchor and returns the accepted
// candidates ordered best-first. Ordering is deterministic: descending
// score, then ascending candidate natural id, so re-ordered input batches
// reproduce identical rankings.
func (s *Scorer) Rank(anchor *feeds.Record) []Candidate {
	exact := make(map[int]bool)
	if anchor.NaturalID != "" {
		for _, i := range s.idIndex[anchor.NaturalID] {
			exact[i] = true
		}
	}

	anchorTokens := Tokenize(anchor.Title)
	anchorServices := lowerSet(anchor.Services)

	candidates := make([]Candidate, 0)
	for i, rec := range s.pool {
		score := 0
		var reasons []Reason

		sim := jaccardSets(anchorTokens, s.tokens[i])
		if pts := int(math.Round(sim * float64(s.cfg.TitleWeight))); pts > 0 {
			score += pts
			reasons = append(reasons, Reason{Signal: "title-similarity", Points: pts})
		}

		if intersectsLower(anchorServices, rec.Services) {
			score += s.cfg.ServiceBonus
			reasons = append(reasons, Reason{Signal: "service-overlap", Points: s.cfg.ServiceBonus})
		}

		if rec.HasTimestamp() {
			score += s.cfg.RecencyBonus
			reasons = append(reasons, Reason{Signal: "has-timestamp", Points: s.cfg.RecencyBonus})
		}

		if exact[i] {
			if score < s.cfg.ExactIDScore {
				reasons = append([]Reason{{Signal: "exact-id", Points: s.cfg.ExactIDScore - score}}, reasons...)
				score = s.cfg.ExactIDScore
			} else {
				reasons = append([]Reason{{Signal: "exact-id", Points: 0}}, reasons...)
			}
		} else if score < s.cfg.MinScore {
			continue
		}

		candidates = append(candidates, Candidate{
			AnchorID: anchor.NaturalID,
			Record:   rec,
			Score:    score,
			Reasons:  reasons,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].Record.NaturalID < candidates[b].Record.NaturalID
	})
	return candidates
}

// Best returns the highest-ranked candidate for the anchor, or nil when no
// candidate clears acceptance.
func (s *Scorer) Best(anchor *feeds.Record) *Candidate {
	ranked := s.Rank(anchor)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

func intersectsLower(set map[string]struct{}, items []string) bool {
	if len(set) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := set[strings.ToLower(item)]; ok {
			return true
		}
	}
	return false
}
