// Package reconcile turns ranked match candidates into the final enriched
// entity set. It selects the best candidate per anchor, merges fields under
// a source-priority policy, emits every unconsumed record as an orphan
// entity, and guarantees run-unique entity ids. The whole pass is pure: it
// produces new values and never mutates its inputs.
package reconcile

import (
	"fmt"
	"strconv"

	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/match"
	"github.com/google/uuid"
)

// DefaultMessageCenterLinkBase is the admin portal deep-link prefix for
// message-center items.
const DefaultMessageCenterLinkBase = "https://admin.cloud.microsoft.com/#/MessageCenter/:/messages/"

// Result is the output of one reconciliation run.
type Result struct {
	// RunID identifies this pipeline run in logs and exports.
	RunID string

	// Entities is the ordered entity set: anchors in input order, then
	// orphaned candidates in input order.
	Entities []*Entity

	Stats Stats
}

// Stats summarizes what one run did.
type Stats struct {
	Anchors          int
	Candidates       int
	Matched          int
	OrphanAnchors    int
	OrphanCandidates int
	WebHitsAttached  int
	IDCollisions     int
}

// Reconciler reconciles anchor records against a candidate pool.
type Reconciler interface {
	// Reconcile matches candidates to anchors, merges matched pairs, and
	// emits orphans for everything unconsumed. Web records, when present,
	// are attached to already-built entities and never create entities of
	// their own. Empty inputs degrade gracefully; Reconcile never fails on
	// them.
	Reconcile(anchors, candidates, web []*feeds.Record) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	scoring  match.Config
	linkBase string
	runID    func() string
}

// Option configures a Reconciler.
type Option func(*reconciler) error

// New creates a Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		scoring:  match.DefaultConfig(),
		linkBase: DefaultMessageCenterLinkBase,
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithScoring sets the scoring constants used for candidate ranking.
func WithScoring(cfg match.Config) Option {
	return func(r *reconciler) error {
		if cfg.MinScore < 0 || cfg.ExactIDScore <= 0 {
			return fmt.Errorf("invalid scoring config: %+v", cfg)
		}
		r.scoring = cfg
		return nil
	}
}

// WithMessageCenterLinkBase overrides the admin portal deep-link prefix.
func WithMessageCenterLinkBase(base string) Option {
	return func(r *reconciler) error {
		if base == "" {
			return fmt.Errorf("link base cannot be empty")
		}
		r.linkBase = base
		return nil
	}
}

// WithRunID fixes the run id generator, mainly for tests.
func WithRunID(gen func() string) Option {
	return func(r *reconciler) error {
		if gen == nil {
			return fmt.Errorf("run id generator cannot be nil")
		}
		r.runID = gen
		return nil
	}
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(anchors, candidates, web []*feeds.Record) (*Result, error) {
	result := &Result{
		RunID: r.runID(),
		Stats: Stats{Anchors: len(anchors), Candidates: len(candidates)},
	}

	scorer := match.NewScorer(r.scoring, candidates)
	ids := newIDAllocator()
	consumed := make(map[*feeds.Record]bool, len(candidates))

	for _, anchor := range anchors {
		best := scorer.Best(anchor)

		entity := r.mergeAnchor(anchor, best)
		entity.ID = ids.allocate(r.deriveID(anchor, best), &result.Stats)
		result.Entities = append(result.Entities, entity)

		if best != nil {
			consumed[best.Record] = true
			result.Stats.Matched++
		} else {
			result.Stats.OrphanAnchors++
		}
	}

	// Every candidate not consumed by a winning match becomes its own
	// orphan entity; no record from either source is silently dropped.
	for _, candidate := range candidates {
		if consumed[candidate] {
			continue
		}
		entity := r.orphanCandidate(candidate)
		entity.ID = ids.allocate(entity.ID, &result.Stats)
		result.Entities = append(result.Entities, entity)
		result.Stats.OrphanCandidates++
	}

	r.attachWebHits(result, web)

	return result, nil
}

// deriveID picks the entity id: the anchor's natural id, else the matched
// message-center id, else a normalized-title hash.
func (r *reconciler) deriveID(anchor *feeds.Record, best *match.Candidate) string {
	if anchor.NaturalID != "" {
		return anchor.NaturalID
	}
	if best != nil && best.Record.NaturalID != "" {
		return messageCenterID(best.Record.NaturalID)
	}
	return titleHashID(anchor.Title)
}

// mergeAnchor builds the entity for one anchor, merging in the winning
// candidate when there is one. The roadmap anchor is authoritative for
// catalog metadata; the message-center candidate is authoritative for
// operational metadata. Empty anchor fields fall back to the candidate.
func (r *reconciler) mergeAnchor(anchor *feeds.Record, best *match.Candidate) *Entity {
	entity := &Entity{
		Title:    anchor.Title,
		Product:  anchor.Product,
		Services: anchor.Services,
		Status:   anchor.Status,
		Category: anchor.Category,
		Summary:  anchor.Summary,
	}

	if anchor.URL != "" {
		entity.Links = append(entity.Links, Link{Label: "Roadmap", URL: anchor.URL})
	}
	entity.Sources.Roadmap = &SourceRef{ID: anchor.NaturalID, URL: anchor.URL}

	if len(entity.Services) == 0 && anchor.Product != "" {
		entity.Services = []string{anchor.Product}
	}

	if best == nil {
		entity.Confidence = 0
		return entity
	}

	m := best.Record
	entity.Confidence = best.Score
	entity.Severity = m.Severity
	entity.IsMajor = m.IsMajor
	entity.LastUpdated = m.Timestamps.Modified

	if entity.Title == "" {
		entity.Title = m.Title
	}
	if entity.Product == "" {
		entity.Product = m.Product
	}
	if entity.Category == "" {
		entity.Category = m.Category
	}
	if entity.Summary == "" {
		entity.Summary = m.Summary
	}
	if len(entity.Services) == 0 {
		entity.Services = m.Services
	}

	url := r.linkBase + m.NaturalID
	entity.Links = append(entity.Links, Link{Label: "Message Center", URL: url})
	entity.Sources.MessageCenter = &SourceRef{ID: m.NaturalID, URL: url}

	return entity
}

// orphanCandidate builds a source-only entity for an unconsumed candidate.
// Identity is certain because there was nothing to reconcile against, so
// confidence is 100.
func (r *reconciler) orphanCandidate(m *feeds.Record) *Entity {
	entity := &Entity{
		Title:       m.Title,
		Services:    m.Services,
		Category:    m.Category,
		Summary:     m.Summary,
		Severity:    m.Severity,
		IsMajor:     m.IsMajor,
		LastUpdated: m.Timestamps.Modified,
		Confidence:  100,
	}
	if len(m.Services) > 0 {
		entity.Product = m.Services[0]
	}

	if m.NaturalID != "" {
		url := r.linkBase + m.NaturalID
		entity.ID = messageCenterID(m.NaturalID)
		entity.Links = append(entity.Links, Link{Label: "Message Center", URL: url})
		entity.Sources.MessageCenter = &SourceRef{ID: m.NaturalID, URL: url}
	} else {
		entity.ID = titleHashID(m.Title)
		entity.Sources.MessageCenter = &SourceRef{}
	}

	return entity
}

// attachWebHits attaches each web record to the first already-built entity
// whose title shares at least one normalized token with it. Attachment
// never creates entities and never affects confidence.
func (r *reconciler) attachWebHits(result *Result, web []*feeds.Record) {
	if len(web) == 0 {
		return
	}

	entityTokens := make([]map[string]struct{}, len(result.Entities))
	for i, entity := range result.Entities {
		entityTokens[i] = match.Tokenize(entity.Title)
	}

	for _, hit := range web {
		hitTokens := match.Tokenize(hit.Title)
		for i, entity := range result.Entities {
			if !match.Overlaps(hitTokens, entityTokens[i]) {
				continue
			}
			entity.Sources.Web = append(entity.Sources.Web, WebRef{
				Title:   hit.Title,
				URL:     hit.URL,
				Snippet: hit.Summary,
			})
			entity.Links = appendUniqueLabel(entity.Links, Link{Label: "Web", URL: hit.URL})
			result.Stats.WebHitsAttached++
			break
		}
	}
}

// appendUniqueLabel keeps link labels unique per entity while preserving
// display order; a later link under an existing label is dropped.
func appendUniqueLabel(links []Link, link Link) []Link {
	for _, existing := range links {
		if existing.Label == link.Label {
			return links
		}
	}
	return append(links, link)
}

// idAllocator guarantees run-unique entity ids by suffixing later
// collisions with an incrementing counter.
type idAllocator struct {
	used map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: make(map[string]int)}
}

func (a *idAllocator) allocate(id string, stats *Stats) string {
	count := a.used[id]
	a.used[id] = count + 1
	if count == 0 {
		return id
	}
	stats.IDCollisions++
	return id + "-" + strconv.Itoa(count+1)
}
