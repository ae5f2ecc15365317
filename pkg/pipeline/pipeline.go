// Package pipeline wires the reconciliation stages together: normalize raw
// per-source payloads, apply window and jurisdiction filters, match and
// reconcile, then optionally enrich narratives. All inputs are
// already-fetched in-memory collections; apart from the optional enrichment
// stage the run is synchronous and side-effect-free.
package pipeline

import (
	"context"
	"strings"

	"github.com/changeline/changeline/pkg/enrich"
	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/logging"
	"github.com/changeline/changeline/pkg/match"
	"github.com/changeline/changeline/pkg/reconcile"
	"github.com/changeline/changeline/pkg/window"
)

// Inputs are the raw per-source payload collections for one run. Any of
// them may be empty; a source with zero usable records degrades gracefully.
type Inputs struct {
	Roadmap       []feeds.RawRecord
	MessageCenter []feeds.RawRecord
	Web           []feeds.RawRecord
}

// Options tune one pipeline run.
type Options struct {
	// Scoring holds the match scoring constants; the zero value means
	// match.DefaultConfig.
	Scoring match.Config

	// Window and Clouds gate which records enter reconciliation.
	Window window.Window
	Clouds []string

	// Products keeps only entities whose product or title mentions one of
	// the given names (case-insensitive substring). Empty keeps all.
	Products []string

	// OrderFirst moves the named entity ids to the front of the output in
	// the given order.
	OrderFirst []string

	// Enricher, when set, runs per-entity narrative enrichment after
	// reconciliation.
	Enricher *enrich.Enricher

	// ReconcilerOptions are passed through to reconcile.New.
	ReconcilerOptions []reconcile.Option
}

// Outcome is the result of one pipeline run plus ingestion accounting.
type Outcome struct {
	Result *reconcile.Result

	// Dropped counts raw records rejected by the normalizer per source.
	Dropped map[feeds.Kind]int

	// Filtered counts normalized records excluded by the window or
	// jurisdiction filters per source.
	Filtered map[feeds.Kind]int
}

// Run executes one full reconciliation pass.
func Run(ctx context.Context, in Inputs, opts Options) (*Outcome, error) {
	log := logging.FromContext(ctx)

	outcome := &Outcome{
		Dropped:  make(map[feeds.Kind]int),
		Filtered: make(map[feeds.Kind]int),
	}

	anchors := ingest(feeds.KindRoadmap, in.Roadmap, opts, outcome)
	candidates := ingest(feeds.KindMessageCenter, in.MessageCenter, opts, outcome)
	web := ingest(feeds.KindWeb, in.Web, opts, outcome)

	log.Debug().
		Int("anchors", len(anchors)).
		Int("candidates", len(candidates)).
		Int("web", len(web)).
		Msg("Ingested feed records")

	ropts := opts.ReconcilerOptions
	if opts.Scoring != (match.Config{}) {
		ropts = append([]reconcile.Option{reconcile.WithScoring(opts.Scoring)}, ropts...)
	}
	reconciler, err := reconcile.New(ropts...)
	if err != nil {
		return nil, err
	}

	result, err := reconciler.Reconcile(anchors, candidates, web)
	if err != nil {
		return nil, err
	}

	result.Entities = filterProducts(result.Entities, opts.Products)
	result.Entities = orderFirst(result.Entities, opts.OrderFirst)

	if opts.Enricher != nil {
		result.Entities = opts.Enricher.EnrichBatch(ctx, result.Entities)
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("entities", len(result.Entities)).
		Int("matched", result.Stats.Matched).
		Msg("Reconciliation complete")

	outcome.Result = result
	return outcome, nil
}

// ingest normalizes and filters one source's raw payloads. Unusable records
// are dropped silently and counted; window and jurisdiction exclusions are
// counted separately.
func ingest(kind feeds.Kind, raws []feeds.RawRecord, opts Options, outcome *Outcome) []*feeds.Record {
	records := make([]*feeds.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := feeds.Normalize(kind, raw)
		if err != nil {
			outcome.Dropped[kind]++
			continue
		}
		if !window.Include(rec, opts.Window, opts.Clouds) {
			outcome.Filtered[kind]++
			continue
		}
		records = append(records, rec)
	}
	return records
}

// filterProducts keeps entities mentioning one of the requested product
// names in their product or title.
func filterProducts(entities []*reconcile.Entity, products []string) []*reconcile.Entity {
	if len(products) == 0 {
		return entities
	}
	wanted := make([]string, 0, len(products))
	for _, p := range products {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			wanted = append(wanted, p)
		}
	}
	if len(wanted) == 0 {
		return entities
	}

	out := make([]*reconcile.Entity, 0, len(entities))
	for _, entity := range entities {
		hay := strings.ToLower(entity.Product + " " + entity.Title)
		for _, p := range wanted {
			if strings.Contains(hay, p) {
				out = append(out, entity)
				break
			}
		}
	}
	return out
}

// orderFirst moves the named ids to the front, in the given order, keeping
// the relative order of everything else.
func orderFirst(entities []*reconcile.Entity, ids []string) []*reconcile.Entity {
	if len(ids) == 0 {
		return entities
	}
	index := make(map[string]*reconcile.Entity, len(entities))
	for _, entity := range entities {
		index[entity.ID] = entity
	}

	forced := make(map[string]bool, len(ids))
	out := make([]*reconcile.Entity, 0, len(entities))
	for _, id := range ids {
		if entity, ok := index[id]; ok && !forced[id] {
			out = append(out, entity)
			forced[id] = true
		}
	}
	for _, entity := range entities {
		if !forced[entity.ID] {
			out = append(out, entity)
		}
	}
	return out
}
