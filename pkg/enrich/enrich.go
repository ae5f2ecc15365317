// Package enrich adds fetched narrative detail to reconciled entities. It
// is the only concurrent stage of the pipeline: per-entity page fetches fan
// out across a small fixed-size worker pool, with each worker writing only
// its own result slot. A failed fetch degrades that single entity to its
// pre-fetch field values and never aborts the batch.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/changeline/changeline/pkg/logging"
	"github.com/changeline/changeline/pkg/narrative"
	"github.com/changeline/changeline/pkg/reconcile"
)

// DefaultWorkers is the default worker pool size for enrichment batches.
const DefaultWorkers = 6

// Fetcher retrieves the page body behind one announcement. Timeouts,
// retries, and backoff are this collaborator's responsibility, not the
// enricher's.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageURL resolves the page to fetch for an entity. Implementations return
// "" when an entity has nothing fetchable.
type PageURL func(*reconcile.Entity) string

// MessageCenterMirrorURL builds page URLs against the public message-center
// mirror for entities that carry a message-center reference.
func MessageCenterMirrorURL(base string) PageURL {
	return func(e *reconcile.Entity) string {
		if e.Sources.MessageCenter == nil || e.Sources.MessageCenter.ID == "" {
			return ""
		}
		return base + e.Sources.MessageCenter.ID
	}
}

// Enricher fetches and segments narrative bodies for a batch of entities.
type Enricher struct {
	fetcher Fetcher
	pageURL PageURL
	pool    Pool
}

// NewEnricher creates an enricher. The pool is the explicit concurrency
// resource for each batch call.
func NewEnricher(fetcher Fetcher, pageURL PageURL, pool Pool) *Enricher {
	if pool.Size < 1 {
		pool.Size = DefaultWorkers
	}
	return &Enricher{fetcher: fetcher, pageURL: pageURL, pool: pool}
}

// EnrichBatch returns a new entity slice in which each slot holds either an
// enriched copy or the original entity. Input entities are never mutated;
// no entity is touched by two workers.
func (e *Enricher) EnrichBatch(ctx context.Context, entities []*reconcile.Entity) []*reconcile.Entity {
	results := make([]*reconcile.Entity, len(entities))
	log := logging.FromContext(ctx)

	e.pool.Each(len(entities), func(i int) {
		results[i] = e.enrichOne(ctx, log, entities[i])
	})

	return results
}

// enrichOne fetches and segments one entity's page, returning the original
// entity untouched on any failure.
func (e *Enricher) enrichOne(ctx context.Context, log *zerolog.Logger, entity *reconcile.Entity) *reconcile.Entity {
	url := e.pageURL(entity)
	if url == "" {
		return entity
	}

	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("entity_id", entity.ID).Str("url", url).Msg("Enrichment fetch failed, keeping pre-fetch values")
		return entity
	}
	if body == "" {
		return entity
	}

	sections := narrative.Segment(body)
	if sections.Empty() {
		return entity
	}

	enriched := *entity
	enriched.Narrative = &sections
	if enriched.Summary == "" {
		enriched.Summary = sections.Summary
	}
	return &enriched
}
