package reconcile

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/changeline/changeline/pkg/narrative"
)

// Link is one labeled outbound reference on an entity. Label values are
// unique per entity but order is meaningful for display.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SourceRef points back at the record one source contributed.
type SourceRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// WebRef is an attached ad-hoc web hit.
type WebRef struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Sources records which feed records an entity was reconciled from.
type Sources struct {
	Roadmap       *SourceRef `json:"roadmap,omitempty"`
	MessageCenter *SourceRef `json:"messageCenter,omitempty"`
	Web           []WebRef   `json:"web,omitempty"`
}

// Entity is the reconciled, deduplicated representation of one real-world
// product change. Entities are created once per pipeline run and never
// mutated afterward; downstream consumers re-run the pipeline rather than
// patch records.
type Entity struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Product  string   `json:"product,omitempty"`
	Services []string `json:"services,omitempty"`
	Status   string   `json:"status,omitempty"`
	Category string   `json:"category,omitempty"`

	IsMajor     *bool      `json:"isMajor,omitempty"`
	Severity    string     `json:"severity,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`

	Summary string `json:"summary,omitempty"`

	// Confidence expresses reconciliation certainty (0-100), not business
	// importance. 100 means identity was never in question.
	Confidence int `json:"confidence"`

	Links   []Link  `json:"links,omitempty"`
	Sources Sources `json:"sources"`

	// Narrative is filled by optional per-entity enrichment.
	Narrative *narrative.Sections `json:"narrative,omitempty"`
}

// titleHashID derives the last-resort entity id from a normalized title.
func titleHashID(title string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(title), " "))))
	return fmt.Sprintf("T:%016x", h.Sum64())
}

// messageCenterID derives the entity id for a message-center-sourced entity.
func messageCenterID(id string) string {
	return "MC:" + id
}
