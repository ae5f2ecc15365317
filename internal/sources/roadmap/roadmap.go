// Package roadmap fetches the public roadmap catalog feed. The feed is an
// unauthenticated JSON document listing every catalog item.
package roadmap

import (
	"context"
	"encoding/json"

	"github.com/changeline/changeline/internal/transport"
	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/logging"
)

// DefaultURL is the public roadmap JSON endpoint.
const DefaultURL = "https://www.microsoft.com/releasecommunications/api/v1/m365"

// Source fetches the public roadmap catalog.
type Source struct {
	client *transport.Client
	url    string
}

// New creates a roadmap source. A nil client gets transport defaults.
func New(client *transport.Client, url string) *Source {
	if client == nil {
		client = transport.New()
	}
	if url == "" {
		url = DefaultURL
	}
	return &Source{client: client, url: url}
}

// Name implements sources.Source.
func (s *Source) Name() string { return "roadmap" }

// Kind implements sources.Source.
func (s *Source) Kind() feeds.Kind { return feeds.KindRoadmap }

// Fetch implements sources.Source. The payload is either a bare JSON array
// of items or an object wrapping one.
func (s *Source) Fetch(ctx context.Context) ([]feeds.RawRecord, error) {
	body, err := s.client.Get(ctx, s.url, "application/json")
	if err != nil {
		return nil, err
	}

	records, err := decodeItems(body)
	if err != nil {
		return nil, errors.WrapParse("json", s.Name(), err)
	}

	logging.FromContext(ctx).Debug().
		Str("source", s.Name()).
		Int("records", len(records)).
		Msg("Fetched roadmap catalog")
	return records, nil
}

// decodeItems accepts the two payload shapes the feed has shipped: a bare
// array, or an object with the items under a well-known key.
func decodeItems(body []byte) ([]feeds.RawRecord, error) {
	var direct []feeds.RawRecord
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range []string{"features", "items", "value"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []feeds.RawRecord
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, errors.New("no item array in roadmap payload")
}
