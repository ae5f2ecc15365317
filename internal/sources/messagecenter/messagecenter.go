// Package messagecenter fetches admin service-announcement messages from
// the Graph API. The feed requires a bearer token and pages via
// @odata.nextLink until exhausted.
package messagecenter

import (
	"context"
	"encoding/json"

	"github.com/changeline/changeline/internal/transport"
	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/logging"
)

// DefaultURL is the Graph service-announcement messages endpoint.
const DefaultURL = "https://graph.microsoft.com/v1.0/admin/serviceAnnouncement/messages"

// maxPages bounds paging against a broken nextLink loop.
const maxPages = 50

// Source fetches the admin message feed.
type Source struct {
	client *transport.Client
	url    string
}

// New creates a message-center source. The client must carry bearer
// credentials; the feed rejects anonymous requests.
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
func (s *Source) Name() string { return "messagecenter" }

// Kind implements sources.Source.
func (s *Source) Kind() feeds.Kind { return feeds.KindMessageCenter }

// page is one Graph response page.
type page struct {
	Value    []feeds.RawRecord `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// Fetch implements sources.Source, following nextLink until the feed ends.
func (s *Source) Fetch(ctx context.Context) ([]feeds.RawRecord, error) {
	log := logging.FromContext(ctx)

	var records []feeds.RawRecord
	url := s.url
	for pageNum := 0; url != "" && pageNum < maxPages; pageNum++ {
		body, err := s.client.Get(ctx, url, "application/json")
		if err != nil {
			return nil, err
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, errors.WrapParse("json", s.Name(), err)
		}

		records = append(records, p.Value...)
		url = p.NextLink
	}

	log.Debug().
		Str("source", s.Name()).
		Int("records", len(records)).
		Msg("Fetched message center feed")
	return records, nil
}
