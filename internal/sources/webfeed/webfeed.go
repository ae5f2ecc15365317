// Package webfeed fetches the public release-communications RSS feed as the
// ad-hoc third source. Items become raw records keyed the way RSS names
// things; the normalizer's alias tables do the rest.
package webfeed

import (
	"context"
	"encoding/xml"

	"github.com/changeline/changeline/internal/transport"
	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/logging"
)

// DefaultURL is the public release-communications RSS endpoint.
const DefaultURL = "https://www.microsoft.com/releasecommunications/api/v2/m365/rss"

// Source fetches the RSS web feed.
type Source struct {
	client *transport.Client
	url    string
}

// New creates a web feed source.
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
func (s *Source) Name() string { return "webfeed" }

// Kind implements sources.Source.
func (s *Source) Kind() feeds.Kind { return feeds.KindWeb }

type rss struct {
	Channel struct {
		Items []item `xml:"item"`
	} `xml:"channel"`
}

type item struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context) ([]feeds.RawRecord, error) {
	body, err := s.client.Get(ctx, s.url, "application/rss+xml")
	if err != nil {
		return nil, err
	}

	var doc rss
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapParse("xml", s.Name(), err)
	}

	records := make([]feeds.RawRecord, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		raw := feeds.RawRecord{
			"title":       it.Title,
			"link":        it.Link,
			"description": it.Description,
			"pubDate":     it.PubDate,
			"guid":        it.GUID,
		}
		if len(it.Categories) > 0 {
			cats := make([]any, len(it.Categories))
			for i, c := range it.Categories {
				cats[i] = c
			}
			raw["categories"] = cats
		}
		records = append(records, raw)
	}

	logging.FromContext(ctx).Debug().
		Str("source", s.Name()).
		Int("records", len(records)).
		Msg("Fetched web feed")
	return records, nil
}
