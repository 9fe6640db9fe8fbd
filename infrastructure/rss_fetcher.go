package infrastructure

import (
	"context"
	"fmt"

	"sattbot/application"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

// RSSFetcher implements the FeedFetcher interface using gofeed
type RSSFetcher struct {
	parser *gofeed.Parser
}

// NewRSSFetcher creates a new RSS fetcher
func NewRSSFetcher() *RSSFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "sattbot/1.0"
	return &RSSFetcher{parser: parser}
}

// Fetch pulls the feed at url and converts its entries. A failed or
// empty fetch returns an empty slice; downstream treats that as a
// no-op cycle.
func (f *RSSFetcher) Fetch(ctx context.Context, url string) ([]application.FetchedItem, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"url":   url,
			"error": err,
		}).Warn("Feed fetch failed")
		return []application.FetchedItem{}, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}

	items := make([]application.FetchedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		items = append(items, application.FetchedItem{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			Published:   entry.Published,
		})
	}

	log.WithFields(log.Fields{
		"url":   url,
		"items": len(items),
	}).Debug("Fetched feed")
	return items, nil
}
