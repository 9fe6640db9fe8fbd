package entities

import "time"

// FeedItem is one ingested content item. Items are unique per
// (guild_id, link) and append-only except for retention pruning.
type FeedItem struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	Title       string    `db:"title"`
	Link        string    `db:"link"`
	Description string    `db:"description"`
	PublishedAt string    `db:"published_at"` // raw feed pubDate, informational only
	FetchedAt   time.Time `db:"fetched_at"`
}
