package repository

import (
	"context"
	"fmt"
	"time"

	"sattbot/database"
	"sattbot/domain/entities"
)

// FeedItemRepository implements the FeedItemRepository interface
type FeedItemRepository struct {
	q Queryable
}

// NewFeedItemRepository creates a new feed item repository
func NewFeedItemRepository(db *database.DB) *FeedItemRepository {
	return &FeedItemRepository{q: db.Pool}
}

// NewFeedItemRepositoryWithTx creates a new feed item repository with a transaction
func NewFeedItemRepositoryWithTx(tx Queryable) *FeedItemRepository {
	return &FeedItemRepository{q: tx}
}

// StoreItems inserts items whose (guild_id, link) key is new and
// silently skips duplicates. Returns the number of new rows.
func (r *FeedItemRepository) StoreItems(ctx context.Context, guildID int64, items []*entities.FeedItem) (int, error) {
	query := `
		INSERT INTO feed_items (guild_id, title, link, description, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, link) DO NOTHING
	`

	stored := 0
	for _, item := range items {
		result, err := r.q.Exec(ctx, query, guildID, item.Title, item.Link, item.Description, item.PublishedAt)
		if err != nil {
			return stored, fmt.Errorf("failed to store feed item %s for guild %d: %w", item.Link, guildID, err)
		}
		stored += int(result.RowsAffected())
	}
	return stored, nil
}

// ListRecent returns items fetched at or after the given time, newest
// first. Rows stored in one transaction share fetched_at (now() is the
// transaction timestamp), so the id tiebreak keeps insertion order,
// which is feed order with the newest entry first.
func (r *FeedItemRepository) ListRecent(ctx context.Context, guildID int64, since time.Time) ([]*entities.FeedItem, error) {
	query := `
		SELECT id, guild_id, title, link, description, published_at, fetched_at
		FROM feed_items
		WHERE guild_id = $1 AND fetched_at >= $2
		ORDER BY fetched_at DESC, id ASC
	`

	rows, err := r.q.Query(ctx, query, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent feed items for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var items []*entities.FeedItem
	for rows.Next() {
		var item entities.FeedItem
		err := rows.Scan(
			&item.ID,
			&item.GuildID,
			&item.Title,
			&item.Link,
			&item.Description,
			&item.PublishedAt,
			&item.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// DeleteOlderThan removes items fetched before the cutoff across all
// guilds. Returns the number of rows deleted.
func (r *FeedItemRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM feed_items WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete feed items older than %s: %w", cutoff, err)
	}
	return result.RowsAffected(), nil
}

// DeleteGuild purges all feed items for a guild
func (r *FeedItemRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM feed_items WHERE guild_id = $1`, guildID); err != nil {
		return fmt.Errorf("failed to delete feed items for guild %d: %w", guildID, err)
	}
	return nil
}
