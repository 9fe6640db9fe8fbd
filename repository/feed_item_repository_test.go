package repository

import (
	"context"
	"testing"
	"time"

	"sattbot/domain/entities"
	"sattbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsItem(title, link string) *entities.FeedItem {
	return &entities.FeedItem{
		Title:       title,
		Link:        link,
		Description: "description of " + title,
		PublishedAt: "Mon, 02 Jun 2025 10:00:00 GMT",
	}
}

func TestFeedItemRepository_StoreItems(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewFeedItemRepository(testDB.DB)
	ctx := context.Background()

	t.Run("new items counted", func(t *testing.T) {
		stored, err := repo.StoreItems(ctx, 1000, []*entities.FeedItem{
			newsItem("one", "https://example.com/1"),
			newsItem("two", "https://example.com/2"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
	})

	t.Run("duplicate links skipped silently", func(t *testing.T) {
		stored, err := repo.StoreItems(ctx, 1000, []*entities.FeedItem{
			newsItem("one again", "https://example.com/1"),
			newsItem("three", "https://example.com/3"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stored)
	})

	t.Run("same link in another guild is a new item", func(t *testing.T) {
		stored, err := repo.StoreItems(ctx, 2000, []*entities.FeedItem{
			newsItem("one", "https://example.com/1"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stored)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		stored, err := repo.StoreItems(ctx, 1000, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, stored)
	})
}

func TestFeedItemRepository_ListRecent(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewFeedItemRepository(testDB.DB)
	ctx := context.Background()

	// Store the batch in one transaction, as the pipeline does, so the
	// rows share fetched_at and only the id tiebreak orders them
	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	_, err = NewFeedItemRepositoryWithTx(tx).StoreItems(ctx, 1000, []*entities.FeedItem{
		newsItem("newest", "https://example.com/1"),
		newsItem("older", "https://example.com/2"),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, err = repo.StoreItems(ctx, 2000, []*entities.FeedItem{
		newsItem("other guild", "https://example.com/other"),
	})
	require.NoError(t, err)

	t.Run("batch keeps feed order, newest entry first", func(t *testing.T) {
		items, err := repo.ListRecent(ctx, 1000, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "newest", items[0].Title)
		assert.Equal(t, "older", items[1].Title)
		for _, item := range items {
			assert.Equal(t, int64(1000), item.GuildID)
			assert.False(t, item.FetchedAt.IsZero())
		}
	})

	t.Run("future cutoff yields nothing", func(t *testing.T) {
		items, err := repo.ListRecent(ctx, 1000, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestFeedItemRepository_DeleteOlderThan(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewFeedItemRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.StoreItems(ctx, 1000, []*entities.FeedItem{
		newsItem("old", "https://example.com/old"),
		newsItem("fresh", "https://example.com/fresh"),
	})
	require.NoError(t, err)

	// Age one row artificially
	_, err = testDB.DB.Exec(ctx,
		`UPDATE feed_items SET fetched_at = NOW() - INTERVAL '31 days' WHERE link = $1`,
		"https://example.com/old")
	require.NoError(t, err)

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	items, err := repo.ListRecent(ctx, 1000, time.Now().Add(-60*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].Title)
}

func TestFeedItemRepository_DeleteGuild(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewFeedItemRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.StoreItems(ctx, 1000, []*entities.FeedItem{newsItem("a", "https://example.com/a")})
	require.NoError(t, err)
	_, err = repo.StoreItems(ctx, 2000, []*entities.FeedItem{newsItem("b", "https://example.com/b")})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteGuild(ctx, 1000))

	items, err := repo.ListRecent(ctx, 1000, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.ListRecent(ctx, 2000, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
