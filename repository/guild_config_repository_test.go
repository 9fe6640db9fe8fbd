package repository

import (
	"context"
	"testing"

	"sattbot/domain/entities"
	"sattbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfigRepository_GetOrCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates row with defaults on first contact", func(t *testing.T) {
		config, err := repo.GetOrCreate(ctx, 1000)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, int64(1000), config.GuildID)
		assert.Equal(t, entities.DefaultSpamMaxMsgs, config.SpamMaxMsgs)
		assert.Equal(t, entities.DefaultSpamMuteSecs, config.SpamMuteSecs)
		assert.Equal(t, entities.DefaultScanLimit, config.ScanLimit)
		assert.Equal(t, entities.DefaultNukeDays, config.NukeDays)
		assert.Equal(t, entities.DefaultAIModel, config.AIModel)
		assert.False(t, config.SetupComplete)
		assert.Nil(t, config.NewsChannelID)
		assert.Nil(t, config.QOTDChannelID)
		assert.False(t, config.CreatedAt.IsZero())
	})

	t.Run("returns existing row without resetting it", func(t *testing.T) {
		config, err := repo.GetOrCreate(ctx, 2000)
		require.NoError(t, err)

		config.SpamMaxMsgs = 5
		require.NoError(t, repo.Update(ctx, config))

		again, err := repo.GetOrCreate(ctx, 2000)
		require.NoError(t, err)
		assert.Equal(t, 5, again.SpamMaxMsgs)
	})
}

func TestGuildConfigRepository_Get(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown guild returns nil", func(t *testing.T) {
		config, err := repo.Get(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("known guild returned", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, 1000)
		require.NoError(t, err)

		config, err := repo.Get(ctx, 1000)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, int64(1000), config.GuildID)
	})
}

func TestGuildConfigRepository_Update(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists all mutable fields", func(t *testing.T) {
		config, err := repo.GetOrCreate(ctx, 1000)
		require.NoError(t, err)

		newsChannel := int64(111)
		qotdChannel := int64(222)
		config.SpamMaxMsgs = 20
		config.SpamMuteSecs = 300
		config.ScanLimit = 250
		config.NukeDays = 14
		config.AIModel = "openai/gpt-4o-mini"
		config.SetupComplete = true
		config.SetNewsChannel(&newsChannel)
		config.SetQOTDChannel(&qotdChannel)

		require.NoError(t, repo.Update(ctx, config))

		loaded, err := repo.Get(ctx, 1000)
		require.NoError(t, err)
		assert.Equal(t, 20, loaded.SpamMaxMsgs)
		assert.Equal(t, 300, loaded.SpamMuteSecs)
		assert.Equal(t, 250, loaded.ScanLimit)
		assert.Equal(t, 14, loaded.NukeDays)
		assert.Equal(t, "openai/gpt-4o-mini", loaded.AIModel)
		assert.True(t, loaded.SetupComplete)
		require.NotNil(t, loaded.NewsChannelID)
		assert.Equal(t, int64(111), *loaded.NewsChannelID)
		require.NotNil(t, loaded.QOTDChannelID)
		assert.Equal(t, int64(222), *loaded.QOTDChannelID)
	})

	t.Run("unknown guild errors", func(t *testing.T) {
		err := repo.Update(ctx, &entities.GuildConfig{GuildID: 424242})
		assert.Error(t, err)
	})
}

func TestGuildConfigRepository_ListTargets(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	// Guild 1: news only. Guild 2: both. Guild 3: neither.
	newsA, newsB, qotdB := int64(11), int64(21), int64(22)

	configA, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	configA.SetNewsChannel(&newsA)
	require.NoError(t, repo.Update(ctx, configA))

	configB, err := repo.GetOrCreate(ctx, 2)
	require.NoError(t, err)
	configB.SetNewsChannel(&newsB)
	configB.SetQOTDChannel(&qotdB)
	require.NoError(t, repo.Update(ctx, configB))

	_, err = repo.GetOrCreate(ctx, 3)
	require.NoError(t, err)

	newsTargets, err := repo.ListNewsTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.FeedTarget{
		{GuildID: 1, ChannelID: 11},
		{GuildID: 2, ChannelID: 21},
	}, newsTargets)

	qotdTargets, err := repo.ListQOTDTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.FeedTarget{
		{GuildID: 2, ChannelID: 22},
	}, qotdTargets)
}

func TestGuildConfigRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 1000)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 1000))

	config, err := repo.Get(ctx, 1000)
	require.NoError(t, err)
	assert.Nil(t, config)

	// Deleting an absent guild is a no-op
	require.NoError(t, repo.Delete(ctx, 1000))
}
