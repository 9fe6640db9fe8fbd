package repository

import (
	"context"
	"testing"

	"sattbot/domain/entities"
	"sattbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAcrossRepositories(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.GuildConfigRepository().GetOrCreate(ctx, 1000)
	require.NoError(t, err)
	require.NoError(t, uow.CommandAccessRepository().SetAccess(ctx, 1000, "meme", entities.AccessRestricted))
	require.NoError(t, uow.Commit())

	// Visible outside the transaction
	config, err := NewGuildConfigRepository(testDB.DB).Get(ctx, 1000)
	require.NoError(t, err)
	assert.NotNil(t, config)

	_, explicit, err := NewCommandAccessRepository(testDB.DB).GetAccess(ctx, 1000, "meme")
	require.NoError(t, err)
	assert.True(t, explicit)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.GuildConfigRepository().GetOrCreate(ctx, 1000)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	config, err := NewGuildConfigRepository(testDB.DB).Get(ctx, 1000)
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestUnitOfWork_RollbackAfterCommitIsNoOp(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.GuildConfigRepository().GetOrCreate(ctx, 1000)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	assert.NoError(t, uow.Rollback())
}
