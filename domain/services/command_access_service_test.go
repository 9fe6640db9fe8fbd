package services

import (
	"context"
	"testing"

	"sattbot/domain/entities"
	"sattbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandAccessService_Grant(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	t.Run("grant restricts command and records role", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		repo.On("SetAccess", context.Background(), guildID, "meme", entities.AccessRestricted).Return(nil)
		repo.On("AddGrant", context.Background(), guildID, "meme", int64(7)).Return(nil)

		service := NewCommandAccessService(repo)
		err := service.Grant(context.Background(), guildID, "meme", 7)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown command rejected before any write", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		service := NewCommandAccessService(repo)

		err := service.Grant(context.Background(), guildID, "frobnicate", 7)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		repo.AssertNotCalled(t, "SetAccess")
		repo.AssertNotCalled(t, "AddGrant")
	})
}

func TestCommandAccessService_Revoke(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	t.Run("grants remain, access level untouched", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		repo.On("RemoveGrant", context.Background(), guildID, "meme", int64(7)).Return(nil)
		repo.On("GetGrants", context.Background(), guildID, "meme").Return([]int64{8, 9}, nil)

		service := NewCommandAccessService(repo)
		result, err := service.Revoke(context.Background(), guildID, "meme", 7)

		require.NoError(t, err)
		assert.Equal(t, 2, result.RemainingGrants)
		assert.False(t, result.Reverted)
		repo.AssertNotCalled(t, "SetAccess")
	})

	t.Run("last grant reverts public-default command to public", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		repo.On("RemoveGrant", context.Background(), guildID, "meme", int64(7)).Return(nil)
		repo.On("GetGrants", context.Background(), guildID, "meme").Return([]int64{}, nil)
		repo.On("SetAccess", context.Background(), guildID, "meme", entities.AccessPublic).Return(nil)

		service := NewCommandAccessService(repo)
		result, err := service.Revoke(context.Background(), guildID, "meme", 7)

		require.NoError(t, err)
		assert.True(t, result.Reverted)
		assert.Equal(t, entities.AccessPublic, result.RevertedTo)
		repo.AssertExpectations(t)
	})

	t.Run("last grant reverts admin-default command to admin_only", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		repo.On("RemoveGrant", context.Background(), guildID, "nuke", int64(7)).Return(nil)
		repo.On("GetGrants", context.Background(), guildID, "nuke").Return([]int64{}, nil)
		repo.On("SetAccess", context.Background(), guildID, "nuke", entities.AccessAdminOnly).Return(nil)

		service := NewCommandAccessService(repo)
		result, err := service.Revoke(context.Background(), guildID, "nuke", 7)

		require.NoError(t, err)
		assert.True(t, result.Reverted)
		assert.Equal(t, entities.AccessAdminOnly, result.RevertedTo)
		repo.AssertExpectations(t)
	})

	t.Run("unknown command rejected", func(t *testing.T) {
		t.Parallel()

		repo := new(testhelpers.MockCommandAccessRepository)
		service := NewCommandAccessService(repo)

		_, err := service.Revoke(context.Background(), guildID, "frobnicate", 7)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestCommandAccessService_Snapshot(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	repo := new(testhelpers.MockCommandAccessRepository)
	repo.On("ListAccess", context.Background(), guildID).Return(map[string]entities.AccessLevel{
		"meme": entities.AccessRestricted,
		"ping": entities.AccessAdminOnly,
	}, nil)
	repo.On("ListGrants", context.Background(), guildID).Return(map[string][]int64{
		"meme": {7, 8},
	}, nil)

	service := NewCommandAccessService(repo)
	snapshot, err := service.Snapshot(context.Background(), guildID)

	require.NoError(t, err)
	// Explicit entries override, unmentioned commands carry defaults
	assert.Equal(t, entities.AccessRestricted, snapshot.Access["meme"])
	assert.Equal(t, entities.AccessAdminOnly, snapshot.Access["ping"])
	assert.Equal(t, entities.AccessPublic, snapshot.Access["help"])
	assert.Equal(t, entities.AccessAdminOnly, snapshot.Access["nuke"])
	assert.Equal(t, []int64{7, 8}, snapshot.Grants["meme"])
	assert.Len(t, snapshot.Access, len(entities.DefaultCommandAccess))
}
