package services

import (
	"context"
	"errors"
	"testing"

	"sattbot/domain/entities"
	"sattbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionService_Resolve(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)
	const userID = int64(42)

	tests := []struct {
		name       string
		command    string
		actor      Actor
		setupMocks func(repo *testhelpers.MockCommandAccessRepository)
		expected   bool
	}{
		{
			name:    "DM context denied before any lookup",
			command: "ping",
			actor:   Actor{UserID: userID, GuildID: 0},
		},
		{
			name:     "admin allowed without access lookup",
			command:  "nuke",
			actor:    Actor{UserID: userID, GuildID: guildID, IsAdmin: true},
			expected: true,
		},
		{
			name:    "admin allowed even for restricted command with no grants",
			command: "inactive",
			actor:   Actor{UserID: userID, GuildID: guildID, IsAdmin: true},
			// no mock setup: resolution must not touch the repo
			expected: true,
		},
		{
			name:    "public default allows non-admin",
			command: "ping",
			actor:   Actor{UserID: userID, GuildID: guildID},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "ping").
					Return(entities.AccessLevel(""), false, nil)
			},
			expected: true,
		},
		{
			name:    "admin_only default denies non-admin",
			command: "nuke",
			actor:   Actor{UserID: userID, GuildID: guildID},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "nuke").
					Return(entities.AccessLevel(""), false, nil)
			},
			expected: false,
		},
		{
			name:    "explicit entry overrides static default",
			command: "meme",
			actor:   Actor{UserID: userID, GuildID: guildID},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "meme").
					Return(entities.AccessAdminOnly, true, nil)
			},
			expected: false,
		},
		{
			name:    "restricted allows actor holding a granted role",
			command: "roastme",
			actor:   Actor{UserID: userID, GuildID: guildID, RoleIDs: []int64{5, 9}},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "roastme").
					Return(entities.AccessRestricted, true, nil)
				repo.On("GetGrants", context.Background(), guildID, "roastme").
					Return([]int64{9, 77}, nil)
			},
			expected: true,
		},
		{
			name:    "restricted denies actor without a granted role",
			command: "roastme",
			actor:   Actor{UserID: userID, GuildID: guildID, RoleIDs: []int64{5}},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "roastme").
					Return(entities.AccessRestricted, true, nil)
				repo.On("GetGrants", context.Background(), guildID, "roastme").
					Return([]int64{9, 77}, nil)
			},
			expected: false,
		},
		{
			name:    "restricted with empty grant set denies everyone",
			command: "roastme",
			actor:   Actor{UserID: userID, GuildID: guildID, RoleIDs: []int64{5, 9, 77}},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "roastme").
					Return(entities.AccessRestricted, true, nil)
				repo.On("GetGrants", context.Background(), guildID, "roastme").
					Return([]int64{}, nil)
			},
			expected: false,
		},
		{
			name:    "unknown command falls back to public default",
			command: "does-not-exist",
			actor:   Actor{UserID: userID, GuildID: guildID},
			setupMocks: func(repo *testhelpers.MockCommandAccessRepository) {
				repo.On("GetAccess", context.Background(), guildID, "does-not-exist").
					Return(entities.AccessLevel(""), false, nil)
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(testhelpers.MockCommandAccessRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}

			service := NewPermissionService(repo)
			allowed, err := service.Resolve(context.Background(), tt.command, tt.actor)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, allowed)
			repo.AssertExpectations(t)
		})
	}
}

func TestPermissionService_Resolve_RepoError(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockCommandAccessRepository)
	repo.On("GetAccess", context.Background(), int64(1000), "ping").
		Return(entities.AccessLevel(""), false, errors.New("db down"))

	service := NewPermissionService(repo)
	allowed, err := service.Resolve(context.Background(), "ping", Actor{UserID: 1, GuildID: 1000})

	require.Error(t, err)
	assert.False(t, allowed)
}
