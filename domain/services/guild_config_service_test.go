package services

import (
	"context"
	"testing"

	"sattbot/domain/entities"
	"sattbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/mock"
)

func defaultTestConfig(guildID int64) *entities.GuildConfig {
	return &entities.GuildConfig{
		GuildID:      guildID,
		SpamMaxMsgs:  entities.DefaultSpamMaxMsgs,
		SpamMuteSecs: entities.DefaultSpamMuteSecs,
		ScanLimit:    entities.DefaultScanLimit,
		NukeDays:     entities.DefaultNukeDays,
		AIModel:      entities.DefaultAIModel,
	}
}

func TestGuildConfigService_EnsureGuild(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	configRepo := new(testhelpers.MockGuildConfigRepository)
	accessRepo := new(testhelpers.MockCommandAccessRepository)
	configRepo.On("GetOrCreate", context.Background(), guildID).Return(defaultTestConfig(guildID), nil)
	accessRepo.On("SeedDefaults", context.Background(), guildID, entities.DefaultCommandAccess).Return(nil)

	service := NewGuildConfigService(configRepo, accessRepo)
	config, err := service.EnsureGuild(context.Background(), guildID)

	require.NoError(t, err)
	assert.Equal(t, guildID, config.GuildID)
	configRepo.AssertExpectations(t)
	accessRepo.AssertExpectations(t)
}

func TestGuildConfigService_GetConfig_UnknownGuildGetsDefaults(t *testing.T) {
	t.Parallel()

	const guildID = int64(2000)

	configRepo := new(testhelpers.MockGuildConfigRepository)
	accessRepo := new(testhelpers.MockCommandAccessRepository)
	configRepo.On("Get", context.Background(), guildID).Return(nil, nil)

	service := NewGuildConfigService(configRepo, accessRepo)
	config, err := service.GetConfig(context.Background(), guildID)

	require.NoError(t, err)
	assert.Equal(t, entities.DefaultSpamMaxMsgs, config.SpamMaxMsgs)
	assert.Equal(t, entities.DefaultSpamMuteSecs, config.SpamMuteSecs)
	assert.Equal(t, entities.DefaultScanLimit, config.ScanLimit)
	assert.Equal(t, entities.DefaultNukeDays, config.NukeDays)
	assert.Equal(t, entities.DefaultAIModel, config.AIModel)
	assert.False(t, config.SetupComplete)
}

func TestGuildConfigService_UpdateSetting(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	tests := []struct {
		name        string
		key         string
		value       string
		wantErr     bool
		checkConfig func(t *testing.T, config *entities.GuildConfig)
	}{
		{
			name:  "spam_max_msgs accepts positive integer",
			key:   "spam_max_msgs",
			value: "25",
			checkConfig: func(t *testing.T, config *entities.GuildConfig) {
				assert.Equal(t, 25, config.SpamMaxMsgs)
			},
		},
		{
			name:  "nuke_days accepts positive integer",
			key:   "nuke_days",
			value: "90",
			checkConfig: func(t *testing.T, config *entities.GuildConfig) {
				assert.Equal(t, 90, config.NukeDays)
			},
		},
		{
			name:  "ai_model accepts any non-empty string",
			key:   "ai_model",
			value: "openai/gpt-4o-mini",
			checkConfig: func(t *testing.T, config *entities.GuildConfig) {
				assert.Equal(t, "openai/gpt-4o-mini", config.AIModel)
			},
		},
		{
			name:    "ai_model rejects empty string",
			key:     "ai_model",
			value:   "",
			wantErr: true,
		},
		{
			name:    "numeric setting rejects zero",
			key:     "spam_mute_secs",
			value:   "0",
			wantErr: true,
		},
		{
			name:    "numeric setting rejects negative",
			key:     "scan_limit",
			value:   "-5",
			wantErr: true,
		},
		{
			name:    "numeric setting rejects non-numeric",
			key:     "spam_max_msgs",
			value:   "lots",
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			key:     "window_seconds",
			value:   "120",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := defaultTestConfig(guildID)
			configRepo := new(testhelpers.MockGuildConfigRepository)
			accessRepo := new(testhelpers.MockCommandAccessRepository)
			configRepo.On("GetOrCreate", context.Background(), guildID).Return(config, nil)
			if !tt.wantErr {
				configRepo.On("Update", context.Background(), config).Return(nil)
			}

			service := NewGuildConfigService(configRepo, accessRepo)
			err := service.UpdateSetting(context.Background(), guildID, tt.key, tt.value)

			if tt.wantErr {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				configRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			tt.checkConfig(t, config)
		})
	}
}

func TestGuildConfigService_SetNewsChannel(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)
	channelID := int64(555)

	config := defaultTestConfig(guildID)
	configRepo := new(testhelpers.MockGuildConfigRepository)
	accessRepo := new(testhelpers.MockCommandAccessRepository)
	configRepo.On("GetOrCreate", context.Background(), guildID).Return(config, nil)
	configRepo.On("Update", context.Background(), config).Return(nil)

	service := NewGuildConfigService(configRepo, accessRepo)
	require.NoError(t, service.SetNewsChannel(context.Background(), guildID, &channelID))

	assert.True(t, config.HasNewsChannel())
	require.NotNil(t, config.NewsChannelID)
	assert.Equal(t, channelID, *config.NewsChannelID)
}

func TestGuildConfigService_ClearQOTDChannel(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)
	channelID := int64(555)

	config := defaultTestConfig(guildID)
	config.SetQOTDChannel(&channelID)

	configRepo := new(testhelpers.MockGuildConfigRepository)
	accessRepo := new(testhelpers.MockCommandAccessRepository)
	configRepo.On("GetOrCreate", context.Background(), guildID).Return(config, nil)
	configRepo.On("Update", context.Background(), config).Return(nil)

	service := NewGuildConfigService(configRepo, accessRepo)
	require.NoError(t, service.SetQOTDChannel(context.Background(), guildID, nil))

	assert.False(t, config.HasQOTDChannel())
	assert.Nil(t, config.QOTDChannelID)
}
