package services

import (
	"context"
	"fmt"
	"strconv"

	"sattbot/domain/entities"
	"sattbot/domain/interfaces"
)

// GuildConfigService manages guild configuration and default seeding
type GuildConfigService struct {
	configRepo interfaces.GuildConfigRepository
	accessRepo interfaces.CommandAccessRepository
}

// NewGuildConfigService creates a new guild config service
func NewGuildConfigService(
	configRepo interfaces.GuildConfigRepository,
	accessRepo interfaces.CommandAccessRepository,
) *GuildConfigService {
	return &GuildConfigService{
		configRepo: configRepo,
		accessRepo: accessRepo,
	}
}

// EnsureGuild upserts the guild's config row and seeds the static
// command access defaults. Safe to call on every guild contact.
func (s *GuildConfigService) EnsureGuild(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	config, err := s.configRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure guild %d: %w", guildID, err)
	}

	if err := s.accessRepo.SeedDefaults(ctx, guildID, entities.DefaultCommandAccess); err != nil {
		return nil, fmt.Errorf("failed to seed command defaults for guild %d: %w", guildID, err)
	}

	return config, nil
}

// GetConfig returns the guild's config, or defaults when the guild is unknown
func (s *GuildConfigService) GetConfig(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	config, err := s.configRepo.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get config for guild %d: %w", guildID, err)
	}
	if config == nil {
		// Configuration absent is not an error: fall back to defaults
		return &entities.GuildConfig{
			GuildID:      guildID,
			SpamMaxMsgs:  entities.DefaultSpamMaxMsgs,
			SpamMuteSecs: entities.DefaultSpamMuteSecs,
			ScanLimit:    entities.DefaultScanLimit,
			NukeDays:     entities.DefaultNukeDays,
			AIModel:      entities.DefaultAIModel,
		}, nil
	}
	return config, nil
}

// SettingKeys are the configuration keys settable through /config
var SettingKeys = []string{"spam_max_msgs", "spam_mute_secs", "scan_limit", "nuke_days", "ai_model"}

// UpdateSetting validates and applies a single setting change. Numeric
// settings must be positive integers. Unknown keys are rejected before
// any write.
func (s *GuildConfigService) UpdateSetting(ctx context.Context, guildID int64, key, value string) error {
	config, err := s.configRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}

	switch key {
	case "ai_model":
		if value == "" {
			return NewValidationError("ai_model cannot be empty")
		}
		config.AIModel = value

	case "spam_max_msgs", "spam_mute_secs", "scan_limit", "nuke_days":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return NewValidationError(fmt.Sprintf("%s must be a positive integer", key))
		}
		switch key {
		case "spam_max_msgs":
			config.SpamMaxMsgs = n
		case "spam_mute_secs":
			config.SpamMuteSecs = n
		case "scan_limit":
			config.ScanLimit = n
		case "nuke_days":
			config.NukeDays = n
		}

	default:
		return NewValidationError(fmt.Sprintf("unknown setting: %s", key))
	}

	if err := s.configRepo.Update(ctx, config); err != nil {
		return fmt.Errorf("failed to update setting %s for guild %d: %w", key, guildID, err)
	}
	return nil
}

// MarkSetupComplete flips the setup-completion flag
func (s *GuildConfigService) MarkSetupComplete(ctx context.Context, guildID int64) error {
	config, err := s.configRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}
	config.SetupComplete = true
	if err := s.configRepo.Update(ctx, config); err != nil {
		return fmt.Errorf("failed to mark setup complete for guild %d: %w", guildID, err)
	}
	return nil
}

// SetNewsChannel updates the daily news destination channel
func (s *GuildConfigService) SetNewsChannel(ctx context.Context, guildID int64, channelID *int64) error {
	config, err := s.configRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}
	config.SetNewsChannel(channelID)
	if err := s.configRepo.Update(ctx, config); err != nil {
		return fmt.Errorf("failed to set news channel for guild %d: %w", guildID, err)
	}
	return nil
}

// SetQOTDChannel updates the QOTD destination channel
func (s *GuildConfigService) SetQOTDChannel(ctx context.Context, guildID int64, channelID *int64) error {
	config, err := s.configRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}
	config.SetQOTDChannel(channelID)
	if err := s.configRepo.Update(ctx, config); err != nil {
		return fmt.Errorf("failed to set QOTD channel for guild %d: %w", guildID, err)
	}
	return nil
}
