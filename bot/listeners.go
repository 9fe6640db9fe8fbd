package bot

import (
	"context"
	"fmt"
	"time"

	"sattbot/bot/common"
	"sattbot/domain/entities"
	"sattbot/domain/events"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleMessageCreate feeds guild messages through the spam tracker and
// times out users who exceed the configured rate
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", m.GuildID, err)
		return
	}
	userID, err := common.ParseID(m.Author.ID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", m.Author.ID, err)
		return
	}

	ctx := context.Background()
	config := b.guildConfig(ctx, guildID)
	if config == nil {
		return
	}

	// Administrators are tracked but never muted
	privileged := false
	if perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID); err == nil {
		privileged = perms&discordgo.PermissionAdministrator != 0
	}

	ts := time.Now()
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp
	}

	if !b.spamTracker.RecordAndCheck(guildID, userID, ts, config.SpamMaxMsgs, privileged) {
		return
	}

	b.muteSpammer(ctx, s, m, guildID, userID, config.SpamMaxMsgs, config.SpamMuteSecs)
}

// muteSpammer times the user out and announces it. The timeout is
// best-effort: a missing-permission failure is logged and the event is
// still published so downstream consumers see the detection.
func (b *Bot) muteSpammer(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, guildID, userID int64, maxMsgs, muteSecs int) {
	until := time.Now().Add(time.Duration(muteSecs) * time.Second)

	if err := s.GuildMemberTimeout(m.GuildID, m.Author.ID, &until); err != nil {
		// Expected for users above the bot in the role hierarchy
		log.WithFields(log.Fields{
			"guild": guildID,
			"user":  userID,
			"error": err,
		}).Warn("Failed to time out spamming user")
	} else {
		_, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
			"%s has been muted for %d seconds for spamming.",
			common.GetUserMention(userID), muteSecs))
		if err != nil {
			log.Errorf("Error posting mute notice: %v", err)
		}
	}

	log.WithFields(log.Fields{
		"guild": guildID,
		"user":  userID,
		"until": until,
	}).Info("Spam mute triggered")

	event := events.UserMutedEvent{
		GuildID:      guildID,
		UserID:       userID,
		Until:        until,
		MessageCount: maxMsgs + 1,
	}
	if err := b.eventPublisher.Publish(ctx, events.SubjectUserMuted, event); err != nil {
		log.Warnf("Failed to publish mute event: %v", err)
	}
}

// guildConfig loads the guild's config in a short-lived transaction
func (b *Bot) guildConfig(ctx context.Context, guildID int64) *entities.GuildConfig {
	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		return nil
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.GetConfig(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		return nil
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		return nil
	}
	return config
}

// handleGuildCreate seeds config and command defaults when the bot
// joins (or reconnects to) a guild
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.EnsureGuild(ctx, guildID)
	if err != nil {
		log.Errorf("Failed to track guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return
	}

	log.WithFields(log.Fields{
		"guild":          guildID,
		"name":           g.Name,
		"setup_complete": config.SetupComplete,
	}).Info("Guild connected")
}

// handleGuildDelete purges all stored state for a guild the bot was
// removed from. Outage-driven unavailability is not a removal.
func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return
	}

	ctx := context.Background()

	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	if err := uow.CommandAccessRepository().DeleteGuild(ctx, guildID); err != nil {
		log.Errorf("Failed to purge command access for guild %d: %v", guildID, err)
		return
	}
	if err := uow.FeedItemRepository().DeleteGuild(ctx, guildID); err != nil {
		log.Errorf("Failed to purge feed items for guild %d: %v", guildID, err)
		return
	}
	if err := uow.PendingRevealRepository().DeleteGuild(ctx, guildID); err != nil {
		log.Errorf("Failed to purge pending reveals for guild %d: %v", guildID, err)
		return
	}
	if err := uow.GuildConfigRepository().Delete(ctx, guildID); err != nil {
		log.Errorf("Failed to purge config for guild %d: %v", guildID, err)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return
	}

	log.WithFields(log.Fields{"guild": guildID}).Info("Guild removed, stored state purged")
}
