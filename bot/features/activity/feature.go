package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/domain/entities"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the channel activity commands: topchatter and inactive
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// New creates a new activity feature instance
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}

// guildConfig loads the guild's config, falling back to defaults
func (f *Feature) guildConfig(ctx context.Context, guildID int64) *entities.GuildConfig {
	uow := f.uowFactory.Create()
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

// HandleTopChatter ranks the most active authors in the current channel
func (f *Feature) HandleTopChatter(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	config := f.guildConfig(ctx, actor.GuildID)
	if config == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Scanning history can exceed the 3 second interaction window
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring topchatter response: %v", err)
		return
	}

	messages, err := common.ScanChannelMessages(s, i.ChannelID, config.ScanLimit)
	if err != nil {
		log.Errorf("Error scanning channel history: %v", err)
		common.FollowUpWithError(s, i, "Couldn't read the channel history.")
		return
	}

	counts := make(map[int64]int64)
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.Bot {
			continue
		}
		authorID, err := common.ParseID(msg.Author.ID)
		if err != nil {
			continue
		}
		counts[authorID]++
	}

	if len(counts) == 0 {
		_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Content: "No messages found in this channel.",
		})
		if err != nil {
			log.Errorf("Error posting topchatter result: %v", err)
		}
		return
	}

	type ranked struct {
		userID int64
		count  int64
	}
	ranking := make([]ranked, 0, len(counts))
	for userID, count := range counts {
		ranking = append(ranking, ranked{userID: userID, count: count})
	}
	sort.Slice(ranking, func(a, b int) bool { return ranking[a].count > ranking[b].count })
	if len(ranking) > 10 {
		ranking = ranking[:10]
	}

	userIDs := make([]int64, len(ranking))
	messageCounts := make([]int64, len(ranking))
	for idx, r := range ranking {
		userIDs[idx] = r.userID
		messageCounts[idx] = r.count
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Top Chatters",
		Description: common.FormatLeaderboard(userIDs, messageCounts),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Based on the last %d messages in this channel", len(messages)),
		},
		Color: 0x57F287,
	}
	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Errorf("Error posting topchatter result: %v", err)
	}
}

// InactiveMembers scans the channel and returns guild members with no
// message in the scanned history newer than the cutoff. Bots and the
// guild owner are never listed.
func InactiveMembers(s *discordgo.Session, guildID, channelID string, scanLimit int, cutoff time.Time) ([]int64, error) {
	messages, err := common.ScanChannelMessages(s, channelID, scanLimit)
	if err != nil {
		return nil, err
	}

	lastSeen := make(map[string]time.Time)
	for _, msg := range messages {
		if msg.Author == nil {
			continue
		}
		if msg.Timestamp.After(lastSeen[msg.Author.ID]) {
			lastSeen[msg.Author.ID] = msg.Timestamp
		}
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
	}

	members, err := s.GuildMembers(guildID, "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of guild %s: %w", guildID, err)
	}

	var inactive []int64
	for _, member := range members {
		if member.User == nil || member.User.Bot || member.User.ID == guild.OwnerID {
			continue
		}
		if seen, ok := lastSeen[member.User.ID]; ok && seen.After(cutoff) {
			continue
		}
		userID, err := common.ParseID(member.User.ID)
		if err != nil {
			continue
		}
		inactive = append(inactive, userID)
	}
	return inactive, nil
}

// HandleInactive lists members without a recent message in this channel
func (f *Feature) HandleInactive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	config := f.guildConfig(ctx, actor.GuildID)
	if config == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Errorf("Error deferring inactive response: %v", err)
		return
	}

	cutoff := time.Now().Add(-time.Duration(config.NukeDays) * 24 * time.Hour)
	inactive, err := InactiveMembers(s, i.GuildID, i.ChannelID, config.ScanLimit, cutoff)
	if err != nil {
		log.Errorf("Error finding inactive members: %v", err)
		common.FollowUpWithError(s, i, "Couldn't determine inactive members.")
		return
	}

	if len(inactive) == 0 {
		_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Content: fmt.Sprintf("No members inactive for more than %d days. 🎉", config.NukeDays),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			log.Errorf("Error posting inactive result: %v", err)
		}
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Members inactive for %d+ days", config.NukeDays),
		Description: common.FormatMentionList(inactive, 25),
		Color:       0xED4245,
	}
	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error posting inactive result: %v", err)
	}
}
