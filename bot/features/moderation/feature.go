package moderation

import (
	"context"
	"fmt"
	"time"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/bot/features/activity"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the nuke command
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// New creates a new moderation feature instance
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}

// HandleNuke kicks members inactive beyond the configured threshold.
// Requires the confirm option; without it the command only reports
// what it would do.
func (f *Feature) HandleNuke(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	confirmed := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "confirm" {
			confirmed = opt.BoolValue()
		}
	}

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.GetConfig(ctx, actor.GuildID)
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Errorf("Error deferring nuke response: %v", err)
		return
	}

	cutoff := time.Now().Add(-time.Duration(config.NukeDays) * 24 * time.Hour)
	inactive, err := activity.InactiveMembers(s, i.GuildID, i.ChannelID, config.ScanLimit, cutoff)
	if err != nil {
		log.Errorf("Error finding inactive members: %v", err)
		common.FollowUpWithError(s, i, "Couldn't determine inactive members.")
		return
	}

	if len(inactive) == 0 {
		followUp(s, i, fmt.Sprintf("No members inactive for more than %d days. Nothing to do.", config.NukeDays))
		return
	}

	if !confirmed {
		followUp(s, i, fmt.Sprintf(
			"This would kick **%d** members inactive for %d+ days:\n%s\nRe-run with `confirm: True` to proceed.",
			len(inactive), config.NukeDays, common.FormatMentionList(inactive, 25)))
		return
	}

	kicked, failed := 0, 0
	for _, userID := range inactive {
		err := s.GuildMemberDeleteWithReason(i.GuildID, common.FormatID(userID),
			fmt.Sprintf("Inactive for %d+ days", config.NukeDays))
		if err != nil {
			// Missing permission on individual members is expected; keep going
			log.WithFields(log.Fields{
				"guild": actor.GuildID,
				"user":  userID,
				"error": err,
			}).Warn("Failed to kick member")
			failed++
			continue
		}
		kicked++
	}

	log.WithFields(log.Fields{
		"guild":  actor.GuildID,
		"kicked": kicked,
		"failed": failed,
	}).Info("Nuke completed")

	result := fmt.Sprintf("Kicked **%d** members inactive for %d+ days.", kicked, config.NukeDays)
	if failed > 0 {
		result += fmt.Sprintf(" %d could not be kicked (missing permission).", failed)
	}
	followUp(s, i, result)
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error posting nuke result: %v", err)
	}
}
