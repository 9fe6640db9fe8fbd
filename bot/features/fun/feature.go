package fun

import (
	"context"
	"errors"
	"fmt"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/domain/services"
	"sattbot/infrastructure"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the meme and roastme commands
type Feature struct {
	uowFactory application.UnitOfWorkFactory
	memeClient *infrastructure.MemeClient
	ai         application.AIClient
}

// New creates a new fun feature instance
func New(uowFactory application.UnitOfWorkFactory, memeClient *infrastructure.MemeClient, ai application.AIClient) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		memeClient: memeClient,
		ai:         ai,
	}
}

// HandleMeme posts a random meme, optionally filtered by keywords
func (f *Feature) HandleMeme(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	keywords := ""
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "keywords" {
			keywords = opt.StringValue()
		}
	}

	// The meme API can be slow; defer the response
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring meme response: %v", err)
		return
	}

	meme, err := f.memeClient.Random(ctx, keywords)
	if err != nil {
		log.Errorf("Error fetching meme: %v", err)
		common.FollowUpWithError(s, i, "Couldn't fetch a meme right now. Try again later.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Image: &discordgo.MessageEmbedImage{URL: meme.URL},
		Color: 0xFEE75C,
	}
	if meme.Description != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: meme.Description}
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Errorf("Error posting meme: %v", err)
	}
}

// HandleRoastme generates a playful roast of the invoking user
func (f *Feature) HandleRoastme(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring roastme response: %v", err)
		return
	}

	model := f.guildModel(ctx, actor.GuildID)
	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	const system = "You are a comedian doing playful, good-natured roasts. " +
		"Keep it to two sentences, never cruel, no slurs, no references to protected attributes."
	roast, err := f.ai.Complete(ctx, model, system, fmt.Sprintf("Roast a Discord user named %s.", displayName))
	if err != nil {
		if errors.Is(err, application.ErrAIUnavailable) {
			common.FollowUpWithError(s, i, "The roast machine is offline. Consider yourself spared.")
			return
		}
		log.Errorf("Error generating roast: %v", err)
		common.FollowUpWithError(s, i, "Couldn't come up with a roast. You win this round.")
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("%s %s", common.GetUserMention(actor.UserID), roast),
	})
	if err != nil {
		log.Errorf("Error posting roast: %v", err)
	}
}

// guildModel returns the guild's configured AI model, or empty for the default
func (f *Feature) guildModel(ctx context.Context, guildID int64) string {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		return ""
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.GetConfig(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		return ""
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		return ""
	}
	return config.AIModel
}
