package feeds

import (
	"context"
	"fmt"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the feed commands: rss-channel, qotd-channel,
// rss-fetch, dailynews and qotd
type Feature struct {
	uowFactory application.UnitOfWorkFactory
	pipeline   *application.FeedPipeline
}

// NewFeature creates a new feeds feature instance. The pipeline is
// wired after the bot session exists, since its poster posts through
// that session.
func NewFeature(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}

// SetPipeline binds the feed pipeline once the session-backed poster exists
func (f *Feature) SetPipeline(pipeline *application.FeedPipeline) {
	f.pipeline = pipeline
}

// channelOption extracts the optional channel option from the interaction
func channelOption(i *discordgo.InteractionCreate) *int64 {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "channel" && opt.Type == discordgo.ApplicationCommandOptionChannel {
			channelID, err := common.ParseID(opt.Value.(string))
			if err != nil {
				return nil
			}
			return &channelID
		}
	}
	return nil
}

// setChannel persists a feed destination channel for the guild.
// A nil channel clears the destination.
func (f *Feature) setChannel(s *discordgo.Session, i *discordgo.InteractionCreate, qotd bool) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)
	channelID := channelOption(i)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	var err error
	if qotd {
		err = configService.SetQOTDChannel(ctx, actor.GuildID, channelID)
	} else {
		err = configService.SetNewsChannel(ctx, actor.GuildID, channelID)
	}
	if err != nil {
		log.Errorf("Error setting feed channel: %v", err)
		common.RespondWithError(s, i, "Unable to save the channel. Please try again.")
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	kind := "daily news"
	if qotd {
		kind = "QOTD"
	}
	content := fmt.Sprintf("The %s channel has been cleared.", kind)
	if channelID != nil {
		content = fmt.Sprintf("The %s channel is now <#%s>.", kind, common.FormatID(*channelID))
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to channel command: %v", err)
	}
}

// HandleRSSChannel sets or clears the daily news destination
func (f *Feature) HandleRSSChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.setChannel(s, i, false)
}

// HandleQOTDChannel sets or clears the QOTD destination
func (f *Feature) HandleQOTDChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.setChannel(s, i, true)
}

// newsTarget resolves where news posts for this guild should go:
// the configured news channel, or the invoking channel when unset
func (f *Feature) newsTarget(ctx context.Context, i *discordgo.InteractionCreate, guildID int64) int64 {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		return 0
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.GetConfig(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		return 0
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		return 0
	}

	if config.HasNewsChannel() {
		return *config.NewsChannelID
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		return 0
	}
	return channelID
}

// runFetch ingests the news feed and reports the outcome to the invoker
func (f *Feature) runFetch(s *discordgo.Session, i *discordgo.InteractionCreate, fullBatch bool) {
	if f.pipeline == nil {
		common.RespondWithError(s, i, "Still starting up, try again in a moment.")
		return
	}

	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	channelID := f.newsTarget(ctx, i, actor.GuildID)
	if channelID == 0 {
		common.RespondWithError(s, i, "Unable to determine the destination channel.")
		return
	}

	// Feed fetches go over the network; defer the response
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Errorf("Error deferring fetch response: %v", err)
		return
	}

	posted, err := f.pipeline.FetchAndPostForGuild(ctx, actor.GuildID, channelID, fullBatch)
	if err != nil {
		log.Errorf("Error running feed fetch: %v", err)
		common.FollowUpWithError(s, i, "The feed fetch failed. Try again later.")
		return
	}

	content := "Nothing new in the feed."
	if posted > 0 {
		content = fmt.Sprintf("Posted %d item(s) to <#%s>.", posted, common.FormatID(channelID))
	}
	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error posting fetch result: %v", err)
	}
}

// HandleRSSFetch fetches the news feed now, posting the newest entry
func (f *Feature) HandleRSSFetch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.runFetch(s, i, false)
}

// HandleDailyNews posts the full digest now
func (f *Feature) HandleDailyNews(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.runFetch(s, i, true)
}

// HandleQOTD posts a question of the day now. The poll goes to the
// configured QOTD channel, or the invoking channel when unset.
func (f *Feature) HandleQOTD(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if f.pipeline == nil {
		common.RespondWithError(s, i, "Still starting up, try again in a moment.")
		return
	}

	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	config, err := configService.GetConfig(ctx, actor.GuildID)
	uow.Rollback()
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	channelID := int64(0)
	if config.HasQOTDChannel() {
		channelID = *config.QOTDChannelID
	} else if parsed, err := common.ParseID(i.ChannelID); err == nil {
		channelID = parsed
	}
	if channelID == 0 {
		common.RespondWithError(s, i, "Unable to determine the destination channel.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Errorf("Error deferring qotd response: %v", err)
		return
	}

	if err := f.pipeline.PostPollForGuild(ctx, actor.GuildID, channelID); err != nil {
		log.Errorf("Error posting QOTD: %v", err)
		common.FollowUpWithError(s, i, "Couldn't post a question right now.")
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("Question posted to <#%s>.", common.FormatID(channelID)),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error posting qotd result: %v", err)
	}
}
