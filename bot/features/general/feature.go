package general

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/domain/entities"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the ping and help commands
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// New creates a new general feature instance
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}

// HandlePing responds with the gateway latency
func (f *Feature) HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	latency := s.HeartbeatLatency().Round(time.Millisecond)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🏓 Pong! Latency: %s", latency),
		},
	})
	if err != nil {
		log.Errorf("Error responding to ping command: %v", err)
	}
}

// commandSummaries is the help text per command, keyed by command name
var commandSummaries = map[string]string{
	"help":         "Show this overview",
	"ping":         "Check the bot is alive",
	"meme":         "Post a random meme",
	"roastme":      "Get roasted by the AI",
	"topchatter":   "Rank the most active users in this channel",
	"inactive":     "List members without recent messages",
	"nuke":         "Kick members inactive beyond the configured threshold",
	"dailynews":    "Post the news digest now",
	"qotd":         "Post a question of the day now",
	"qotd-channel": "Set or clear the QOTD channel",
	"rss-channel":  "Set or clear the daily news channel",
	"rss-fetch":    "Fetch the news feed now",
}

// HandleHelp lists the commands the invoking user can actually run,
// with each command's effective access level for this guild
func (f *Feature) HandleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	accessService := services.NewCommandAccessService(uow.CommandAccessRepository())
	snapshot, err := accessService.Snapshot(ctx, actor.GuildID)
	if err != nil {
		log.Errorf("Error loading access snapshot: %v", err)
		common.RespondWithError(s, i, "Unable to load command list. Please try again.")
		return
	}

	permissionService := services.NewPermissionService(uow.CommandAccessRepository())

	names := make([]string, 0, len(snapshot.Access))
	for name := range snapshot.Access {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		allowed, err := permissionService.Resolve(ctx, name, actor)
		if err != nil {
			log.Errorf("Error resolving access for %s: %v", name, err)
			continue
		}
		if !allowed {
			continue
		}
		b.WriteString(fmt.Sprintf("`/%s` — %s", name, commandSummaries[name]))
		if snapshot.Access[name] != entities.AccessPublic {
			b.WriteString(fmt.Sprintf(" *(%s)*", snapshot.Access[name]))
		}
		b.WriteString("\n")
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Available Commands",
		Description: b.String(),
		Color:       0x5865F2,
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to help command: %v", err)
	}
}
