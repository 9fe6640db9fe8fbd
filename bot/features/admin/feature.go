package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the admin surface: setup, permissions,
// permissions-view and config. All of these are admin-gated before
// dispatch; they never consult the per-command access table.
type Feature struct {
	uowFactory application.UnitOfWorkFactory

	mu      sync.Mutex
	wizards map[int64]*services.SetupWizard
}

// New creates a new admin feature instance
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		wizards:    make(map[int64]*services.SetupWizard),
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to admin command: %v", err)
	}
}

// HandlePermissions handles the grant and revoke subcommands
func (f *Feature) HandlePermissions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand.")
		return
	}
	sub := options[0]

	command := ""
	var roleID int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "command":
			command = opt.StringValue()
		case "role":
			parsed, err := common.ParseID(opt.Value.(string))
			if err == nil {
				roleID = parsed
			}
		}
	}
	if command == "" || roleID == 0 {
		common.RespondWithError(s, i, "Both a command and a role are required.")
		return
	}

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	accessService := services.NewCommandAccessService(uow.CommandAccessRepository())

	var content string
	switch sub.Name {
	case "grant":
		if err := accessService.Grant(ctx, actor.GuildID, command, roleID); err != nil {
			f.replyAccessError(s, i, err)
			return
		}
		content = fmt.Sprintf("`/%s` is now restricted; %s may use it.", command, common.GetRoleMention(roleID))

	case "revoke":
		result, err := accessService.Revoke(ctx, actor.GuildID, command, roleID)
		if err != nil {
			f.replyAccessError(s, i, err)
			return
		}
		if result.Reverted {
			content = fmt.Sprintf("Removed the last grant for `/%s`; access reverted to **%s**.", command, result.RevertedTo)
		} else {
			content = fmt.Sprintf("Removed the grant for `/%s`; %d role(s) still qualify.", command, result.RemainingGrants)
		}

	default:
		common.RespondWithError(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	log.WithFields(log.Fields{
		"guild":   actor.GuildID,
		"command": command,
		"role":    roleID,
		"action":  sub.Name,
	}).Info("Command permissions changed")

	respond(s, i, content)
}

// replyAccessError maps validation errors to their message and hides
// everything else behind a generic response
func (f *Feature) replyAccessError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		common.RespondWithError(s, i, validationErr.Error())
		return
	}
	log.Errorf("Error changing command permissions: %v", err)
	common.RespondWithError(s, i, "Unable to process request. Please try again.")
}

// HandlePermissionsView shows the effective access table and role grants
func (f *Feature) HandlePermissionsView(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	commands := make([]string, 0, len(snapshot.Access))
	for command := range snapshot.Access {
		commands = append(commands, command)
	}
	sort.Strings(commands)

	var b strings.Builder
	for _, command := range commands {
		b.WriteString(fmt.Sprintf("`/%s` — %s", command, snapshot.Access[command]))
		if roles := snapshot.Grants[command]; len(roles) > 0 {
			mentions := make([]string, len(roles))
			for idx, roleID := range roles {
				mentions[idx] = common.GetRoleMention(roleID)
			}
			b.WriteString(" (" + strings.Join(mentions, ", ") + ")")
		}
		b.WriteString("\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Command Permissions",
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
		log.Errorf("Error responding to permissions-view: %v", err)
	}
}

// HandleConfig handles the view and set subcommands
func (f *Feature) HandleConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := common.ActorFromInteraction(i)

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand.")
		return
	}
	sub := options[0]

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	configService := services.NewGuildConfigService(uow.GuildConfigRepository(), uow.CommandAccessRepository())

	switch sub.Name {
	case "view":
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

		newsChannel := "not set"
		if config.HasNewsChannel() {
			newsChannel = "<#" + common.FormatID(*config.NewsChannelID) + ">"
		}
		qotdChannel := "not set"
		if config.HasQOTDChannel() {
			qotdChannel = "<#" + common.FormatID(*config.QOTDChannelID) + ">"
		}

		embed := &discordgo.MessageEmbed{
			Title: "Server Configuration",
			Fields: []*discordgo.MessageEmbedField{
				{Name: "spam_max_msgs", Value: fmt.Sprintf("%d", config.SpamMaxMsgs), Inline: true},
				{Name: "spam_mute_secs", Value: fmt.Sprintf("%d", config.SpamMuteSecs), Inline: true},
				{Name: "scan_limit", Value: fmt.Sprintf("%d", config.ScanLimit), Inline: true},
				{Name: "nuke_days", Value: fmt.Sprintf("%d", config.NukeDays), Inline: true},
				{Name: "ai_model", Value: config.AIModel, Inline: true},
				{Name: "News channel", Value: newsChannel, Inline: true},
				{Name: "QOTD channel", Value: qotdChannel, Inline: true},
				{Name: "Setup complete", Value: fmt.Sprintf("%t", config.SetupComplete), Inline: true},
			},
			Color: 0x5865F2,
		}
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{embed},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Errorf("Error responding to config view: %v", err)
		}

	case "set":
		key, value := "", ""
		for _, opt := range sub.Options {
			switch opt.Name {
			case "key":
				key = opt.StringValue()
			case "value":
				value = opt.StringValue()
			}
		}

		if err := configService.UpdateSetting(ctx, actor.GuildID, key, value); err != nil {
			f.replyAccessError(s, i, err)
			return
		}
		if err := uow.Commit(); err != nil {
			log.Errorf("Error committing transaction: %v", err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}

		log.WithFields(log.Fields{
			"guild": actor.GuildID,
			"key":   key,
			"value": value,
		}).Info("Guild setting updated")

		respond(s, i, fmt.Sprintf("`%s` is now `%s`.", key, value))

	default:
		common.RespondWithError(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}
