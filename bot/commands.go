package bot

import (
	"fmt"
	"sort"
	"time"

	"sattbot/domain/entities"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
)

// commandEntry binds a slash command to its handler and dispatch policy
type commandEntry struct {
	Handler func(s *discordgo.Session, i *discordgo.InteractionCreate)
	// AdminOnly hard-gates the admin surface before any table lookup;
	// these commands never appear in the configurable access table
	AdminOnly bool
	Cooldown  time.Duration
}

// buildRegistry wires every command to its feature handler
func (b *Bot) buildRegistry() map[string]commandEntry {
	return map[string]commandEntry{
		"help":       {Handler: b.general.HandleHelp},
		"ping":       {Handler: b.general.HandlePing},
		"meme":       {Handler: b.fun.HandleMeme, Cooldown: 5 * time.Second},
		"roastme":    {Handler: b.fun.HandleRoastme, Cooldown: 10 * time.Second},
		"topchatter": {Handler: b.activity.HandleTopChatter, Cooldown: 15 * time.Second},
		"inactive":   {Handler: b.activity.HandleInactive, Cooldown: 15 * time.Second},
		"nuke":       {Handler: b.moderation.HandleNuke, Cooldown: 30 * time.Second},

		"dailynews":    {Handler: b.feeds.HandleDailyNews, Cooldown: 30 * time.Second},
		"qotd":         {Handler: b.feeds.HandleQOTD, Cooldown: 30 * time.Second},
		"rss-fetch":    {Handler: b.feeds.HandleRSSFetch, Cooldown: 30 * time.Second},
		"rss-channel":  {Handler: b.feeds.HandleRSSChannel},
		"qotd-channel": {Handler: b.feeds.HandleQOTDChannel},

		"setup":            {Handler: b.admin.HandleSetup, AdminOnly: true},
		"permissions":      {Handler: b.admin.HandlePermissions, AdminOnly: true},
		"permissions-view": {Handler: b.admin.HandlePermissionsView, AdminOnly: true},
		"config":           {Handler: b.admin.HandleConfig, AdminOnly: true},
	}
}

// commandChoices lists the configurable commands as option choices
func commandChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := make([]string, 0, len(entities.DefaultCommandAccess))
	for name := range entities.DefaultCommandAccess {
		names = append(names, name)
	}
	sort.Strings(names)

	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, name := range names {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: "/" + name, Value: name}
	}
	return choices
}

// settingChoices lists the /config keys as option choices
func settingChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(services.SettingKeys))
	for i, key := range services.SettingKeys {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: key, Value: key}
	}
	return choices
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the commands you can use here",
		},
		{
			Name:        "ping",
			Description: "Check the bot is alive",
		},
		{
			Name:        "meme",
			Description: "Post a random meme",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "keywords",
					Description: "Comma-separated keywords to search for",
				},
			},
		},
		{
			Name:        "roastme",
			Description: "Get roasted by the AI",
		},
		{
			Name:        "topchatter",
			Description: "Rank the most active users in this channel",
		},
		{
			Name:        "inactive",
			Description: "List members without recent messages in this channel",
		},
		{
			Name:        "nuke",
			Description: "Kick members inactive beyond the configured threshold",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "confirm",
					Description: "Actually kick; without this the command only reports",
				},
			},
		},
		{
			Name:        "dailynews",
			Description: "Post the daily news digest now",
		},
		{
			Name:        "qotd",
			Description: "Post a question of the day now",
		},
		{
			Name:        "rss-fetch",
			Description: "Fetch the news feed now and post what's new",
		},
		{
			Name:        "rss-channel",
			Description: "Set or clear the daily news channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Destination channel; omit to clear",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "qotd-channel",
			Description: "Set or clear the question of the day channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Destination channel; omit to clear",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "setup",
			Description: "Walk through the server setup wizard",
		},
		{
			Name:        "permissions",
			Description: "Manage role-based command access",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "grant",
					Description: "Restrict a command to a role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "command",
							Description: "Command to restrict",
							Required:    true,
							Choices:     commandChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role that may use the command",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "revoke",
					Description: "Remove a role's access to a command",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "command",
							Description: "Command to change",
							Required:    true,
							Choices:     commandChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to remove",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "permissions-view",
			Description: "Show the effective command access table",
		},
		{
			Name:        "config",
			Description: "View or change server settings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show the current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change a setting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Setting to change",
							Required:    true,
							Choices:     settingChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "New value",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
