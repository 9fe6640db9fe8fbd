package admin

import (
	"fmt"
	"sort"
	"strings"

	"sattbot/domain/entities"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
)

// sortedCommands returns the draft's commands in a stable order for display
func sortedCommands(access map[string]entities.AccessLevel) []string {
	commands := make([]string, 0, len(access))
	for command := range access {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}

func accessTable(access map[string]entities.AccessLevel) string {
	var b strings.Builder
	for _, command := range sortedCommands(access) {
		b.WriteString(fmt.Sprintf("`/%s` — %s\n", command, access[command]))
	}
	return b.String()
}

// welcomeScreen is the entry point of the setup wizard
func welcomeScreen() (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Server Setup",
		Description: "This wizard walks through command permissions, moderation " +
			"thresholds and the AI model. Nothing is saved until you confirm at " +
			"the end.\n\nYou can also skip straight to the defaults.",
		Color: 0x5865F2,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Start",
					Style:    discordgo.PrimaryButton,
					CustomID: "setup_begin",
				},
				discordgo.Button{
					Label:    "Use defaults",
					Style:    discordgo.SecondaryButton,
					CustomID: "setup_skip",
				},
			},
		},
	}
	return embed, components
}

// permissionsScreen shows the draft access table with a command picker
func permissionsScreen(w *services.SetupWizard) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Setup — Command Permissions",
		Description: "Pick a command to change who can use it, or continue " +
			"with the levels below.\n\n" + accessTable(w.Draft.Access),
		Color: 0x5865F2,
	}

	options := make([]discordgo.SelectMenuOption, 0, len(w.Draft.Access))
	for _, command := range sortedCommands(w.Draft.Access) {
		options = append(options, discordgo.SelectMenuOption{
			Label:       "/" + command,
			Value:       command,
			Description: string(w.Draft.Access[command]),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "setup_perm_command",
					Placeholder: "Change a command...",
					Options:     options,
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Continue",
					Style:    discordgo.PrimaryButton,
					CustomID: "setup_perm_done",
				},
			},
		},
	}
	return embed, components
}

// permissionLevelScreen offers the access levels for one command
func permissionLevelScreen(w *services.SetupWizard, command string) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Setup — Command Permissions",
		Description: fmt.Sprintf("Who should be able to use `/%s`? Currently: **%s**.\n\n"+
			"Role-restricted access is set up after the wizard with `/permissions grant`.",
			command, w.Draft.Access[command]),
		Color: 0x5865F2,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Everyone",
					Style:    discordgo.SuccessButton,
					CustomID: "setup_perm_level_" + command + "_public",
				},
				discordgo.Button{
					Label:    "Admins only",
					Style:    discordgo.DangerButton,
					CustomID: "setup_perm_level_" + command + "_admin_only",
				},
				discordgo.Button{
					Label:    "Back",
					Style:    discordgo.SecondaryButton,
					CustomID: "setup_perm_back",
				},
			},
		},
	}
	return embed, components
}

// moderationScreen shows the draft thresholds with an edit modal trigger
func moderationScreen(w *services.SetupWizard) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Setup — Moderation",
		Description: fmt.Sprintf(
			"Spam mute threshold: **%d** messages per minute\n"+
				"Mute duration: **%d** seconds\n"+
				"History scan limit: **%d** messages\n"+
				"Inactivity threshold: **%d** days",
			w.Draft.SpamMaxMsgs, w.Draft.SpamMuteSecs, w.Draft.ScanLimit, w.Draft.NukeDays),
		Color: 0x5865F2,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Edit values",
					Style:    discordgo.SecondaryButton,
					CustomID: "setup_mod_edit",
				},
				discordgo.Button{
					Label:    "Continue",
					Style:    discordgo.PrimaryButton,
					CustomID: "setup_mod_done",
				},
			},
		},
	}
	return embed, components
}

// moderationModal collects the four moderation thresholds
func moderationModal(w *services.SetupWizard) discordgo.InteractionResponseData {
	input := func(id, label, value string) discordgo.MessageComponent {
		return discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: id,
					Label:    label,
					Style:    discordgo.TextInputShort,
					Value:    value,
					Required: true,
				},
			},
		}
	}
	return discordgo.InteractionResponseData{
		CustomID: "setup_mod_modal",
		Title:    "Moderation settings",
		Components: []discordgo.MessageComponent{
			input("spam_max_msgs", "Spam threshold (messages per minute)", fmt.Sprintf("%d", w.Draft.SpamMaxMsgs)),
			input("spam_mute_secs", "Mute duration (seconds)", fmt.Sprintf("%d", w.Draft.SpamMuteSecs)),
			input("scan_limit", "History scan limit (messages)", fmt.Sprintf("%d", w.Draft.ScanLimit)),
			input("nuke_days", "Inactivity threshold (days)", fmt.Sprintf("%d", w.Draft.NukeDays)),
		},
	}
}

// aiScreen offers the model choices
func aiScreen(w *services.SetupWizard) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title:       "⚙️ Setup — AI Model",
		Description: fmt.Sprintf("Model used for roasts and generated questions.\nCurrently: **%s**", w.Draft.AIModel),
		Color:       0x5865F2,
	}

	options := make([]discordgo.SelectMenuOption, 0, len(services.WizardAIModels))
	for _, choice := range services.WizardAIModels {
		options = append(options, discordgo.SelectMenuOption{
			Label:   choice.Label,
			Value:   choice.Model,
			Default: choice.Model == w.Draft.AIModel,
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "setup_ai_model",
					Placeholder: "Pick a model...",
					Options:     options,
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Continue",
					Style:    discordgo.PrimaryButton,
					CustomID: "setup_ai_done",
				},
			},
		},
	}
	return embed, components
}

// reviewScreen summarizes the full draft before committing
func reviewScreen(w *services.SetupWizard) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Setup — Review",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Command permissions", Value: accessTable(w.Draft.Access)},
			{
				Name: "Moderation",
				Value: fmt.Sprintf("%d msgs/min → mute %ds, scan %d, inactive after %d days",
					w.Draft.SpamMaxMsgs, w.Draft.SpamMuteSecs, w.Draft.ScanLimit, w.Draft.NukeDays),
			},
			{Name: "AI model", Value: w.Draft.AIModel},
		},
		Color: 0x5865F2,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Save",
					Style:    discordgo.SuccessButton,
					CustomID: "setup_confirm",
				},
				discordgo.Button{
					Label:    "Start over",
					Style:    discordgo.SecondaryButton,
					CustomID: "setup_restart",
				},
			},
		},
	}
	return embed, components
}

// doneScreen closes out the wizard
func doneScreen() (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title:       "✅ Setup complete",
		Description: "Settings saved. Use `/config` and `/permissions` to adjust them later.",
		Color:       0x57F287,
	}
	return embed, []discordgo.MessageComponent{}
}
