package admin

import (
	"context"
	"strconv"
	"strings"

	"sattbot/bot/common"
	"sattbot/domain/entities"
	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleSetup starts (or restarts) the setup wizard for the guild. The
// wizard lives in an ephemeral message driven by components; nothing is
// persisted until the review step is confirmed.
func (f *Feature) HandleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor := common.ActorFromInteraction(i)

	f.mu.Lock()
	wizard := services.NewSetupWizard(actor.GuildID)
	f.wizards[actor.GuildID] = wizard
	f.mu.Unlock()

	log.WithFields(log.Fields{
		"guild":  actor.GuildID,
		"user":   actor.UserID,
		"wizard": wizard.ID,
	}).Info("Setup wizard started")

	embed, components := welcomeScreen()
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error showing setup wizard: %v", err)
	}
}

// HandleInteraction routes setup wizard components and modal submissions
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor := common.ActorFromInteraction(i)

	f.mu.Lock()
	wizard, ok := f.wizards[actor.GuildID]
	f.mu.Unlock()
	if !ok {
		common.RespondWithError(s, i, "This setup session has expired. Run `/setup` again.")
		return
	}

	var customID string
	if i.Type == discordgo.InteractionModalSubmit {
		customID = i.ModalSubmitData().CustomID
	} else {
		customID = i.MessageComponentData().CustomID
	}

	switch {
	case customID == "setup_begin":
		f.transition(s, i, wizard, wizard.Begin, permissionsScreen)

	case customID == "setup_skip":
		if err := wizard.SkipAll(); err != nil {
			common.RespondWithError(s, i, err.Error())
			return
		}
		f.commitWizard(s, i, wizard)

	case customID == "setup_perm_command":
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return
		}
		embed, components := permissionLevelScreen(wizard, values[0])
		updateScreen(s, i, embed, components)

	case strings.HasPrefix(customID, "setup_perm_level_"):
		f.handlePermissionChoice(s, i, wizard, customID)

	case customID == "setup_perm_back":
		embed, components := permissionsScreen(wizard)
		updateScreen(s, i, embed, components)

	case customID == "setup_perm_done":
		f.transition(s, i, wizard, wizard.ConfirmPermissions, moderationScreen)

	case customID == "setup_mod_edit":
		modal := moderationModal(wizard)
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &modal,
		})
		if err != nil {
			log.Errorf("Error showing moderation modal: %v", err)
		}

	case customID == "setup_mod_modal":
		f.handleModerationModal(s, i, wizard)

	case customID == "setup_mod_done":
		f.transition(s, i, wizard, wizard.ConfirmModeration, aiScreen)

	case customID == "setup_ai_model":
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return
		}
		if err := wizard.SetAIModel(values[0]); err != nil {
			common.RespondWithError(s, i, err.Error())
			return
		}
		embed, components := aiScreen(wizard)
		updateScreen(s, i, embed, components)

	case customID == "setup_ai_done":
		f.transition(s, i, wizard, wizard.ConfirmAI, reviewScreen)

	case customID == "setup_confirm":
		if err := wizard.Confirm(); err != nil {
			common.RespondWithError(s, i, err.Error())
			return
		}
		f.commitWizard(s, i, wizard)

	case customID == "setup_restart":
		wizard.Restart()
		embed, components := welcomeScreen()
		updateScreen(s, i, embed, components)

	default:
		log.Warnf("Unknown setup component: %s", customID)
	}
}

// transition applies a step transition and renders the next screen
func (f *Feature) transition(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	wizard *services.SetupWizard,
	step func() error,
	screen func(*services.SetupWizard) (*discordgo.MessageEmbed, []discordgo.MessageComponent),
) {
	if err := step(); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}
	embed, components := screen(wizard)
	updateScreen(s, i, embed, components)
}

// handlePermissionChoice applies a level button press. The custom ID
// carries the command and level: setup_perm_level_<command>_<level>,
// where level is public or admin_only.
func (f *Feature) handlePermissionChoice(s *discordgo.Session, i *discordgo.InteractionCreate, wizard *services.SetupWizard, customID string) {
	rest := strings.TrimPrefix(customID, "setup_perm_level_")

	var command string
	var level entities.AccessLevel
	switch {
	case strings.HasSuffix(rest, "_admin_only"):
		command = strings.TrimSuffix(rest, "_admin_only")
		level = entities.AccessAdminOnly
	case strings.HasSuffix(rest, "_public"):
		command = strings.TrimSuffix(rest, "_public")
		level = entities.AccessPublic
	default:
		common.RespondWithError(s, i, "Invalid permission selection.")
		return
	}

	if err := wizard.SetAccess(command, level); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}
	embed, components := permissionsScreen(wizard)
	updateScreen(s, i, embed, components)
}

// handleModerationModal validates and records the modal values
func (f *Feature) handleModerationModal(s *discordgo.Session, i *discordgo.InteractionCreate, wizard *services.SetupWizard) {
	data := i.ModalSubmitData()
	values := make(map[string]int, len(data.Components))
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok || len(actionsRow.Components) == 0 {
			continue
		}
		input, ok := actionsRow.Components[0].(*discordgo.TextInput)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(input.Value))
		if err != nil {
			common.RespondWithError(s, i, "All moderation settings must be whole numbers.")
			return
		}
		values[input.CustomID] = n
	}

	err := wizard.SetModeration(
		values["spam_max_msgs"],
		values["spam_mute_secs"],
		values["scan_limit"],
		values["nuke_days"],
	)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed, components := moderationScreen(wizard)
	updateScreen(s, i, embed, components)
}

// commitWizard persists the finished draft in one transaction and
// closes out the wizard session
func (f *Feature) commitWizard(s *discordgo.Session, i *discordgo.InteractionCreate, wizard *services.SetupWizard) {
	ctx := context.Background()

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to save settings. Please try again.")
		return
	}
	defer uow.Rollback()

	setupService := services.NewSetupService(uow.GuildConfigRepository(), uow.CommandAccessRepository())
	if err := setupService.Commit(ctx, wizard); err != nil {
		log.Errorf("Error committing setup wizard: %v", err)
		common.RespondWithError(s, i, "Unable to save settings. Please try again.")
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to save settings. Please try again.")
		return
	}

	f.mu.Lock()
	delete(f.wizards, wizard.GuildID)
	f.mu.Unlock()

	log.WithFields(log.Fields{
		"guild":  wizard.GuildID,
		"wizard": wizard.ID,
	}).Info("Setup wizard committed")

	embed, components := doneScreen()
	updateScreen(s, i, embed, components)
}

func updateScreen(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		log.Errorf("Error updating setup screen: %v", err)
	}
}
