package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sattbot/application"
	"sattbot/bot/common"
	"sattbot/bot/features/activity"
	"sattbot/bot/features/admin"
	"sattbot/bot/features/feeds"
	"sattbot/bot/features/fun"
	"sattbot/bot/features/general"
	"sattbot/bot/features/moderation"
	"sattbot/domain/interfaces"
	"sattbot/domain/services"
	"sattbot/infrastructure"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config         Config
	session        *discordgo.Session
	uowFactory     application.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
	spamTracker    *services.SpamTracker

	// Feature modules
	general    *general.Feature
	fun        *fun.Feature
	activity   *activity.Feature
	moderation *moderation.Feature
	feeds      *feeds.Feature
	admin      *admin.Feature

	registry map[string]commandEntry

	cooldownMu sync.Mutex
	cooldowns  map[cooldownKey]time.Time
}

type cooldownKey struct {
	guildID int64
	userID  int64
	command string
}

// New creates a new bot instance with all features and opens the
// gateway connection
func New(
	config Config,
	uowFactory application.UnitOfWorkFactory,
	eventPublisher interfaces.EventPublisher,
	memeClient *infrastructure.MemeClient,
	aiClient application.AIClient,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	bot := &Bot{
		config:         config,
		session:        dg,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		spamTracker:    services.NewSpamTracker(),
		cooldowns:      make(map[cooldownKey]time.Time),
	}

	bot.general = general.New(uowFactory)
	bot.fun = fun.New(uowFactory, memeClient, aiClient)
	bot.activity = activity.New(uowFactory)
	bot.moderation = moderation.New(uowFactory)
	bot.feeds = feeds.NewFeature(uowFactory)
	bot.admin = admin.New(uowFactory)

	bot.registry = bot.buildRegistry()

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildDelete)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// GetFeedPoster returns a FeedPoster backed by this bot's session
func (b *Bot) GetFeedPoster() application.FeedPoster {
	return feeds.NewPoster(b.session)
}

// SetFeedPipeline wires the feed pipeline into the feeds feature. The
// pipeline is built after the bot because its poster needs the session.
func (b *Bot) SetFeedPipeline(pipeline *application.FeedPipeline) {
	b.feeds.SetPipeline(pipeline)
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands dispatches slash commands through the admin gate, the
// permission engine and the per-user cooldown before the handler runs
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	entry, ok := b.registry[name]
	if !ok {
		log.Warnf("Received unknown command: %s", name)
		return
	}

	actor := common.ActorFromInteraction(i)

	if entry.AdminOnly {
		if !actor.InGuild() || !actor.IsAdmin {
			common.RespondWithError(s, i, "This command is for server administrators.")
			return
		}
	} else {
		allowed, err := b.resolvePermission(name, actor)
		if err != nil {
			log.Errorf("Error resolving permission for %s: %v", name, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		if !allowed {
			common.RespondWithError(s, i, "You don't have permission to use this command here.")
			return
		}
	}

	if wait := b.checkCooldown(actor.GuildID, actor.UserID, name, entry.Cooldown); wait > 0 {
		common.RespondWithError(s, i, fmt.Sprintf("Slow down! Try again in %s.", wait.Round(time.Second)))
		return
	}

	log.WithFields(log.Fields{
		"guild":   actor.GuildID,
		"user":    actor.UserID,
		"command": name,
	}).Debug("Dispatching command")

	entry.Handler(s, i)
}

// resolvePermission evaluates the layered access policy in its own
// short-lived transaction
func (b *Bot) resolvePermission(command string, actor services.Actor) (bool, error) {
	ctx := context.Background()

	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	permissionService := services.NewPermissionService(uow.CommandAccessRepository())
	allowed, err := permissionService.Resolve(ctx, command, actor)
	if err != nil {
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}
	return allowed, nil
}

// checkCooldown returns the remaining wait, or zero when the command
// may run. A successful check arms the cooldown.
func (b *Bot) checkCooldown(guildID, userID int64, command string, cooldown time.Duration) time.Duration {
	if cooldown == 0 {
		return 0
	}

	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()

	key := cooldownKey{guildID: guildID, userID: userID, command: command}
	now := time.Now()
	if last, ok := b.cooldowns[key]; ok {
		if remaining := cooldown - now.Sub(last); remaining > 0 {
			return remaining
		}
	}
	b.cooldowns[key] = now
	return 0
}

// handleInteractions routes component interactions and modal submits
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var customID string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		customID = i.ModalSubmitData().CustomID
	default:
		return
	}

	switch {
	case strings.HasPrefix(customID, "setup_"):
		// Wizard components live on an ephemeral admin-only message,
		// but re-check: custom IDs are client-supplied
		if !common.MemberIsAdmin(i.Member) {
			common.RespondWithError(s, i, "This command is for server administrators.")
			return
		}
		b.admin.HandleInteraction(s, i)
	}
}
