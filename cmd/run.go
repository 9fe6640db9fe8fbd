package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"sattbot/application"
	"sattbot/bot"
	"sattbot/config"
	"sattbot/database"
	"sattbot/domain/interfaces"
	"sattbot/infrastructure"
	"sattbot/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting sattbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Apply pending migrations on startup
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations applied")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize event publishing; without NATS events are logged and dropped
	var eventPublisher interfaces.EventPublisher
	var natsPublisher *infrastructure.NATSEventPublisher
	if cfg.NATSServers != "" {
		log.Printf("Connecting to NATS at %s...", cfg.NATSServers)
		natsPublisher, err = infrastructure.NewNATSEventPublisher(cfg.NATSServers)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		eventPublisher = natsPublisher
	} else {
		log.Println("NATS_SERVERS not set, event publishing disabled")
		eventPublisher = infrastructure.NewNoopEventPublisher()
	}

	// External providers
	memeClient := infrastructure.NewMemeClient(cfg.HumorAPIKey, cfg.HumorAPIURL)
	aiClient := infrastructure.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.DefaultAIModel)
	fetcher := infrastructure.NewRSSFetcher()

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken}, uowFactory, eventPublisher, memeClient, aiClient)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// The feed pipeline posts through the bot's session
	pipeline := application.NewFeedPipeline(
		uowFactory,
		fetcher,
		discordBot.GetFeedPoster(),
		aiClient,
		eventPublisher,
		cfg.NewsFeedURL,
		cfg.QOTDFeedURL,
		cfg.DefaultAIModel,
	)
	discordBot.SetFeedPipeline(pipeline)

	// Start background workers
	stopDailyNews := pipeline.StartDailyNewsWorker(ctx, cfg.DailyPostHour)
	stopDailyPoll := pipeline.StartDailyPollWorker(ctx, cfg.DailyPostHour)
	stopRevealCheck := pipeline.StartRevealCheckWorker(ctx)
	stopRetention := pipeline.StartRetentionWorker(ctx)
	log.Println("Background workers started")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	stopDailyNews()
	stopDailyPoll()
	stopRevealCheck()
	stopRetention()
	log.Println("Background workers stopped")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	if natsPublisher != nil {
		natsPublisher.Close()
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
