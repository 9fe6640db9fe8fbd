package application

import (
	"context"
	"errors"

	"sattbot/domain/interfaces"
)

// UnitOfWork provides transactional access to the repositories. All
// repository operations within one unit share a single transaction.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction. Safe to call after Commit.
	Rollback() error

	// GuildConfigRepository returns the guild config repository for this unit of work
	GuildConfigRepository() interfaces.GuildConfigRepository

	// CommandAccessRepository returns the command access repository for this unit of work
	CommandAccessRepository() interfaces.CommandAccessRepository

	// FeedItemRepository returns the feed item repository for this unit of work
	FeedItemRepository() interfaces.FeedItemRepository

	// PendingRevealRepository returns the pending reveal repository for this unit of work
	PendingRevealRepository() interfaces.PendingRevealRepository
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// FetchedItem is one entry pulled from an upstream feed, before
// dedup against the store
type FetchedItem struct {
	Title       string
	Link        string
	Description string
	Published   string
}

// FeedFetcher pulls entries from an upstream feed URL
type FeedFetcher interface {
	// Fetch returns the feed's current entries. Failures degrade to an
	// empty slice with the error; callers treat an empty fetch as a
	// no-op cycle.
	Fetch(ctx context.Context, url string) ([]FetchedItem, error)
}

// FeedPoster delivers pipeline output to a destination channel
type FeedPoster interface {
	// PostNewsItem posts a single news entry
	PostNewsItem(ctx context.Context, channelID int64, title, link, description string) error

	// PostNewsBatch posts up to a handful of entries as one message
	PostNewsBatch(ctx context.Context, channelID int64, items []NewsEntry) error

	// PostQuestion posts a QOTD question and returns the message ID of
	// the posted poll for later reveal threading
	PostQuestion(ctx context.Context, channelID int64, question string) (int64, error)

	// PostReveal posts the answer. When replyToMessageID is still
	// present the reveal is threaded as a reply; implementations fall
	// back to a standalone message when the original is gone.
	PostReveal(ctx context.Context, channelID, replyToMessageID int64, question, answer string) error
}

// NewsEntry is the posting-side view of a feed item
type NewsEntry struct {
	Title       string
	Link        string
	Description string
}

// ErrAIUnavailable is returned when no AI backend is configured or
// the backend cannot be reached
var ErrAIUnavailable = errors.New("ai backend unavailable")

// AIClient generates text completions
type AIClient interface {
	// Complete runs a single-turn completion against the given model.
	// model may be empty to use the client's default.
	Complete(ctx context.Context, model, system, prompt string) (string, error)
}
