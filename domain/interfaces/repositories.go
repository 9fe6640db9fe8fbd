package interfaces

import (
	"context"
	"time"

	"sattbot/domain/entities"
)

// GuildConfigRepository manages per-guild configuration rows
type GuildConfigRepository interface {
	// GetOrCreate retrieves guild config or inserts default values if not found
	GetOrCreate(ctx context.Context, guildID int64) (*entities.GuildConfig, error)

	// Get retrieves guild config, returning nil when the guild is unknown
	Get(ctx context.Context, guildID int64) (*entities.GuildConfig, error)

	// Update persists all mutable fields of the config
	Update(ctx context.Context, config *entities.GuildConfig) error

	// Delete purges the guild's config row
	Delete(ctx context.Context, guildID int64) error

	// ListNewsTargets returns all guilds with a configured news channel
	ListNewsTargets(ctx context.Context) ([]entities.FeedTarget, error)

	// ListQOTDTargets returns all guilds with a configured QOTD channel
	ListQOTDTargets(ctx context.Context) ([]entities.FeedTarget, error)
}

// CommandAccessRepository manages explicit access entries and role grants
type CommandAccessRepository interface {
	// GetAccess returns the explicit access entry for (guild, command).
	// The boolean is false when no explicit entry exists.
	GetAccess(ctx context.Context, guildID int64, command string) (entities.AccessLevel, bool, error)

	// SetAccess upserts the explicit access entry for (guild, command)
	SetAccess(ctx context.Context, guildID int64, command string, access entities.AccessLevel) error

	// SeedDefaults inserts the static default table for a guild,
	// leaving existing explicit entries untouched
	SeedDefaults(ctx context.Context, guildID int64, defaults map[string]entities.AccessLevel) error

	// ListAccess returns all explicit access entries for a guild
	ListAccess(ctx context.Context, guildID int64) (map[string]entities.AccessLevel, error)

	// GetGrants returns the role IDs granted for (guild, command)
	GetGrants(ctx context.Context, guildID int64, command string) ([]int64, error)

	// AddGrant records a role grant; adding an existing grant is a no-op
	AddGrant(ctx context.Context, guildID int64, command string, roleID int64) error

	// RemoveGrant removes a role grant
	RemoveGrant(ctx context.Context, guildID int64, command string, roleID int64) error

	// ListGrants returns all role grants for a guild keyed by command
	ListGrants(ctx context.Context, guildID int64) (map[string][]int64, error)

	// DeleteGuild purges all access entries and grants for a guild
	DeleteGuild(ctx context.Context, guildID int64) error
}

// FeedItemRepository manages the append-only feed item log
type FeedItemRepository interface {
	// StoreItems inserts items whose (guild_id, link) key is new and
	// silently skips duplicates. Returns the number of new rows.
	StoreItems(ctx context.Context, guildID int64, items []*entities.FeedItem) (int, error)

	// ListRecent returns items fetched at or after the given time,
	// newest first
	ListRecent(ctx context.Context, guildID int64, since time.Time) ([]*entities.FeedItem, error)

	// DeleteOlderThan removes items fetched before the cutoff across
	// all guilds. Returns the number of rows deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteGuild purges all feed items for a guild
	DeleteGuild(ctx context.Context, guildID int64) error
}

// PendingRevealRepository manages scheduled poll answer reveals
type PendingRevealRepository interface {
	// Create records a newly posted poll awaiting reveal
	Create(ctx context.Context, reveal *entities.PendingReveal) error

	// ListDue returns unrevealed rows whose reveal_at is at or before now
	ListDue(ctx context.Context, now time.Time) ([]*entities.PendingReveal, error)

	// MarkRevealed flips the revealed flag. Marking an already revealed
	// row is a no-op.
	MarkRevealed(ctx context.Context, id int64) error

	// DeleteRevealedOlderThan removes revealed rows created before the
	// cutoff across all guilds. Returns the number of rows deleted.
	DeleteRevealedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteGuild purges all pending reveals for a guild
	DeleteGuild(ctx context.Context, guildID int64) error
}

// EventPublisher publishes domain events to interested subscribers
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event any) error
}
