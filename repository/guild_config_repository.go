package repository

import (
	"context"
	"fmt"

	"sattbot/database"
	"sattbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository implements the GuildConfigRepository interface
type GuildConfigRepository struct {
	q Queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{q: db.Pool}
}

// NewGuildConfigRepositoryWithTx creates a new guild config repository with a transaction
func NewGuildConfigRepositoryWithTx(tx Queryable) *GuildConfigRepository {
	return &GuildConfigRepository{q: tx}
}

const guildConfigColumns = `guild_id, spam_max_msgs, spam_mute_secs, scan_limit, nuke_days,
		ai_model, setup_complete, news_channel_id, qotd_channel_id, created_at, updated_at`

func scanGuildConfig(row pgx.Row) (*entities.GuildConfig, error) {
	var config entities.GuildConfig
	err := row.Scan(
		&config.GuildID,
		&config.SpamMaxMsgs,
		&config.SpamMuteSecs,
		&config.ScanLimit,
		&config.NukeDays,
		&config.AIModel,
		&config.SetupComplete,
		&config.NewsChannelID,
		&config.QOTDChannelID,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetOrCreate retrieves guild config or inserts a row with column
// defaults if the guild is not yet known
func (r *GuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM guild_configs
		WHERE guild_id = $1
	`, guildConfigColumns)

	config, err := scanGuildConfig(r.q.QueryRow(ctx, query, guildID))
	if err == nil {
		return config, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild config for guild %d: %w", guildID, err)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO guild_configs (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING %s
	`, guildConfigColumns)

	config, err = scanGuildConfig(r.q.QueryRow(ctx, insertQuery, guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild config for guild %d: %w", guildID, err)
	}
	return config, nil
}

// Get retrieves guild config, returning nil when the guild is unknown
func (r *GuildConfigRepository) Get(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM guild_configs
		WHERE guild_id = $1
	`, guildConfigColumns)

	config, err := scanGuildConfig(r.q.QueryRow(ctx, query, guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config for guild %d: %w", guildID, err)
	}
	return config, nil
}

// Update persists all mutable fields of the config
func (r *GuildConfigRepository) Update(ctx context.Context, config *entities.GuildConfig) error {
	query := `
		UPDATE guild_configs
		SET spam_max_msgs = $2,
		    spam_mute_secs = $3,
		    scan_limit = $4,
		    nuke_days = $5,
		    ai_model = $6,
		    setup_complete = $7,
		    news_channel_id = $8,
		    qotd_channel_id = $9,
		    updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		config.GuildID,
		config.SpamMaxMsgs,
		config.SpamMuteSecs,
		config.ScanLimit,
		config.NukeDays,
		config.AIModel,
		config.SetupComplete,
		config.NewsChannelID,
		config.QOTDChannelID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild config for guild %d: %w", config.GuildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild config for guild %d not found", config.GuildID)
	}
	return nil
}

// Delete purges the guild's config row
func (r *GuildConfigRepository) Delete(ctx context.Context, guildID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM guild_configs WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete guild config for guild %d: %w", guildID, err)
	}
	return nil
}

func (r *GuildConfigRepository) listTargets(ctx context.Context, column string) ([]entities.FeedTarget, error) {
	query := fmt.Sprintf(`
		SELECT guild_id, %s
		FROM guild_configs
		WHERE %s IS NOT NULL
		ORDER BY guild_id
	`, column, column)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s targets: %w", column, err)
	}
	defer rows.Close()

	var targets []entities.FeedTarget
	for rows.Next() {
		var target entities.FeedTarget
		if err := rows.Scan(&target.GuildID, &target.ChannelID); err != nil {
			return nil, fmt.Errorf("failed to scan feed target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// ListNewsTargets returns all guilds with a configured news channel
func (r *GuildConfigRepository) ListNewsTargets(ctx context.Context) ([]entities.FeedTarget, error) {
	return r.listTargets(ctx, "news_channel_id")
}

// ListQOTDTargets returns all guilds with a configured QOTD channel
func (r *GuildConfigRepository) ListQOTDTargets(ctx context.Context) ([]entities.FeedTarget, error) {
	return r.listTargets(ctx, "qotd_channel_id")
}
