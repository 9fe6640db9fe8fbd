package repository

import (
	"context"
	"fmt"

	"sattbot/database"
	"sattbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CommandAccessRepository implements the CommandAccessRepository interface
type CommandAccessRepository struct {
	q Queryable
}

// NewCommandAccessRepository creates a new command access repository
func NewCommandAccessRepository(db *database.DB) *CommandAccessRepository {
	return &CommandAccessRepository{q: db.Pool}
}

// NewCommandAccessRepositoryWithTx creates a new command access repository with a transaction
func NewCommandAccessRepositoryWithTx(tx Queryable) *CommandAccessRepository {
	return &CommandAccessRepository{q: tx}
}

// GetAccess returns the explicit access entry for (guild, command).
// The boolean is false when no explicit entry exists.
func (r *CommandAccessRepository) GetAccess(ctx context.Context, guildID int64, command string) (entities.AccessLevel, bool, error) {
	query := `
		SELECT access
		FROM command_access
		WHERE guild_id = $1 AND command = $2
	`

	var access entities.AccessLevel
	err := r.q.QueryRow(ctx, query, guildID, command).Scan(&access)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get access for command %s in guild %d: %w", command, guildID, err)
	}
	return access, true, nil
}

// SetAccess upserts the explicit access entry for (guild, command)
func (r *CommandAccessRepository) SetAccess(ctx context.Context, guildID int64, command string, access entities.AccessLevel) error {
	query := `
		INSERT INTO command_access (guild_id, command, access)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, command) DO UPDATE SET access = EXCLUDED.access
	`

	if _, err := r.q.Exec(ctx, query, guildID, command, access); err != nil {
		return fmt.Errorf("failed to set access for command %s in guild %d: %w", command, guildID, err)
	}
	return nil
}

// SeedDefaults inserts the static default table for a guild, leaving
// existing explicit entries untouched
func (r *CommandAccessRepository) SeedDefaults(ctx context.Context, guildID int64, defaults map[string]entities.AccessLevel) error {
	query := `
		INSERT INTO command_access (guild_id, command, access)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, command) DO NOTHING
	`

	for command, access := range defaults {
		if _, err := r.q.Exec(ctx, query, guildID, command, access); err != nil {
			return fmt.Errorf("failed to seed access for command %s in guild %d: %w", command, guildID, err)
		}
	}
	return nil
}

// ListAccess returns all explicit access entries for a guild
func (r *CommandAccessRepository) ListAccess(ctx context.Context, guildID int64) (map[string]entities.AccessLevel, error) {
	query := `
		SELECT command, access
		FROM command_access
		WHERE guild_id = $1
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access entries for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	access := make(map[string]entities.AccessLevel)
	for rows.Next() {
		var command string
		var level entities.AccessLevel
		if err := rows.Scan(&command, &level); err != nil {
			return nil, fmt.Errorf("failed to scan access entry: %w", err)
		}
		access[command] = level
	}
	return access, rows.Err()
}

// GetGrants returns the role IDs granted for (guild, command)
func (r *CommandAccessRepository) GetGrants(ctx context.Context, guildID int64, command string) ([]int64, error) {
	query := `
		SELECT role_id
		FROM command_role_grants
		WHERE guild_id = $1 AND command = $2
		ORDER BY role_id
	`

	rows, err := r.q.Query(ctx, query, guildID, command)
	if err != nil {
		return nil, fmt.Errorf("failed to get grants for command %s in guild %d: %w", command, guildID, err)
	}
	defer rows.Close()

	grants := []int64{}
	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		grants = append(grants, roleID)
	}
	return grants, rows.Err()
}

// AddGrant records a role grant; adding an existing grant is a no-op
func (r *CommandAccessRepository) AddGrant(ctx context.Context, guildID int64, command string, roleID int64) error {
	query := `
		INSERT INTO command_role_grants (guild_id, command, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, command, role_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, guildID, command, roleID); err != nil {
		return fmt.Errorf("failed to add grant for command %s in guild %d: %w", command, guildID, err)
	}
	return nil
}

// RemoveGrant removes a role grant
func (r *CommandAccessRepository) RemoveGrant(ctx context.Context, guildID int64, command string, roleID int64) error {
	query := `
		DELETE FROM command_role_grants
		WHERE guild_id = $1 AND command = $2 AND role_id = $3
	`

	if _, err := r.q.Exec(ctx, query, guildID, command, roleID); err != nil {
		return fmt.Errorf("failed to remove grant for command %s in guild %d: %w", command, guildID, err)
	}
	return nil
}

// ListGrants returns all role grants for a guild keyed by command
func (r *CommandAccessRepository) ListGrants(ctx context.Context, guildID int64) (map[string][]int64, error) {
	query := `
		SELECT command, role_id
		FROM command_role_grants
		WHERE guild_id = $1
		ORDER BY command, role_id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	grants := make(map[string][]int64)
	for rows.Next() {
		var command string
		var roleID int64
		if err := rows.Scan(&command, &roleID); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		grants[command] = append(grants[command], roleID)
	}
	return grants, rows.Err()
}

// DeleteGuild purges all access entries and grants for a guild
func (r *CommandAccessRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM command_role_grants WHERE guild_id = $1`, guildID); err != nil {
		return fmt.Errorf("failed to delete role grants for guild %d: %w", guildID, err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM command_access WHERE guild_id = $1`, guildID); err != nil {
		return fmt.Errorf("failed to delete access entries for guild %d: %w", guildID, err)
	}
	return nil
}
