package repository

import (
	"context"
	"fmt"
	"time"

	"sattbot/database"
	"sattbot/domain/entities"
)

// PendingRevealRepository implements the PendingRevealRepository interface
type PendingRevealRepository struct {
	q Queryable
}

// NewPendingRevealRepository creates a new pending reveal repository
func NewPendingRevealRepository(db *database.DB) *PendingRevealRepository {
	return &PendingRevealRepository{q: db.Pool}
}

// NewPendingRevealRepositoryWithTx creates a new pending reveal repository with a transaction
func NewPendingRevealRepositoryWithTx(tx Queryable) *PendingRevealRepository {
	return &PendingRevealRepository{q: tx}
}

// Create records a newly posted poll awaiting reveal
func (r *PendingRevealRepository) Create(ctx context.Context, reveal *entities.PendingReveal) error {
	query := `
		INSERT INTO pending_reveals (guild_id, channel_id, message_id, question, answer_payload, reveal_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, revealed, created_at
	`

	err := r.q.QueryRow(ctx, query,
		reveal.GuildID,
		reveal.ChannelID,
		reveal.MessageID,
		reveal.Question,
		reveal.AnswerPayload,
		reveal.RevealAt,
	).Scan(&reveal.ID, &reveal.Revealed, &reveal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pending reveal for guild %d: %w", reveal.GuildID, err)
	}
	return nil
}

// ListDue returns unrevealed rows whose reveal_at is at or before now
func (r *PendingRevealRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.PendingReveal, error) {
	query := `
		SELECT id, guild_id, channel_id, message_id, question, answer_payload, reveal_at, revealed, created_at
		FROM pending_reveals
		WHERE NOT revealed AND reveal_at <= $1
		ORDER BY reveal_at
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reveals: %w", err)
	}
	defer rows.Close()

	var reveals []*entities.PendingReveal
	for rows.Next() {
		var reveal entities.PendingReveal
		err := rows.Scan(
			&reveal.ID,
			&reveal.GuildID,
			&reveal.ChannelID,
			&reveal.MessageID,
			&reveal.Question,
			&reveal.AnswerPayload,
			&reveal.RevealAt,
			&reveal.Revealed,
			&reveal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending reveal: %w", err)
		}
		reveals = append(reveals, &reveal)
	}
	return reveals, rows.Err()
}

// MarkRevealed flips the revealed flag. Marking an already revealed
// row is a no-op.
func (r *PendingRevealRepository) MarkRevealed(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `UPDATE pending_reveals SET revealed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark reveal %d: %w", id, err)
	}
	return nil
}

// DeleteRevealedOlderThan removes revealed rows created before the
// cutoff across all guilds. Returns the number of rows deleted.
func (r *PendingRevealRepository) DeleteRevealedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM pending_reveals WHERE revealed AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete revealed polls older than %s: %w", cutoff, err)
	}
	return result.RowsAffected(), nil
}

// DeleteGuild purges all pending reveals for a guild
func (r *PendingRevealRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM pending_reveals WHERE guild_id = $1`, guildID); err != nil {
		return fmt.Errorf("failed to delete pending reveals for guild %d: %w", guildID, err)
	}
	return nil
}
