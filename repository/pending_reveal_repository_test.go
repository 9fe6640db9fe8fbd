package repository

import (
	"context"
	"testing"
	"time"

	"sattbot/domain/entities"
	"sattbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingPoll(guildID int64, question string, revealAt time.Time) *entities.PendingReveal {
	return &entities.PendingReveal{
		GuildID:       guildID,
		ChannelID:     555,
		MessageID:     777,
		Question:      question,
		AnswerPayload: []byte(`{"answer":"42"}`),
		RevealAt:      revealAt,
	}
}

func TestPendingRevealRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPendingRevealRepository(testDB.DB)
	ctx := context.Background()

	reveal := pendingPoll(1000, "What is the answer?", time.Now().Add(entities.RevealDelay))
	require.NoError(t, repo.Create(ctx, reveal))

	assert.NotZero(t, reveal.ID)
	assert.False(t, reveal.Revealed)
	assert.False(t, reveal.CreatedAt.IsZero())
}

func TestPendingRevealRepository_ListDue(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPendingRevealRepository(testDB.DB)
	ctx := context.Background()

	now := time.Now()

	due := pendingPoll(1000, "due", now.Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, due))
	future := pendingPoll(1000, "future", now.Add(entities.RevealDelay))
	require.NoError(t, repo.Create(ctx, future))
	alreadyRevealed := pendingPoll(1000, "done", now.Add(-2*time.Hour))
	require.NoError(t, repo.Create(ctx, alreadyRevealed))
	require.NoError(t, repo.MarkRevealed(ctx, alreadyRevealed.ID))

	reveals, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, reveals, 1)
	assert.Equal(t, due.ID, reveals[0].ID)
	assert.Equal(t, "due", reveals[0].Question)
	assert.JSONEq(t, `{"answer":"42"}`, string(reveals[0].AnswerPayload))
}

func TestPendingRevealRepository_MarkRevealed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPendingRevealRepository(testDB.DB)
	ctx := context.Background()

	reveal := pendingPoll(1000, "q", time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, reveal))

	require.NoError(t, repo.MarkRevealed(ctx, reveal.ID))
	// Marking twice is a no-op
	require.NoError(t, repo.MarkRevealed(ctx, reveal.ID))

	reveals, err := repo.ListDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, reveals)
}

func TestPendingRevealRepository_DeleteRevealedOlderThan(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPendingRevealRepository(testDB.DB)
	ctx := context.Background()

	oldRevealed := pendingPoll(1000, "old revealed", time.Now().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, oldRevealed))
	require.NoError(t, repo.MarkRevealed(ctx, oldRevealed.ID))

	oldUnrevealed := pendingPoll(1000, "old unrevealed", time.Now().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, oldUnrevealed))

	freshRevealed := pendingPoll(1000, "fresh revealed", time.Now().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, freshRevealed))
	require.NoError(t, repo.MarkRevealed(ctx, freshRevealed.ID))

	// Age the first two rows past the cutoff
	_, err := testDB.DB.Exec(ctx,
		`UPDATE pending_reveals SET created_at = NOW() - INTERVAL '8 days' WHERE question LIKE 'old%'`)
	require.NoError(t, err)

	deleted, err := repo.DeleteRevealedOlderThan(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	// Unrevealed rows are kept regardless of age
	assert.Equal(t, int64(1), deleted)

	reveals, err := repo.ListDue(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, reveals, 1)
	assert.Equal(t, oldUnrevealed.ID, reveals[0].ID)
}

func TestPendingRevealRepository_DeleteGuild(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPendingRevealRepository(testDB.DB)
	ctx := context.Background()

	mine := pendingPoll(1000, "mine", time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, mine))
	other := pendingPoll(2000, "other", time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, other))

	require.NoError(t, repo.DeleteGuild(ctx, 1000))

	reveals, err := repo.ListDue(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, reveals, 1)
	assert.Equal(t, other.ID, reveals[0].ID)
}
