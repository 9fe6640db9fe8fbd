package entities

import "time"

// RevealDelay is how long a QOTD poll stays open before the answer is revealed
const RevealDelay = 8 * time.Hour

// PendingReveal is a posted QOTD poll awaiting its answer disclosure.
// The revealed flag transitions exactly once from false to true.
type PendingReveal struct {
	ID            int64     `db:"id"`
	GuildID       int64     `db:"guild_id"`
	ChannelID     int64     `db:"channel_id"`
	MessageID     int64     `db:"message_id"`
	Question      string    `db:"question"`
	AnswerPayload []byte    `db:"answer_payload"` // JSON-encoded feed item the answer is built from
	RevealAt      time.Time `db:"reveal_at"`
	Revealed      bool      `db:"revealed"`
	CreatedAt     time.Time `db:"created_at"`
}

// TruncatedQuestion returns the question cut to max runes, for the
// standalone reveal fallback when the original poll message is gone
func (p *PendingReveal) TruncatedQuestion(max int) string {
	runes := []rune(p.Question)
	if len(runes) <= max {
		return p.Question
	}
	return string(runes[:max]) + "..."
}
