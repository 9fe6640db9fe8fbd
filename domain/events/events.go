package events

import "time"

// NATS subjects for published domain events.
const (
	SubjectUserMuted  = "sattbot.moderation.muted"
	SubjectFeedPosted = "sattbot.feeds.posted"
)

// UserMutedEvent is emitted after a spam mute has been applied
type UserMutedEvent struct {
	GuildID      int64     `json:"guild_id"`
	UserID       int64     `json:"user_id"`
	Until        time.Time `json:"until"`
	MessageCount int       `json:"message_count"`
}

// FeedPostedEvent is emitted after a pipeline post reaches a channel
type FeedPostedEvent struct {
	GuildID   int64  `json:"guild_id"`
	ChannelID int64  `json:"channel_id"`
	Kind      string `json:"kind"` // "news" or "qotd"
	ItemCount int    `json:"item_count"`
}
