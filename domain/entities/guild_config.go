package entities

import "time"

// Default values applied when a guild is first seen.
const (
	DefaultSpamMaxMsgs  = 10
	DefaultSpamMuteSecs = 60
	DefaultScanLimit    = 1000
	DefaultNukeDays     = 60
	DefaultAIModel      = "google/gemini-2.5-flash"
)

// GuildConfig represents per-guild configuration settings
type GuildConfig struct {
	GuildID       int64  `db:"guild_id"`
	SpamMaxMsgs   int    `db:"spam_max_msgs"`
	SpamMuteSecs  int    `db:"spam_mute_secs"`
	ScanLimit     int    `db:"scan_limit"`
	NukeDays      int    `db:"nuke_days"`
	AIModel       string `db:"ai_model"`
	SetupComplete bool   `db:"setup_complete"`
	NewsChannelID *int64 `db:"news_channel_id"` // Nullable - channel for daily news posts
	QOTDChannelID *int64 `db:"qotd_channel_id"` // Nullable - channel for QOTD polls

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasNewsChannel checks if a daily news channel is configured
func (gc *GuildConfig) HasNewsChannel() bool {
	return gc.NewsChannelID != nil && *gc.NewsChannelID > 0
}

// HasQOTDChannel checks if a QOTD channel is configured
func (gc *GuildConfig) HasQOTDChannel() bool {
	return gc.QOTDChannelID != nil && *gc.QOTDChannelID > 0
}

// SetNewsChannel sets the daily news channel ID
func (gc *GuildConfig) SetNewsChannel(channelID *int64) {
	gc.NewsChannelID = channelID
}

// SetQOTDChannel sets the QOTD channel ID
func (gc *GuildConfig) SetQOTDChannel(channelID *int64) {
	gc.QOTDChannelID = channelID
}

// FeedTarget is a guild with a configured destination channel for
// scheduled feed posts
type FeedTarget struct {
	GuildID   int64 `db:"guild_id"`
	ChannelID int64 `db:"channel_id"`
}
