package feeds

import (
	"context"
	"fmt"
	"strings"

	"sattbot/application"
	"sattbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// descriptionLimit keeps embed bodies well under Discord's cap
const descriptionLimit = 500

// Poster delivers pipeline output through the Discord session. It
// implements the application.FeedPoster interface.
type Poster struct {
	session *discordgo.Session
}

// NewPoster creates a new poster bound to a session
func NewPoster(session *discordgo.Session) *Poster {
	return &Poster{session: session}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func newsEmbed(title, link, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       truncate(title, 256),
		URL:         link,
		Description: truncate(description, descriptionLimit),
		Color:       0x5865F2,
	}
}

// PostNewsItem posts a single news entry
func (p *Poster) PostNewsItem(ctx context.Context, channelID int64, title, link, description string) error {
	_, err := p.session.ChannelMessageSendEmbed(common.FormatID(channelID), newsEmbed(title, link, description))
	if err != nil {
		return fmt.Errorf("failed to post news item to channel %d: %w", channelID, err)
	}
	return nil
}

// PostNewsBatch posts a digest of entries as one embed
func (p *Poster) PostNewsBatch(ctx context.Context, channelID int64, items []application.NewsEntry) error {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(fmt.Sprintf("**[%s](%s)**\n", truncate(item.Title, 200), item.Link))
		if item.Description != "" {
			b.WriteString(truncate(item.Description, 200))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📰 Daily News",
		Description: b.String(),
		Color:       0x5865F2,
	}
	_, err := p.session.ChannelMessageSendEmbed(common.FormatID(channelID), embed)
	if err != nil {
		return fmt.Errorf("failed to post news batch to channel %d: %w", channelID, err)
	}
	return nil
}

// PostQuestion posts a QOTD and returns the posted message's ID
func (p *Poster) PostQuestion(ctx context.Context, channelID int64, question string) (int64, error) {
	embed := &discordgo.MessageEmbed{
		Title:       "❓ Question of the Day",
		Description: question,
		Footer:      &discordgo.MessageEmbedFooter{Text: "The answer will be revealed later today"},
		Color:       0xEB459E,
	}
	msg, err := p.session.ChannelMessageSendEmbed(common.FormatID(channelID), embed)
	if err != nil {
		return 0, fmt.Errorf("failed to post question to channel %d: %w", channelID, err)
	}

	messageID, err := common.ParseID(msg.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to parse posted message ID %s: %w", msg.ID, err)
	}
	return messageID, nil
}

// PostReveal posts the answer as a reply to the original question.
// When the original message is gone the reveal goes out standalone
// with the question restated.
func (p *Poster) PostReveal(ctx context.Context, channelID, replyToMessageID int64, question, answer string) error {
	channel := common.FormatID(channelID)

	embed := &discordgo.MessageEmbed{
		Title:       "💡 Answer Reveal",
		Description: answer,
		Color:       0xEB459E,
	}

	_, err := p.session.ChannelMessageSendComplex(channel, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Reference: &discordgo.MessageReference{
			MessageID: common.FormatID(replyToMessageID),
			ChannelID: channel,
		},
	})
	if err == nil {
		return nil
	}

	log.WithFields(log.Fields{
		"channel": channelID,
		"message": replyToMessageID,
		"error":   err,
	}).Warn("Reply to original question failed, posting standalone reveal")

	embed.Description = fmt.Sprintf("**Q:** %s\n**A:** %s", question, answer)
	if _, err := p.session.ChannelMessageSendEmbed(channel, embed); err != nil {
		return fmt.Errorf("failed to post reveal to channel %d: %w", channelID, err)
	}
	return nil
}
