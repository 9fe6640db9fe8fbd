package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ScanChannelMessages pages backwards through a channel's history and
// returns up to limit messages, newest first. Discord caps each page
// at 100 messages.
func ScanChannelMessages(s *discordgo.Session, channelID string, limit int) ([]*discordgo.Message, error) {
	var messages []*discordgo.Message
	beforeID := ""

	for len(messages) < limit {
		pageSize := limit - len(messages)
		if pageSize > 100 {
			pageSize = 100
		}

		page, err := s.ChannelMessages(channelID, pageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel %s: %w", channelID, err)
		}
		if len(page) == 0 {
			break
		}

		messages = append(messages, page...)
		beforeID = page[len(page)-1].ID
	}

	return messages, nil
}
