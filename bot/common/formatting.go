package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatCount formats a count with thousand separators
func FormatCount(count int64) string {
	str := fmt.Sprintf("%d", count)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration formats a duration in a human-readable format
// Examples: "2d 14h 30m", "3h 45m", "45m", "1m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}

// FormatLeaderboard renders a ranked list of user mentions with counts.
// The top three get medal emoji, the rest a numbered place.
func FormatLeaderboard(userIDs []int64, counts []int64) string {
	medals := []string{"🥇", "🥈", "🥉"}

	var b strings.Builder
	for i, userID := range userIDs {
		if i < len(medals) {
			b.WriteString(medals[i])
		} else {
			b.WriteString(fmt.Sprintf("%d.", i+1))
		}
		b.WriteString(fmt.Sprintf(" %s — %s messages\n", GetUserMention(userID), FormatCount(counts[i])))
	}
	return b.String()
}

// FormatMentionList renders user mentions one per line, capped at max
// with a trailing overflow note
func FormatMentionList(userIDs []int64, max int) string {
	var b strings.Builder
	for i, userID := range userIDs {
		if i >= max {
			b.WriteString(fmt.Sprintf("...and %d more\n", len(userIDs)-max))
			break
		}
		b.WriteString(GetUserMention(userID))
		b.WriteString("\n")
	}
	return b.String()
}
