package common

import (
	"strconv"

	"sattbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// GetRoleMention returns a Discord mention string for a role
func GetRoleMention(roleID int64) string {
	return "<@&" + FormatID(roleID) + ">"
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to username when no nickname is set.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// MemberIsAdmin checks the administrator bit on an interaction member's
// resolved permissions
func MemberIsAdmin(member *discordgo.Member) bool {
	return member != nil && member.Permissions&discordgo.PermissionAdministrator != 0
}

// ActorFromInteraction builds the permission actor for a command
// invocation. A DM interaction yields an actor with no guild.
func ActorFromInteraction(i *discordgo.InteractionCreate) services.Actor {
	if i.Member == nil || i.Member.User == nil {
		var userID int64
		if i.User != nil {
			userID, _ = ParseID(i.User.ID)
		}
		return services.Actor{UserID: userID}
	}

	userID, err := ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", i.Member.User.ID, err)
	}
	guildID, err := ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", i.GuildID, err)
	}

	roleIDs := make([]int64, 0, len(i.Member.Roles))
	for _, role := range i.Member.Roles {
		roleID, err := ParseID(role)
		if err != nil {
			continue
		}
		roleIDs = append(roleIDs, roleID)
	}

	return services.Actor{
		UserID:  userID,
		GuildID: guildID,
		RoleIDs: roleIDs,
		IsAdmin: MemberIsAdmin(i.Member),
	}
}
