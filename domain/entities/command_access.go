package entities

// AccessLevel is the per-command visibility policy for a guild
type AccessLevel string

const (
	AccessPublic     AccessLevel = "public"
	AccessAdminOnly  AccessLevel = "admin_only"
	AccessRestricted AccessLevel = "restricted"
)

// IsValid reports whether the level is one of the known access levels
func (a AccessLevel) IsValid() bool {
	switch a {
	case AccessPublic, AccessAdminOnly, AccessRestricted:
		return true
	}
	return false
}

// CommandAccessEntry is an explicit per-guild access level for a command
type CommandAccessEntry struct {
	GuildID int64       `db:"guild_id"`
	Command string      `db:"command"`
	Access  AccessLevel `db:"access"`
}

// CommandRoleGrant marks a role as qualifying for a restricted command
type CommandRoleGrant struct {
	GuildID int64  `db:"guild_id"`
	Command string `db:"command"`
	RoleID  int64  `db:"role_id"`
}

// DefaultCommandAccess is the static default access table. Explicit
// entries in the store override it; commands absent from this table
// default to public.
var DefaultCommandAccess = map[string]AccessLevel{
	"help":         AccessPublic,
	"ping":         AccessPublic,
	"meme":         AccessPublic,
	"roastme":      AccessPublic,
	"topchatter":   AccessPublic,
	"inactive":     AccessAdminOnly,
	"nuke":         AccessAdminOnly,
	"dailynews":    AccessPublic,
	"qotd":         AccessPublic,
	"qotd-channel": AccessAdminOnly,
	"rss-channel":  AccessAdminOnly,
	"rss-fetch":    AccessAdminOnly,
}

// StaticDefaultAccess returns the static default for a command,
// falling back to public for commands the table does not know.
func StaticDefaultAccess(command string) AccessLevel {
	if access, ok := DefaultCommandAccess[command]; ok {
		return access
	}
	return AccessPublic
}
