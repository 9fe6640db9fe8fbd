package services

import (
	"context"
	"fmt"

	"sattbot/domain/entities"
	"sattbot/domain/interfaces"
)

// Actor describes the invoker of a command as seen by the platform
type Actor struct {
	UserID  int64
	GuildID int64 // 0 when the invocation is not in a guild context (DM)
	RoleIDs []int64
	IsAdmin bool // guild administrator capability
}

// InGuild reports whether the actor is operating in a guild context
func (a Actor) InGuild() bool {
	return a.GuildID != 0
}

// PermissionService evaluates whether an actor may invoke a command.
// Resolution always re-reads store state so access changes take effect
// immediately; results are never cached.
type PermissionService struct {
	accessRepo interfaces.CommandAccessRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(accessRepo interfaces.CommandAccessRepository) *PermissionService {
	return &PermissionService{accessRepo: accessRepo}
}

// Resolve evaluates the layered access policy for (guild, command, actor).
// Evaluation order, first match wins:
//  1. no guild context -> deny
//  2. guild administrator -> allow
//  3. effective access level (explicit entry, else static default)
//  4. public -> allow, admin_only -> deny, restricted -> role intersection
func (s *PermissionService) Resolve(ctx context.Context, command string, actor Actor) (bool, error) {
	if !actor.InGuild() {
		return false, nil
	}

	if actor.IsAdmin {
		return true, nil
	}

	access, explicit, err := s.accessRepo.GetAccess(ctx, actor.GuildID, command)
	if err != nil {
		return false, fmt.Errorf("failed to resolve access for command %s: %w", command, err)
	}
	if !explicit {
		access = entities.StaticDefaultAccess(command)
	}

	switch access {
	case entities.AccessPublic:
		return true, nil

	case entities.AccessAdminOnly:
		// Administrators were already allowed above
		return false, nil

	case entities.AccessRestricted:
		grants, err := s.accessRepo.GetGrants(ctx, actor.GuildID, command)
		if err != nil {
			return false, fmt.Errorf("failed to get role grants for command %s: %w", command, err)
		}
		// An empty grant set while restricted means deny-all
		granted := make(map[int64]struct{}, len(grants))
		for _, roleID := range grants {
			granted[roleID] = struct{}{}
		}
		for _, roleID := range actor.RoleIDs {
			if _, ok := granted[roleID]; ok {
				return true, nil
			}
		}
		return false, nil
	}

	return false, nil
}
