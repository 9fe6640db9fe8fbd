package services

import (
	"context"
	"fmt"

	"sattbot/domain/entities"
	"sattbot/domain/interfaces"
)

// CommandAccessService manages explicit access entries and role grants
type CommandAccessService struct {
	accessRepo interfaces.CommandAccessRepository
}

// NewCommandAccessService creates a new command access service
func NewCommandAccessService(accessRepo interfaces.CommandAccessRepository) *CommandAccessService {
	return &CommandAccessService{accessRepo: accessRepo}
}

// Grant marks a command restricted and records a role grant for it
func (s *CommandAccessService) Grant(ctx context.Context, guildID int64, command string, roleID int64) error {
	if _, known := entities.DefaultCommandAccess[command]; !known {
		return NewValidationError(fmt.Sprintf("unknown command: %s", command))
	}

	if err := s.accessRepo.SetAccess(ctx, guildID, command, entities.AccessRestricted); err != nil {
		return fmt.Errorf("failed to set restricted access for %s: %w", command, err)
	}
	if err := s.accessRepo.AddGrant(ctx, guildID, command, roleID); err != nil {
		return fmt.Errorf("failed to add role grant for %s: %w", command, err)
	}
	return nil
}

// RevokeResult describes the outcome of a role grant revocation
type RevokeResult struct {
	RemainingGrants int
	// RevertedTo is set when the last grant was removed and the
	// command's access level reverted to its static default
	RevertedTo entities.AccessLevel
	Reverted   bool
}

// Revoke removes a role grant. When the last grant for the command is
// removed, the access level reverts to the command's static default
// rather than unconditionally to public.
func (s *CommandAccessService) Revoke(ctx context.Context, guildID int64, command string, roleID int64) (*RevokeResult, error) {
	if _, known := entities.DefaultCommandAccess[command]; !known {
		return nil, NewValidationError(fmt.Sprintf("unknown command: %s", command))
	}

	if err := s.accessRepo.RemoveGrant(ctx, guildID, command, roleID); err != nil {
		return nil, fmt.Errorf("failed to remove role grant for %s: %w", command, err)
	}

	remaining, err := s.accessRepo.GetGrants(ctx, guildID, command)
	if err != nil {
		return nil, fmt.Errorf("failed to get remaining grants for %s: %w", command, err)
	}

	if len(remaining) > 0 {
		return &RevokeResult{RemainingGrants: len(remaining)}, nil
	}

	def := entities.StaticDefaultAccess(command)
	if err := s.accessRepo.SetAccess(ctx, guildID, command, def); err != nil {
		return nil, fmt.Errorf("failed to revert access for %s: %w", command, err)
	}
	return &RevokeResult{RevertedTo: def, Reverted: true}, nil
}

// AccessSnapshot is the full permission state of a guild
type AccessSnapshot struct {
	Access map[string]entities.AccessLevel
	Grants map[string][]int64
}

// Snapshot returns the effective access table and role grants for a
// guild. Commands without an explicit entry carry their static default.
func (s *CommandAccessService) Snapshot(ctx context.Context, guildID int64) (*AccessSnapshot, error) {
	explicit, err := s.accessRepo.ListAccess(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access entries for guild %d: %w", guildID, err)
	}

	access := make(map[string]entities.AccessLevel, len(entities.DefaultCommandAccess))
	for command, def := range entities.DefaultCommandAccess {
		access[command] = def
	}
	for command, level := range explicit {
		access[command] = level
	}

	grants, err := s.accessRepo.ListGrants(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants for guild %d: %w", guildID, err)
	}

	return &AccessSnapshot{Access: access, Grants: grants}, nil
}
