package testhelpers

import (
	"context"
	"time"

	"sattbot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) Get(ctx context.Context, guildID int64) (*entities.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) Update(ctx context.Context, config *entities.GuildConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) Delete(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) ListNewsTargets(ctx context.Context) ([]entities.FeedTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FeedTarget), args.Error(1)
}

func (m *MockGuildConfigRepository) ListQOTDTargets(ctx context.Context) ([]entities.FeedTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FeedTarget), args.Error(1)
}

// MockCommandAccessRepository is a mock implementation of CommandAccessRepository
type MockCommandAccessRepository struct {
	mock.Mock
}

func (m *MockCommandAccessRepository) GetAccess(ctx context.Context, guildID int64, command string) (entities.AccessLevel, bool, error) {
	args := m.Called(ctx, guildID, command)
	return args.Get(0).(entities.AccessLevel), args.Bool(1), args.Error(2)
}

func (m *MockCommandAccessRepository) SetAccess(ctx context.Context, guildID int64, command string, access entities.AccessLevel) error {
	args := m.Called(ctx, guildID, command, access)
	return args.Error(0)
}

func (m *MockCommandAccessRepository) SeedDefaults(ctx context.Context, guildID int64, defaults map[string]entities.AccessLevel) error {
	args := m.Called(ctx, guildID, defaults)
	return args.Error(0)
}

func (m *MockCommandAccessRepository) ListAccess(ctx context.Context, guildID int64) (map[string]entities.AccessLevel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entities.AccessLevel), args.Error(1)
}

func (m *MockCommandAccessRepository) GetGrants(ctx context.Context, guildID int64, command string) ([]int64, error) {
	args := m.Called(ctx, guildID, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockCommandAccessRepository) AddGrant(ctx context.Context, guildID int64, command string, roleID int64) error {
	args := m.Called(ctx, guildID, command, roleID)
	return args.Error(0)
}

func (m *MockCommandAccessRepository) RemoveGrant(ctx context.Context, guildID int64, command string, roleID int64) error {
	args := m.Called(ctx, guildID, command, roleID)
	return args.Error(0)
}

func (m *MockCommandAccessRepository) ListGrants(ctx context.Context, guildID int64) (map[string][]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]int64), args.Error(1)
}

func (m *MockCommandAccessRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

// MockFeedItemRepository is a mock implementation of FeedItemRepository
type MockFeedItemRepository struct {
	mock.Mock
}

func (m *MockFeedItemRepository) StoreItems(ctx context.Context, guildID int64, items []*entities.FeedItem) (int, error) {
	args := m.Called(ctx, guildID, items)
	return args.Int(0), args.Error(1)
}

func (m *MockFeedItemRepository) ListRecent(ctx context.Context, guildID int64, since time.Time) ([]*entities.FeedItem, error) {
	args := m.Called(ctx, guildID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FeedItem), args.Error(1)
}

func (m *MockFeedItemRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeedItemRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

// MockPendingRevealRepository is a mock implementation of PendingRevealRepository
type MockPendingRevealRepository struct {
	mock.Mock
}

func (m *MockPendingRevealRepository) Create(ctx context.Context, reveal *entities.PendingReveal) error {
	args := m.Called(ctx, reveal)
	return args.Error(0)
}

func (m *MockPendingRevealRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.PendingReveal, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingReveal), args.Error(1)
}

func (m *MockPendingRevealRepository) MarkRevealed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingRevealRepository) DeleteRevealedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPendingRevealRepository) DeleteGuild(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, event any) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}
