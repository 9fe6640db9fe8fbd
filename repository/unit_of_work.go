package repository

import (
	"context"
	"fmt"

	"sattbot/application"
	"sattbot/database"
	"sattbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	guildConfigRepo   interfaces.GuildConfigRepository
	commandAccessRepo interfaces.CommandAccessRepository
	feedItemRepo      interfaces.FeedItemRepository
	pendingRevealRepo interfaces.PendingRevealRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create creates a new UnitOfWork
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.guildConfigRepo = NewGuildConfigRepositoryWithTx(tx)
	u.commandAccessRepo = NewCommandAccessRepositoryWithTx(tx)
	u.feedItemRepo = NewFeedItemRepositoryWithTx(tx)
	u.pendingRevealRepo = NewPendingRevealRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// GuildConfigRepository returns the guild config repository for this unit of work
func (u *unitOfWork) GuildConfigRepository() interfaces.GuildConfigRepository {
	if u.guildConfigRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildConfigRepo
}

// CommandAccessRepository returns the command access repository for this unit of work
func (u *unitOfWork) CommandAccessRepository() interfaces.CommandAccessRepository {
	if u.commandAccessRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.commandAccessRepo
}

// FeedItemRepository returns the feed item repository for this unit of work
func (u *unitOfWork) FeedItemRepository() interfaces.FeedItemRepository {
	if u.feedItemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.feedItemRepo
}

// PendingRevealRepository returns the pending reveal repository for this unit of work
func (u *unitOfWork) PendingRevealRepository() interfaces.PendingRevealRepository {
	if u.pendingRevealRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pendingRevealRepo
}
