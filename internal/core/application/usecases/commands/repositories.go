// Package commands contains the operations that change tracking state.
// Every handler validates its command, opens a unit of work, and commits or
// rolls back as a whole.
package commands

import (
	"context"

	"ordertracker/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	StageRepoFactory interface {
		StageRepository() ports.StageRepository
	}

	CourierPushRepoFactory interface {
		CourierPushRepository() ports.CourierPushRepository
	}

	// TransitionUoW covers a ledger append together with the order cache
	// update and the outbox row, so they commit or roll back as one.
	TransitionUoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
		CourierPushRepoFactory
	}

	TransitionUoWFactory interface {
		Create() TransitionUoW
	}

	// ReconcileUoW reads the ledger and rewrites the order cache.
	ReconcileUoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
	}

	ReconcileUoWFactory interface {
		Create() ReconcileUoW
	}

	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	StageUoW interface {
		TxManager
		StageRepoFactory
	}

	StageUoWFactory interface {
		Create() StageUoW
	}

	CourierPushUoW interface {
		TxManager
		CourierPushRepoFactory
	}

	CourierPushUoWFactory interface {
		Create() CourierPushUoW
	}
)
