// Package ports defines the contracts between the tracking core and its
// infrastructure: persistence, the courier platform, notification sinks and
// metrics.
package ports

import (
	"context"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a newly registered order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the order when its stored version still equals
	// aggregate.Version() and bumps the version. A concurrent writer makes it
	// fail with errs.VersionIsInvalidError.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order or returns errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate loads an order and locks its row until the transaction
	// ends, serializing transitions of the same order across instances.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindIDByExternalRef resolves the courier platform's shipment reference.
	FindIDByExternalRef(ctx context.Context, externalRef string) (kernel.UUID, error)

	// ListInconsistent returns orders whose cached stage differs from the
	// stage of their newest ledger entry.
	ListInconsistent(ctx context.Context, limit int) ([]kernel.UUID, error)
}
