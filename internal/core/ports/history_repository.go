package ports

import (
	"context"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
)

// HistoryRepository is the status ledger. It has no update or delete.
type HistoryRepository interface {
	// Append stores the entry and returns it with its sequence number.
	// Unknown order: errs.ObjectNotFoundError. Unknown stage: errs.ValueIsInvalidError.
	Append(ctx context.Context, entry history.Entry) (history.Entry, error)

	// Latest returns the newest entry of the order, nil when there is none.
	Latest(ctx context.Context, orderID kernel.UUID) (*history.Entry, error)
}
