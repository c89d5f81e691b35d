package ports

import (
	"context"
	"errors"
	"time"

	"ordertracker/internal/core/domain/model/kernel"
)

// ErrCourierRejected marks a push the courier platform refused outright.
// Such pushes are not retried.
var ErrCourierRejected = errors.New("courier platform rejected the push")

// CourierClient pushes an order's status to the external courier platform.
type CourierClient interface {
	PushStatus(ctx context.Context, externalOrderRef, externalStatusCode string) error
}

// CourierVocabulary translates between internal stage codes and the courier
// platform's status codes.
type CourierVocabulary interface {
	// ToExternal maps an internal code, passing unmapped codes through.
	ToExternal(internalCode string) string

	// ToInternal maps a normalized external code; false when unknown.
	ToInternal(externalCode string) (string, bool)
}

// CourierPush is a pending outbound status push stored in the outbox.
type CourierPush struct {
	ID               int64
	OrderID          kernel.UUID
	ExternalOrderRef string
	StageCode        string
	Attempts         int
	CreatedAt        time.Time
}

// CourierPushRepository is the transactional outbox of outbound pushes.
type CourierPushRepository interface {
	// Enqueue queues a push and supersedes older pending pushes of the same
	// order that are not in flight.
	Enqueue(ctx context.Context, push CourierPush) error

	// ClaimDue leases up to limit pending pushes due at now until leaseUntil,
	// at most one per order and always the oldest one. Rows locked or leased
	// by other instances are skipped.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]CourierPush, error)

	MarkDelivered(ctx context.Context, id int64) error

	// MarkRetry reschedules a push, or supersedes it when a newer push of the
	// same order exists.
	MarkRetry(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error
}
