package ports

import (
	"context"
	"errors"
	"time"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
)

// TemplateOrderStageChanged is the template kind of stage change notifications.
const TemplateOrderStageChanged = "order_stage_changed"

// ErrRecipientUnreachable is returned by a sink that has no address for the
// recipient, e.g. the email sink without a contact email. It is not a failure.
var ErrRecipientUnreachable = errors.New("recipient has no address on this channel")

// StageChange describes a committed change of an order's current stage.
type StageChange struct {
	OrderID       kernel.UUID
	BuyerID       kernel.UUID
	SellerID      kernel.UUID
	PreviousStage string
	NewStage      string
	Source        history.Source
	ContactEmail  string
	ChangedAt     time.Time
}

// Notifier fans a stage change out to users. Delivery is best effort:
// Notify never reports failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, change StageChange)
}

// NotificationSink delivers one notification over a single channel.
type NotificationSink interface {
	Channel() string
	Send(ctx context.Context, userID kernel.UUID, templateKind string, payload map[string]any) error
}
