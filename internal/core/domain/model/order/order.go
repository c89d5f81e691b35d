package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order was not created through
// NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

const transitionAction = "transition order"

// Order is the aggregate root of a marketplace order as seen by delivery
// tracking.
//
// Order follows these invariants:
//   - id, buyer, seller and product are valid identifiers, buyer != seller
//   - amount (minor currency units) is positive
//   - currentStageCode equals the stage of the newest ledger entry, or is empty
//     while the order has no history
//   - version grows by one with every persisted update
type Order struct {
	id        kernel.UUID
	buyerID   kernel.UUID
	sellerID  kernel.UUID
	productID kernel.UUID

	amountMinor int64
	delivery    DeliveryDetails

	// currentStageCode is the cached projection; empty until the first transition
	currentStageCode   string
	lastStatusChangeAt *time.Time

	disputeState DisputeState

	// externalRef is the courier platform's identifier of the shipment, optional
	externalRef string

	version   int64
	createdAt time.Time

	isConstructed bool
}

// NewOrder registers an order that has no status history yet.
//
// Example:
//
//	details, _ := order.NewDeliveryDetails("1 Main St", "Ann", "+100", "ann@example.com", nil, nil)
//	o, err := order.NewOrder(id, buyerID, sellerID, productID, 1999, details, "CR-1", time.Now())
func NewOrder(
	id, buyerID, sellerID, productID kernel.UUID,
	amountMinor int64,
	delivery DeliveryDetails,
	externalRef string,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		disputeState:  DisputeNone,
		externalRef:   strings.TrimSpace(externalRef),
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setIdentity(id, buyerID, sellerID, productID),
		o.setAmount(amountMinor),
		o.setDelivery(delivery),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from persistence without resetting its
// stage cache, dispute state or version.
func RestoreOrder(
	id, buyerID, sellerID, productID kernel.UUID,
	amountMinor int64,
	delivery DeliveryDetails,
	externalRef string,
	currentStageCode string,
	lastStatusChangeAt *time.Time,
	disputeState DisputeState,
	version int64,
	createdAt time.Time,
) (*Order, error) {
	o, err := NewOrder(id, buyerID, sellerID, productID, amountMinor, delivery, externalRef, createdAt)
	if err != nil {
		return nil, err
	}

	if err = disputeState.Validate(); err != nil {
		return nil, err
	}

	o.currentStageCode = currentStageCode
	if lastStatusChangeAt != nil {
		at := lastStatusChangeAt.UTC()
		o.lastStatusChangeAt = &at
	}
	o.disputeState = disputeState
	o.version = version
	return o, nil
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) BuyerID() kernel.UUID           { return o.buyerID }
func (o *Order) SellerID() kernel.UUID          { return o.sellerID }
func (o *Order) ProductID() kernel.UUID         { return o.productID }
func (o *Order) AmountMinor() int64             { return o.amountMinor }
func (o *Order) Delivery() DeliveryDetails      { return o.delivery }
func (o *Order) DisputeState() DisputeState     { return o.disputeState }
func (o *Order) ExternalRef() string            { return o.externalRef }
func (o *Order) HasExternalRef() bool           { return o.externalRef != "" }
func (o *Order) Version() int64                 { return o.version }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) CurrentStageCode() string       { return o.currentStageCode }
func (o *Order) LastStatusChangeAt() *time.Time { return o.lastStatusChangeAt }

// IsStarted reports whether at least one transition was applied.
func (o *Order) IsStarted() bool {
	return o.currentStageCode != ""
}

// AuthorizeTransition allows the seller and the external courier system.
// Buyers and unrelated users get a PermissionDeniedError.
func (o *Order) AuthorizeTransition(actor history.Actor) error {
	if actor.IsExternalSystem() {
		return nil
	}

	userID, _ := actor.UserID()
	switch {
	case userID.IsEqual(o.sellerID):
		return nil
	case userID.IsEqual(o.buyerID):
		return errs.NewPermissionDeniedErrorWithCause("buyer", transitionAction,
			fmt.Errorf("buyer %s of order %s is a read-only observer", userID, o.id))
	default:
		return errs.NewPermissionDeniedErrorWithCause("user", transitionAction,
			fmt.Errorf("%s is not the seller of order %s", userID, o.id))
	}
}

// ApplyStage moves the cached projection to the stage of a freshly appended
// ledger entry. It returns the previous stage code and whether it changed.
func (o *Order) ApplyStage(code string, at time.Time) (previous string, changed bool) {
	previous = o.currentStageCode
	o.currentStageCode = code
	utc := at.UTC()
	o.lastStatusChangeAt = &utc
	return previous, previous != code
}

// SyncStage overwrites the cached projection with the newest ledger entry's
// stage, or clears it when the ledger is empty. It reports whether anything
// changed.
func (o *Order) SyncStage(code string, at *time.Time) bool {
	same := o.currentStageCode == code
	switch {
	case at == nil:
		same = same && o.lastStatusChangeAt == nil
	case o.lastStatusChangeAt == nil:
		same = false
	default:
		same = same && o.lastStatusChangeAt.Equal(*at)
	}
	if same {
		return false
	}

	o.currentStageCode = code
	o.lastStatusChangeAt = nil
	if at != nil {
		utc := at.UTC()
		o.lastStatusChangeAt = &utc
	}
	return true
}

// RecordVersion stores the version written by a successful compare-and-set
// update. Called by the repository.
func (o *Order) RecordVersion(version int64) {
	o.version = version
}

func (o *Order) setIdentity(id, buyerID, sellerID, productID kernel.UUID) error {
	err := errors.Join(
		wrapID("order id", id.Validate()),
		wrapID("buyer id", buyerID.Validate()),
		wrapID("seller id", sellerID.Validate()),
		wrapID("product id", productID.Validate()),
	)
	if err != nil {
		return err
	}

	if buyerID.IsEqual(sellerID) {
		return errs.NewValueIsInvalidErrorWithCause("seller id", errors.New("buyer and seller must differ"))
	}

	o.id, o.buyerID, o.sellerID, o.productID = id, buyerID, sellerID, productID
	return nil
}

func (o *Order) setAmount(amountMinor int64) error {
	if amountMinor <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is not greater than 0", amountMinor))
	}
	o.amountMinor = amountMinor
	return nil
}

func (o *Order) setDelivery(delivery DeliveryDetails) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	o.delivery = delivery
	return nil
}

func wrapID(name string, err error) error {
	if err == nil {
		return nil
	}
	return errs.NewValueIsRequiredErrorWithCause(name, err)
}
