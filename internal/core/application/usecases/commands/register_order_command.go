package commands

import (
	"errors"
	"strings"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
	"ordertracker/internal/pkg/guard"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// RegisterOrderCommand makes an order known to delivery tracking.
// The order starts with an empty status history.
//
// Example:
//
//	details, _ := order.NewDeliveryDetails("1 Main St", "Ann", "+100", "ann@example.com", nil, nil)
//	cmd, err := NewRegisterOrderCommand(orderID, buyerID, sellerID, productID, 1999, details, "CR-1")
type RegisterOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	buyerID     kernel.UUID
	sellerID    kernel.UUID
	productID   kernel.UUID
	amountMinor int64
	delivery    order.DeliveryDetails
	externalRef string

	guard guard.ConstructorGuard
}

func NewRegisterOrderCommand(
	orderID, buyerID, sellerID, productID kernel.UUID,
	amountMinor int64,
	delivery order.DeliveryDetails,
	externalRef string,
) (RegisterOrderCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		buyerID.Validate(),
		sellerID.Validate(),
		productID.Validate(),
		delivery.Validate(),
	); err != nil {
		return RegisterOrderCommand{}, err
	}

	return RegisterOrderCommand{
		orderID:     orderID,
		buyerID:     buyerID,
		sellerID:    sellerID,
		productID:   productID,
		amountMinor: amountMinor,
		delivery:    delivery,
		externalRef: strings.TrimSpace(externalRef),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

func (c RegisterOrderCommand) OrderID() kernel.UUID            { return c.orderID }
func (c RegisterOrderCommand) BuyerID() kernel.UUID            { return c.buyerID }
func (c RegisterOrderCommand) SellerID() kernel.UUID           { return c.sellerID }
func (c RegisterOrderCommand) ProductID() kernel.UUID          { return c.productID }
func (c RegisterOrderCommand) AmountMinor() int64              { return c.amountMinor }
func (c RegisterOrderCommand) Delivery() order.DeliveryDetails { return c.delivery }
func (c RegisterOrderCommand) ExternalRef() string             { return c.externalRef }
