package commands

import (
	"context"
	"time"

	"ordertracker/internal/core/domain/model/order"
)

// RegisterOrderCommandHandler stores a new order with no status history.
//
// Example:
//
//	handler := NewRegisterOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order registration failed: %w", err)
//	}
type RegisterOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewRegisterOrderCommandHandler(uowFactory OrderUoWFactory) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle fails with a validation error for a bad amount or buyer == seller,
// and with a version conflict when the id or external reference is taken.
func (h RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.BuyerID(), cmd.SellerID(), cmd.ProductID(),
		cmd.AmountMinor(), cmd.Delivery(), cmd.ExternalRef(), time.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
