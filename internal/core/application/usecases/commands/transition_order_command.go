package commands

import (
	"errors"
	"strings"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks to move an order to a stage on behalf of actor.
//
// Only the order id is checked here. Permission, stage and coordinate are
// checked by the handler, in that order, once the order is loaded.
//
// Example:
//
//	seller, _ := history.UserActor(sellerID)
//	cmd, err := NewTransitionOrderCommand(orderID, seller, "in_transit", "left the depot", &lat, &lng)
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	actor     history.Actor
	stageCode string
	note      string
	lat       *float64
	lng       *float64

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(
	orderID kernel.UUID,
	actor history.Actor,
	stageCode string,
	note string,
	lat, lng *float64,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		actor:     actor,
		stageCode: strings.TrimSpace(stageCode),
		note:      note,
		lat:       lat,
		lng:       lng,
		guard:     guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID            { return c.orderID }
func (c TransitionOrderCommand) Actor() history.Actor            { return c.actor }
func (c TransitionOrderCommand) StageCode() string               { return c.stageCode }
func (c TransitionOrderCommand) Note() string                    { return c.note }
func (c TransitionOrderCommand) Coordinate() (lat, lng *float64) { return c.lat, c.lng }

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
