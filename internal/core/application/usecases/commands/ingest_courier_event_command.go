package commands

import (
	"errors"
	"strings"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

var ErrIngestCourierEventCommandIsNotConstructed = errors.New(
	"IngestCourierEventCommand must be created via NewIngestCourierEventCommand constructor",
)

// IngestCourierEventCommand carries one status event pushed by the courier
// platform. The order is addressed either by our id or by the platform's
// shipment reference; when both are given the id wins.
type IngestCourierEventCommand struct { //nolint:recvcheck //using for validation
	orderID      *kernel.UUID
	externalRef  string
	externalCode string
	note         string
	lat          *float64
	lng          *float64

	guard guard.ConstructorGuard
}

func NewIngestCourierEventCommand(
	orderID *kernel.UUID,
	externalRef string,
	externalCode string,
	note string,
	lat, lng *float64,
) (IngestCourierEventCommand, error) {
	cmd := IngestCourierEventCommand{
		note:  note,
		lat:   lat,
		lng:   lng,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTarget(orderID, externalRef),
		cmd.setExternalCode(externalCode),
	); err != nil {
		return IngestCourierEventCommand{}, err
	}

	return cmd, nil
}

func (c IngestCourierEventCommand) Validate() error {
	return c.guard.Validate(ErrIngestCourierEventCommandIsNotConstructed)
}

func (c IngestCourierEventCommand) OrderID() *kernel.UUID           { return c.orderID }
func (c IngestCourierEventCommand) ExternalRef() string             { return c.externalRef }
func (c IngestCourierEventCommand) ExternalCode() string            { return c.externalCode }
func (c IngestCourierEventCommand) Note() string                    { return c.note }
func (c IngestCourierEventCommand) Coordinate() (lat, lng *float64) { return c.lat, c.lng }

func (c *IngestCourierEventCommand) setTarget(orderID *kernel.UUID, externalRef string) error {
	externalRef = strings.TrimSpace(externalRef)
	if orderID == nil && externalRef == "" {
		return errs.NewValueIsRequiredError("orderId or externalOrderRef")
	}

	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("orderId", err)
		}
		id := *orderID
		c.orderID = &id
	}
	c.externalRef = externalRef
	return nil
}

func (c *IngestCourierEventCommand) setExternalCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return errs.NewValueIsRequiredError("externalStatusCode")
	}
	c.externalCode = code
	return nil
}
