package order

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

// ErrDeliveryDetailsIsNotConstructed is returned for zero-value DeliveryDetails.
var ErrDeliveryDetailsIsNotConstructed = errors.New("DeliveryDetails must be created via NewDeliveryDetails constructor")

// DeliveryWindow is the buyer's preferred delivery interval, start before end.
type DeliveryWindow struct {
	Start time.Time
	End   time.Time
}

// DeliveryDetails describes where and to whom the order is delivered.
type DeliveryDetails struct { //nolint:recvcheck //using for validation
	address      string
	contactName  string
	contactPhone string
	contactEmail string
	window       *DeliveryWindow

	guard guard.ConstructorGuard
}

// NewDeliveryDetails validates the delivery destination.
// Address and contact name are required; email, when present, must parse as an
// address; windowStart and windowEnd are both set or both nil.
func NewDeliveryDetails(
	address, contactName, contactPhone, contactEmail string,
	windowStart, windowEnd *time.Time,
) (DeliveryDetails, error) {
	d := DeliveryDetails{
		contactPhone: strings.TrimSpace(contactPhone),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setAddress(address),
		d.setContactName(contactName),
		d.setContactEmail(contactEmail),
		d.setWindow(windowStart, windowEnd),
	); err != nil {
		return DeliveryDetails{}, err
	}

	return d, nil
}

func (d DeliveryDetails) Validate() error {
	return d.guard.Validate(ErrDeliveryDetailsIsNotConstructed)
}

func (d DeliveryDetails) Address() string      { return d.address }
func (d DeliveryDetails) ContactName() string  { return d.contactName }
func (d DeliveryDetails) ContactPhone() string { return d.contactPhone }

// ContactEmail is empty when the buyer left no email.
func (d DeliveryDetails) ContactEmail() string { return d.contactEmail }

// Window returns a copy of the preferred window, nil when none was given.
func (d DeliveryDetails) Window() *DeliveryWindow {
	if d.window == nil {
		return nil
	}
	w := *d.window
	return &w
}

func (d *DeliveryDetails) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("delivery address")
	}
	d.address = address
	return nil
}

func (d *DeliveryDetails) setContactName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("delivery contact name")
	}
	d.contactName = name
	return nil
}

func (d *DeliveryDetails) setContactEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("delivery contact email", err)
	}
	d.contactEmail = addr.Address
	return nil
}

func (d *DeliveryDetails) setWindow(start, end *time.Time) error {
	switch {
	case start == nil && end == nil:
		return nil
	case start == nil || end == nil:
		return errs.NewValueIsRequiredErrorWithCause("delivery window", errors.New("start and end go together"))
	case !start.Before(*end):
		return errs.NewValueIsInvalidErrorWithCause("delivery window",
			fmt.Errorf("start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	d.window = &DeliveryWindow{Start: start.UTC(), End: end.UTC()}
	return nil
}
