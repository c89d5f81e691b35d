package history

import (
	"fmt"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
)

// Source records who produced a ledger entry.
type Source string

const (
	SourceSeller         Source = "seller"
	SourceExternalSystem Source = "external-system"
)

// ParseSource converts a persisted value back to a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceSeller, SourceExternalSystem:
		return Source(s), nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("sourceActor", fmt.Errorf("%q is not a known source", s))
	}
}

func (s Source) String() string {
	return string(s)
}

// Actor is the party requesting a transition: either an authenticated user of
// the marketplace or the external courier system acting through the webhook.
type Actor struct {
	userID   kernel.UUID
	external bool
}

// UserActor returns an actor for a marketplace user (buyer, seller or anyone else).
func UserActor(userID kernel.UUID) (Actor, error) {
	if err := userID.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{userID: userID}, nil
}

// ExternalSystemActor returns the actor used by inbound courier events.
func ExternalSystemActor() Actor {
	return Actor{external: true}
}

func (a Actor) IsExternalSystem() bool {
	return a.external
}

// UserID returns the user identifier and false for the external system.
func (a Actor) UserID() (kernel.UUID, bool) {
	return a.userID, !a.external
}

// Source maps the actor to the ledger source. Only meaningful once the
// actor was authorized to transition, which leaves sellers and the external system.
func (a Actor) Source() Source {
	if a.external {
		return SourceExternalSystem
	}
	return SourceSeller
}

func (a Actor) String() string {
	if a.external {
		return string(SourceExternalSystem)
	}
	return "user " + a.userID.String()
}
