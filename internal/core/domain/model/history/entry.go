package history

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
)

// NoteMaxLength bounds the free-text note in runes.
const NoteMaxLength = 2000

var (
	// ErrNoHistory is returned when an order has no ledger entry yet.
	// Callers treat such an order as not started rather than failed.
	ErrNoHistory = errors.New("order has no status history")

	ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry constructor")
)

// Entry is one immutable row of the status ledger.
type Entry struct {
	seq       int64
	orderID   kernel.UUID
	stageCode string
	note      string
	point     *kernel.GeoPoint
	source    Source
	actorID   *kernel.UUID
	createdAt time.Time

	isConstructed bool
}

// NewEntry builds an entry that has not been appended yet (Seq is 0).
// The stage code is checked against the registry by the caller.
func NewEntry(
	orderID kernel.UUID,
	stageCode string,
	note string,
	point *kernel.GeoPoint,
	actor Actor,
	createdAt time.Time,
) (Entry, error) {
	e := Entry{
		source:        actor.Source(),
		isConstructed: true,
	}
	if id, ok := actor.UserID(); ok {
		e.actorID = &id
	}

	if err := errors.Join(
		e.setOrderID(orderID),
		e.setStageCode(stageCode),
		e.setNote(note),
		e.setPoint(point),
		e.setCreatedAt(createdAt),
	); err != nil {
		return Entry{}, err
	}

	return e, nil
}

// RestoreEntry rebuilds a persisted entry. Used by repositories only.
func RestoreEntry(
	seq int64,
	orderID kernel.UUID,
	stageCode string,
	note string,
	point *kernel.GeoPoint,
	source Source,
	actorID *kernel.UUID,
	createdAt time.Time,
) Entry {
	return Entry{
		seq:           seq,
		orderID:       orderID,
		stageCode:     stageCode,
		note:          note,
		point:         point,
		source:        source,
		actorID:       actorID,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}
}

func (e Entry) Validate() error {
	if !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

// Seq is the ledger sequence number, 0 before the entry is appended.
func (e Entry) Seq() int64 {
	return e.seq
}

func (e Entry) OrderID() kernel.UUID {
	return e.orderID
}

func (e Entry) StageCode() string {
	return e.stageCode
}

func (e Entry) Note() string {
	return e.note
}

// Point returns the optional coordinate.
func (e Entry) Point() *kernel.GeoPoint {
	return e.point
}

func (e Entry) Source() Source {
	return e.source
}

// ActorID is the seller who appended the entry, nil for the external system.
func (e Entry) ActorID() *kernel.UUID {
	return e.actorID
}

func (e Entry) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entry) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.orderID = id
	return nil
}

func (e *Entry) setStageCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("stageCode")
	}
	e.stageCode = code
	return nil
}

func (e *Entry) setNote(note string) error {
	note = strings.TrimSpace(note)
	if n := utf8.RuneCountInString(note); n > NoteMaxLength {
		return errs.NewValueIsOutOfRangeError("note length", n, 0, NoteMaxLength)
	}
	e.note = note
	return nil
}

func (e *Entry) setPoint(point *kernel.GeoPoint) error {
	if point == nil {
		return nil
	}
	if err := point.Validate(); err != nil {
		return err
	}
	p := *point
	e.point = &p
	return nil
}

func (e *Entry) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredErrorWithCause("createdAt", errors.New("zero time"))
	}
	// the ledger stores microseconds
	e.createdAt = at.UTC().Truncate(time.Microsecond)
	return nil
}
