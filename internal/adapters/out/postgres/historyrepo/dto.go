// Package historyrepo persists the status ledger. Rows are only ever
// inserted; the table rejects updates and deletes with a trigger.
package historyrepo

import (
	"time"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EntryDTO is a row of status_history.
type EntryDTO struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid"`
	StageCode string
	Note      string
	Lat       *float64
	Lng       *float64
	Source    string
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (EntryDTO) TableName() string {
	return "status_history"
}

func fromDomain(e history.Entry) EntryDTO {
	dto := EntryDTO{
		Seq:       e.Seq(),
		OrderID:   e.OrderID().Value(),
		StageCode: e.StageCode(),
		Note:      e.Note(),
		Source:    e.Source().String(),
		CreatedAt: e.CreatedAt(),
	}
	if p := e.Point(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	if id := e.ActorID(); id != nil {
		raw := id.Value()
		dto.ActorID = &raw
	}
	return dto
}

// ToDomain rebuilds an entry from its stored columns. Query handlers that
// scan status_history rows directly use it too.
func ToDomain(dto EntryDTO) (history.Entry, error) {
	orderID, err := kernel.UUIDFromGoogle(dto.OrderID)
	if err != nil {
		return history.Entry{}, err
	}

	point, err := kernel.NewOptionalGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return history.Entry{}, err
	}

	source, err := history.ParseSource(dto.Source)
	if err != nil {
		return history.Entry{}, err
	}

	var actorID *kernel.UUID
	if dto.ActorID != nil {
		id, idErr := kernel.UUIDFromGoogle(*dto.ActorID)
		if idErr != nil {
			return history.Entry{}, idErr
		}
		actorID = &id
	}

	return history.RestoreEntry(dto.Seq, orderID, dto.StageCode, dto.Note, point, source, actorID, dto.CreatedAt), nil
}
