package queries

import (
	"context"
	"database/sql"
	"time"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func requireOrder(ctx context.Context, db *gorm.DB, orderID kernel.UUID) error {
	var exists bool
	err := db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM orders WHERE id = ?)`, orderID.Value()).
		Row().
		Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NewObjectNotFoundError("order", orderID.String())
	}
	return nil
}

// selectEntries runs a status_history select whose columns are, in order:
// seq, order_id, stage_code, note, lat, lng, source, actor_id, created_at.
func selectEntries(ctx context.Context, db *gorm.DB, query string, args ...any) ([]history.Entry, error) {
	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]history.Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (history.Entry, error) {
	var (
		seq       int64
		orderID   uuid.UUID
		stageCode string
		note      string
		lat, lng  *float64
		source    string
		actorID   uuid.NullUUID
		createdAt time.Time
	)
	if err := rows.Scan(&seq, &orderID, &stageCode, &note, &lat, &lng, &source, &actorID, &createdAt); err != nil {
		return history.Entry{}, err
	}

	id, err := kernel.UUIDFromGoogle(orderID)
	if err != nil {
		return history.Entry{}, err
	}
	point, err := kernel.NewOptionalGeoPoint(lat, lng)
	if err != nil {
		return history.Entry{}, err
	}
	src, err := history.ParseSource(source)
	if err != nil {
		return history.Entry{}, err
	}

	var actor *kernel.UUID
	if actorID.Valid {
		a, actorErr := kernel.UUIDFromGoogle(actorID.UUID)
		if actorErr != nil {
			return history.Entry{}, actorErr
		}
		actor = &a
	}

	return history.RestoreEntry(seq, id, stageCode, note, point, src, actor, createdAt), nil
}
