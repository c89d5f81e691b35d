// Package outboxrepo stores outbound courier pushes in the courier_pushes
// table, written in the same transaction as the ledger append.
package outboxrepo

import (
	"context"
	"strconv"
	"time"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/ports"
	"ordertracker/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	StatusPending    = "pending"
	StatusDelivered  = "delivered"
	StatusFailed     = "failed"
	StatusSuperseded = "superseded"
)

type CourierPushDTO struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	OrderID          uuid.UUID `gorm:"type:uuid"`
	ExternalOrderRef string
	StageCode        string
	Status           string
	Attempts         int
	LastError        string
	NextAttemptAt    time.Time
	LeaseUntil       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (CourierPushDTO) TableName() string {
	return "courier_pushes"
}

// GormCourierPushRepository implements ports.CourierPushRepository using GORM.
type GormCourierPushRepository struct {
	db *gorm.DB
}

func NewGormCourierPushRepository(db *gorm.DB) *GormCourierPushRepository {
	return &GormCourierPushRepository{db: db}
}

// Enqueue queues a push that is due immediately. Older pending pushes of the
// same order that are not leased are superseded, so a stale stage is never
// sent after a newer one. A leased push is left to settle; ClaimDue holds
// the new row back until it does.
func (r *GormCourierPushRepository) Enqueue(ctx context.Context, push ports.CourierPush) error {
	if err := push.OrderID.Validate(); err != nil {
		return err
	}
	if push.ExternalOrderRef == "" {
		return errs.NewValueIsRequiredError("externalOrderRef")
	}

	now := time.Now().UTC()
	createdAt := push.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	db := r.db.WithContext(ctx)
	err := db.Model(&CourierPushDTO{}).
		Where("order_id = ? AND status = ? AND (lease_until IS NULL OR lease_until <= ?)",
			push.OrderID.Value(), StatusPending, now).
		Updates(map[string]any{
			"status":      StatusSuperseded,
			"lease_until": nil,
			"updated_at":  now,
		}).Error
	if err != nil {
		return err
	}

	dto := CourierPushDTO{
		OrderID:          push.OrderID.Value(),
		ExternalOrderRef: push.ExternalOrderRef,
		StageCode:        push.StageCode,
		Status:           StatusPending,
		NextAttemptAt:    createdAt,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}
	return db.Create(&dto).Error
}

// ClaimDue leases due pending rows, oldest first, until leaseUntil. Only the
// oldest pending row of an order is eligible, so pushes of one order go out
// in enqueue order. Rows locked by another transaction are skipped rather
// than waited for, and rows with a live lease are not claimed again.
func (r *GormCourierPushRepository) ClaimDue(
	ctx context.Context,
	now, leaseUntil time.Time,
	limit int,
) ([]ports.CourierPush, error) {
	db := r.db.WithContext(ctx)

	var dtos []CourierPushDTO
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND next_attempt_at <= ?", StatusPending, now).
		Where("(lease_until IS NULL OR lease_until <= ?)", now).
		Where(`NOT EXISTS (
			SELECT 1 FROM courier_pushes older
			WHERE older.order_id = courier_pushes.order_id
			  AND older.status = ?
			  AND older.id < courier_pushes.id)`, StatusPending).
		Order("next_attempt_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(dtos))
	pushes := make([]ports.CourierPush, 0, len(dtos))
	for _, dto := range dtos {
		orderID, idErr := kernel.UUIDFromGoogle(dto.OrderID)
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, dto.ID)
		pushes = append(pushes, ports.CourierPush{
			ID:               dto.ID,
			OrderID:          orderID,
			ExternalOrderRef: dto.ExternalOrderRef,
			StageCode:        dto.StageCode,
			Attempts:         dto.Attempts,
			CreatedAt:        dto.CreatedAt,
		})
	}

	err = db.Model(&CourierPushDTO{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"lease_until": leaseUntil.UTC(),
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, err
	}

	return pushes, nil
}

func (r *GormCourierPushRepository) MarkDelivered(ctx context.Context, id int64) error {
	return r.update(ctx, id, map[string]any{
		"status": StatusDelivered,
	})
}

func (r *GormCourierPushRepository) MarkRetry(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status": gorm.Expr(`CASE WHEN EXISTS (
			SELECT 1 FROM courier_pushes newer
			WHERE newer.order_id = courier_pushes.order_id
			  AND newer.id > courier_pushes.id) THEN ? ELSE ? END`, StatusSuperseded, StatusPending),
		"attempts":        attempts,
		"last_error":      lastErr,
		"next_attempt_at": next,
	})
}

func (r *GormCourierPushRepository) MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error {
	return r.update(ctx, id, map[string]any{
		"status":     StatusFailed,
		"attempts":   attempts,
		"last_error": lastErr,
	})
}

// update settles a pending row and releases its lease.
func (r *GormCourierPushRepository) update(ctx context.Context, id int64, columns map[string]any) error {
	columns["lease_until"] = nil
	columns["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&CourierPushDTO{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier push", strconv.FormatInt(id, 10))
	}
	return nil
}
