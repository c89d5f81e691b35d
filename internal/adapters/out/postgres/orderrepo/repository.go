package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"ordertracker/internal/adapters/out/postgres/pgerr"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
	"ordertracker/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a repository bound to db, which may be a
// transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order. A taken id or external reference is reported as a
// version conflict.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if v, ok := pgerr.AsViolation(err); ok && v.Code == pgerr.CodeUniqueViolation {
			return errs.NewVersionIsInvalidError("order", fmt.Errorf("already registered: %s", v.Detail))
		}
		return err
	}

	return nil
}

// Update writes the order if nobody changed it since it was loaded.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	next := aggregate.Version() + 1
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Updates(map[string]any{
			"current_stage_code":    dto.CurrentStageCode,
			"last_status_change_at": dto.LastStatusChangeAt,
			"dispute_state":         dto.DisputeState,
			"version":               next,
		})
	if result.Error != nil {
		if v, ok := pgerr.AsViolation(result.Error); ok && v.Code == pgerr.CodeForeignKeyViolation {
			return errs.NewValueIsInvalidErrorWithCause("currentStageCode", errors.New(v.Detail))
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidError("order",
			fmt.Errorf("order %s changed since version %d", aggregate.ID(), aggregate.Version()))
	}

	aggregate.RecordVersion(next)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate retrieves an order and holds a row lock until the surrounding
// transaction ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Value()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) FindIDByExternalRef(ctx context.Context, externalRef string) (kernel.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("external_ref = ?", externalRef).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return kernel.UUID{}, err
	}
	if len(ids) == 0 {
		return kernel.UUID{}, errs.NewObjectNotFoundError("externalOrderRef", externalRef)
	}

	return kernel.UUIDFromGoogle(ids[0])
}

// ListInconsistent compares each order's cache with its newest ledger row,
// including orders whose cache is set while the ledger is empty.
func (r *GormOrderRepository) ListInconsistent(ctx context.Context, limit int) ([]kernel.UUID, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT o.id
		FROM orders o
		LEFT JOIN LATERAL (
			SELECT h.stage_code, h.created_at
			FROM status_history h
			WHERE h.order_id = o.id
			ORDER BY h.seq DESC
			LIMIT 1
		) latest ON TRUE
		WHERE o.current_stage_code IS DISTINCT FROM latest.stage_code
		   OR o.last_status_change_at IS DISTINCT FROM latest.created_at
		ORDER BY o.id
		LIMIT ?
	`, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]kernel.UUID, 0)
	for rows.Next() {
		var raw uuid.UUID
		if err = rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, idErr := kernel.UUIDFromGoogle(raw)
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
