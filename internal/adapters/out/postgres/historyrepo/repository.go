package historyrepo

import (
	"context"
	"errors"
	"fmt"

	"ordertracker/internal/adapters/out/postgres/pgerr"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"

	"gorm.io/gorm"
)

const (
	orderForeignKey = "status_history_order_id_fkey"
	stageForeignKey = "status_history_stage_code_fkey"
)

// GormHistoryRepository implements ports.HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts entry and returns it with the sequence number assigned by
// the database.
func (r *GormHistoryRepository) Append(ctx context.Context, entry history.Entry) (history.Entry, error) {
	if err := entry.Validate(); err != nil {
		return history.Entry{}, err
	}
	if entry.Seq() != 0 {
		return history.Entry{}, errs.NewValueIsInvalidErrorWithCause("seq",
			fmt.Errorf("entry %d is already in the ledger", entry.Seq()))
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return history.Entry{}, mapAppendError(err, entry)
	}

	return ToDomain(dto)
}

func (r *GormHistoryRepository) Latest(ctx context.Context, orderID kernel.UUID) (*history.Entry, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto EntryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Value()).
		Order("seq DESC").
		Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // an empty ledger is not an error
	}
	if err != nil {
		return nil, err
	}

	entry, err := ToDomain(dto)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func mapAppendError(err error, entry history.Entry) error {
	v, ok := pgerr.AsViolation(err)
	if !ok {
		return err
	}

	switch {
	case v.Code == pgerr.CodeForeignKeyViolation && v.Constraint == orderForeignKey:
		return errs.NewObjectNotFoundErrorWithCause("order", entry.OrderID().String(), err)
	case v.Code == pgerr.CodeForeignKeyViolation && v.Constraint == stageForeignKey:
		return errs.NewValueIsInvalidErrorWithCause("stageCode",
			fmt.Errorf("%q is not a registered stage", entry.StageCode()))
	default:
		return errs.NewValueIsInvalidErrorWithCause("status history entry", err)
	}
}
