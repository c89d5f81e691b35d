// Package stagerepo reads and seeds the delivery_stages table.
package stagerepo

import (
	"context"

	"ordertracker/internal/adapters/out/postgres/pgerr"
	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StageDTO struct {
	Code        string `gorm:"primaryKey"`
	DisplayName string
	Position    int
}

func (StageDTO) TableName() string {
	return "delivery_stages"
}

// GormStageRepository implements ports.StageRepository using GORM.
type GormStageRepository struct {
	db *gorm.DB
}

func NewGormStageRepository(db *gorm.DB) *GormStageRepository {
	return &GormStageRepository{db: db}
}

// List returns all stages ordered by position.
func (r *GormStageRepository) List(ctx context.Context) ([]stage.Stage, error) {
	var dtos []StageDTO
	if err := r.db.WithContext(ctx).Order("position").Find(&dtos).Error; err != nil {
		return nil, err
	}

	stages := make([]stage.Stage, 0, len(dtos))
	for _, dto := range dtos {
		s, err := stage.NewStage(dto.Code, dto.DisplayName, dto.Position)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}

	return stages, nil
}

// Upsert inserts stages or updates them by code. Positions may be swapped
// within one transaction; uniqueness is checked at commit.
func (r *GormStageRepository) Upsert(ctx context.Context, stages []stage.Stage) error {
	if len(stages) == 0 {
		return nil
	}

	dtos := make([]StageDTO, 0, len(stages))
	for _, s := range stages {
		if err := s.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, StageDTO{Code: s.Code(), DisplayName: s.DisplayName(), Position: s.Position()})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "position"}),
		}).
		Create(&dtos).Error
	if _, ok := pgerr.AsViolation(err); ok {
		return errs.NewValueIsInvalidErrorWithCause("stages", err)
	}
	return err
}
