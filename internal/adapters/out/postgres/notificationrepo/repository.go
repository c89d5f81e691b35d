// Package notificationrepo is the in-app notification sink: notifications are
// rows the marketplace front end reads per user.
package notificationrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ordertracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel is the metrics label of this sink.
const Channel = "in_app"

type NotificationDTO struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"type:uuid"`
	TemplateKind string
	Payload      []byte `gorm:"type:jsonb"`
	CreatedAt    time.Time
	ReadAt       *time.Time
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

// GormNotificationSink implements ports.NotificationSink using GORM.
type GormNotificationSink struct {
	db *gorm.DB
}

func NewGormNotificationSink(db *gorm.DB) *GormNotificationSink {
	return &GormNotificationSink{db: db}
}

func (s *GormNotificationSink) Channel() string {
	return Channel
}

func (s *GormNotificationSink) Send(ctx context.Context, userID kernel.UUID, templateKind string, payload map[string]any) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	dto := NotificationDTO{
		UserID:       userID.Value(),
		TemplateKind: templateKind,
		Payload:      raw,
		CreatedAt:    time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Create(&dto).Error
}
