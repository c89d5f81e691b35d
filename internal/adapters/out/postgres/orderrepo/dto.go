// Package orderrepo persists order aggregates with GORM.
package orderrepo

import (
	"time"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the row of the orders table.
type OrderDTO struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"`
	BuyerID            uuid.UUID   `gorm:"type:uuid"`
	SellerID           uuid.UUID   `gorm:"type:uuid"`
	ProductID          uuid.UUID   `gorm:"type:uuid"`
	AmountMinor        int64
	Delivery           DeliveryDTO `gorm:"embedded"`
	ExternalRef        *string
	CurrentStageCode   *string
	LastStatusChangeAt *time.Time
	DisputeState       string
	Version            int64
	CreatedAt          time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// DeliveryDTO holds the delivery details columns embedded in the orders row.
type DeliveryDTO struct {
	DeliveryAddress string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	WindowStart     *time.Time
	WindowEnd       *time.Time
}

func fromDomain(o *order.Order) OrderDTO {
	d := o.Delivery()
	delivery := DeliveryDTO{
		DeliveryAddress: d.Address(),
		ContactName:     d.ContactName(),
		ContactPhone:    d.ContactPhone(),
		ContactEmail:    d.ContactEmail(),
	}
	if w := d.Window(); w != nil {
		delivery.WindowStart, delivery.WindowEnd = &w.Start, &w.End
	}

	return OrderDTO{
		ID:                 o.ID().Value(),
		BuyerID:            o.BuyerID().Value(),
		SellerID:           o.SellerID().Value(),
		ProductID:          o.ProductID().Value(),
		AmountMinor:        o.AmountMinor(),
		Delivery:           delivery,
		ExternalRef:        optional(o.ExternalRef()),
		CurrentStageCode:   optional(o.CurrentStageCode()),
		LastStatusChangeAt: o.LastStatusChangeAt(),
		DisputeState:       o.DisputeState().String(),
		Version:            o.Version(),
		CreatedAt:          o.CreatedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{dto.ID, dto.BuyerID, dto.SellerID, dto.ProductID} {
		id, err := kernel.UUIDFromGoogle(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	delivery, err := order.NewDeliveryDetails(
		dto.Delivery.DeliveryAddress,
		dto.Delivery.ContactName,
		dto.Delivery.ContactPhone,
		dto.Delivery.ContactEmail,
		dto.Delivery.WindowStart,
		dto.Delivery.WindowEnd,
	)
	if err != nil {
		return nil, err
	}

	dispute, err := order.ParseDisputeState(dto.DisputeState)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(ids[0], ids[1], ids[2], ids[3],
		dto.AmountMinor,
		delivery,
		deref(dto.ExternalRef),
		deref(dto.CurrentStageCode),
		dto.LastStatusChangeAt,
		dispute,
		dto.Version,
		dto.CreatedAt,
	)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
