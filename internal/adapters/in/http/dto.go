package http

import (
	"time"

	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/model/history"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Stage struct {
	Code            string `json:"code"`
	DisplayName     string `json:"displayName"`
	Position        int    `json:"position"`
	ProgressPercent int    `json:"progressPercent"`
}

type DeliveryDetails struct {
	Address      string     `json:"address"`
	ContactName  string     `json:"contactName"`
	ContactPhone string     `json:"contactPhone,omitempty"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	WindowStart  *time.Time `json:"windowStart,omitempty"`
	WindowEnd    *time.Time `json:"windowEnd,omitempty"`
}

type NewOrder struct {
	OrderID          string          `json:"orderId,omitempty"`
	BuyerID          string          `json:"buyerId"`
	SellerID         string          `json:"sellerId"`
	ProductID        string          `json:"productId"`
	AmountMinor      int64           `json:"amountMinor"`
	Delivery         DeliveryDetails `json:"delivery"`
	ExternalOrderRef string          `json:"externalOrderRef,omitempty"`
}

type OrderRegistered struct {
	OrderID string `json:"orderId"`
}

type Transition struct {
	StageCode string   `json:"stageCode"`
	Note      string   `json:"note,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

type HistoryEntry struct {
	Seq       int64     `json:"seq"`
	OrderID   string    `json:"orderId"`
	StageCode string    `json:"stageCode"`
	Note      string    `json:"note,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Source    string    `json:"source"`
	ActorID   string    `json:"actorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryPage struct {
	Entries    []HistoryEntry `json:"entries"`
	NextCursor *int64         `json:"nextCursor,omitempty"`
}

type CurrentStage struct {
	OrderID   string     `json:"orderId"`
	Started   bool       `json:"started"`
	Stage     *Stage     `json:"stage,omitempty"`
	ChangedAt *time.Time `json:"changedAt,omitempty"`
	Source    string     `json:"source,omitempty"`
}

type CourierEvent struct {
	ExternalOrderRef   string   `json:"externalOrderRef,omitempty"`
	OrderID            string   `json:"orderId,omitempty"`
	ExternalStatusCode string   `json:"externalStatusCode"`
	Note               string   `json:"note,omitempty"`
	Lat                *float64 `json:"lat,omitempty"`
	Lng                *float64 `json:"lng,omitempty"`
}

type CourierEventResult struct {
	Status string        `json:"status"`
	Entry  *HistoryEntry `json:"entry,omitempty"`
}

func toHistoryEntry(e history.Entry) HistoryEntry {
	dto := HistoryEntry{
		Seq:       e.Seq(),
		OrderID:   e.OrderID().String(),
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
		dto.ActorID = id.String()
	}
	return dto
}

func toStage(s queries.ListStagesQueryResponse) Stage {
	return Stage{
		Code:            s.Code,
		DisplayName:     s.DisplayName,
		Position:        s.Position,
		ProgressPercent: s.ProgressPercent,
	}
}
