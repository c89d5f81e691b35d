package queries

import (
	"context"
	"math"

	"gorm.io/gorm"
)

type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for an unknown order. An order
// without history yields an empty page.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) (GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	if err := requireOrder(ctx, h.db, query.OrderID()); err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	before := int64(math.MaxInt64)
	if query.Cursor() != nil {
		before = *query.Cursor()
	}

	// one extra row tells whether another page follows
	entries, err := selectEntries(ctx, h.db, `
		SELECT seq, order_id, stage_code, note, lat, lng, source, actor_id, created_at
		FROM status_history
		WHERE order_id = ? AND seq < ?
		ORDER BY seq DESC
		LIMIT ?
	`, query.OrderID().Value(), before, query.Limit()+1)
	if err != nil {
		return GetOrderHistoryQueryResponse{}, err
	}

	resp := GetOrderHistoryQueryResponse{Entries: entries}
	if len(entries) > query.Limit() {
		resp.Entries = entries[:query.Limit()]
		next := resp.Entries[len(resp.Entries)-1].Seq()
		resp.NextCursor = &next
	}

	return resp, nil
}
