package queries

import (
	"errors"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)

var (
	ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
		"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
	)
)

// GetOrderHistoryQuery pages through an order's ledger, newest entry first.
// The cursor is the sequence number of the last entry of the previous page.
//
// Example:
//
//	query, _ := NewGetOrderHistoryQuery(orderID, nil, 0)
//	page, err := handler.Handle(ctx, query)
//	for page.NextCursor != nil {
//	    query, _ = NewGetOrderHistoryQuery(orderID, page.NextCursor, 0)
//	    page, err = handler.Handle(ctx, query)
//	}
type GetOrderHistoryQuery struct {
	orderID kernel.UUID
	cursor  *int64
	limit   int

	guard guard.ConstructorGuard
}

// NewGetOrderHistoryQuery creates a page request. A zero limit means
// DefaultHistoryPageSize.
func NewGetOrderHistoryQuery(orderID kernel.UUID, cursor *int64, limit int) (GetOrderHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderHistoryQuery{}, err
	}

	if limit == 0 {
		limit = DefaultHistoryPageSize
	}
	if limit < 1 || limit > MaxHistoryPageSize {
		return GetOrderHistoryQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxHistoryPageSize)
	}

	if cursor != nil && *cursor <= 0 {
		return GetOrderHistoryQuery{}, errs.NewValueIsInvalidError("cursor")
	}

	return GetOrderHistoryQuery{
		orderID: orderID,
		cursor:  cursor,
		limit:   limit,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderHistoryQuery) Cursor() *int64       { return q.cursor }
func (q GetOrderHistoryQuery) Limit() int           { return q.limit }

// GetOrderHistoryQueryResponse is one page of the ledger. NextCursor is nil on
// the last page.
type GetOrderHistoryQueryResponse struct {
	Entries    []history.Entry
	NextCursor *int64
}
