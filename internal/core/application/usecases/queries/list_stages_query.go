package queries

import (
	"errors"

	"ordertracker/internal/pkg/guard"
)

var (
	ErrListStagesQueryIsNotConstructed = errors.New(
		"ListStagesQuery must be created via NewListStagesQuery constructor",
	)
)

// ListStagesQuery returns the stage registry in position order.
type ListStagesQuery struct {
	guard guard.ConstructorGuard
}

func NewListStagesQuery() ListStagesQuery {
	return ListStagesQuery{guard: guard.NewConstructorGuard()}
}

func (q ListStagesQuery) Validate() error {
	return q.guard.Validate(ErrListStagesQueryIsNotConstructed)
}

// ListStagesQueryResponse is one registered stage with the progress an order
// shows while it sits in that stage.
type ListStagesQueryResponse struct {
	Code            string
	DisplayName     string
	Position        int
	ProgressPercent int
}
