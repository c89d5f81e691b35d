package queries

import (
	"context"

	"ordertracker/internal/core/ports"
)

// ListStagesQueryHandler serves the registry from the in-process catalog.
type ListStagesQueryHandler struct {
	catalog ports.StageCatalog
}

func NewListStagesQueryHandler(catalog ports.StageCatalog) ListStagesQueryHandler {
	return ListStagesQueryHandler{catalog: catalog}
}

func (h ListStagesQueryHandler) Handle(ctx context.Context, query ListStagesQuery) ([]ListStagesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	registry, err := h.catalog.Registry(ctx)
	if err != nil {
		return nil, err
	}

	stages := make([]ListStagesQueryResponse, 0, registry.Len())
	for _, s := range registry.Stages() {
		pct, pctErr := registry.Progress(s.Code())
		if pctErr != nil {
			return nil, pctErr
		}
		stages = append(stages, ListStagesQueryResponse{
			Code:            s.Code(),
			DisplayName:     s.DisplayName(),
			Position:        s.Position(),
			ProgressPercent: pct,
		})
	}

	return stages, nil
}
