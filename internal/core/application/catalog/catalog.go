// Package catalog keeps the stage registry in memory for the process
// lifetime. The registry is loaded once from the store and replaced only by
// an explicit Refresh, e.g. after seeding.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"ordertracker/internal/core/domain/model/stage"

	gocache "github.com/patrickmn/go-cache"
)

const registryKey = "stage-registry"

// StageLister reads the stage registry table.
type StageLister interface {
	List(ctx context.Context) ([]stage.Stage, error)
}

// Catalog implements ports.StageCatalog on top of go-cache.
type Catalog struct {
	lister StageLister
	cache  *gocache.Cache
	logger *slog.Logger
}

func New(lister StageLister, logger *slog.Logger) *Catalog {
	return &Catalog{
		lister: lister,
		cache:  gocache.New(gocache.NoExpiration, 0),
		logger: logger.With("component", "stage_catalog"),
	}
}

// Registry returns the cached registry, loading it on first use.
func (c *Catalog) Registry(ctx context.Context) (*stage.Registry, error) {
	if cached, ok := c.cache.Get(registryKey); ok {
		if reg, isReg := cached.(*stage.Registry); isReg {
			return reg, nil
		}
	}

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	cached, _ := c.cache.Get(registryKey)
	reg, _ := cached.(*stage.Registry)
	return reg, nil
}

// Refresh reloads the registry. An empty table yields stage.ErrRegistryIsEmpty
// and keeps the previous registry in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	stages, err := c.lister.List(ctx)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}

	reg, err := stage.NewRegistry(stages)
	if err != nil {
		return fmt.Errorf("build stage registry: %w", err)
	}

	c.cache.Set(registryKey, reg, gocache.NoExpiration)
	c.logger.InfoContext(ctx, "stage registry loaded", "stages", reg.Len())
	return nil
}
