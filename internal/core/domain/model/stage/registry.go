package stage

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"ordertracker/internal/pkg/errs"
)

// ErrRegistryIsEmpty is returned when a registry is built from no stages.
var ErrRegistryIsEmpty = errors.New("stage registry is empty")

// Registry is an immutable, position-ordered set of stages.
//
// Example:
//
//	reg, _ := stage.NewRegistry(stages)
//	pct, err := reg.Progress("in_transit")
type Registry struct {
	stages []Stage
	rank   map[string]int
}

// NewRegistry sorts stages by position and rejects empty input, duplicate
// codes and duplicate positions.
func NewRegistry(stages []Stage) (*Registry, error) {
	if len(stages) == 0 {
		return nil, ErrRegistryIsEmpty
	}

	sorted := slices.Clone(stages)
	slices.SortFunc(sorted, func(a, b Stage) int { return a.position - b.position })

	rank := make(map[string]int, len(sorted))
	for i, s := range sorted {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := rank[s.code]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("stages", fmt.Errorf("duplicate code %q", s.code))
		}
		if i > 0 && sorted[i-1].position == s.position {
			return nil, errs.NewValueIsInvalidErrorWithCause("stages",
				fmt.Errorf("position %d used by %q and %q", s.position, sorted[i-1].code, s.code))
		}
		rank[s.code] = i
	}

	return &Registry{stages: sorted, rank: rank}, nil
}

// Stages returns a copy of the stages in position order.
func (r *Registry) Stages() []Stage {
	return slices.Clone(r.stages)
}

func (r *Registry) Len() int {
	return len(r.stages)
}

func (r *Registry) Contains(code string) bool {
	_, ok := r.rank[code]
	return ok
}

// Find returns the stage with the given code.
func (r *Registry) Find(code string) (Stage, error) {
	i, ok := r.rank[code]
	if !ok {
		return Stage{}, errs.NewValueIsInvalidErrorWithCause("stageCode", fmt.Errorf("%q is not a registered stage", code))
	}
	return r.stages[i], nil
}

// Rank returns the zero-based index of code in position order.
func (r *Registry) Rank(code string) (int, error) {
	i, ok := r.rank[code]
	if !ok {
		return 0, errs.NewValueIsInvalidErrorWithCause("stageCode", fmt.Errorf("%q is not a registered stage", code))
	}
	return i, nil
}

// Progress returns round(rank / (n - 1) * 100). The first stage is 0 and the
// last is 100; a single-stage registry reports 100.
func (r *Registry) Progress(code string) (int, error) {
	p, err := r.Rank(code)
	if err != nil {
		return 0, err
	}

	n := len(r.stages)
	if n == 1 {
		return 100, nil
	}

	return int(math.Round(float64(p) / float64(n-1) * 100)), nil
}
