package services

import (
	"fmt"
	"strings"

	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/pkg/errs"
)

const (
	PolicyPermissive  = "permissive"
	PolicyForwardOnly = "forward-only"
)

// TransitionPolicy decides whether an order may move from its current stage
// to next. current is empty for an order without history. Both codes are
// already known to be registered.
type TransitionPolicy interface {
	Check(registry *stage.Registry, current, next string) error
}

// NewTransitionPolicy builds the policy configured by name.
// exitStages only matter for forward-only.
func NewTransitionPolicy(name string, exitStages []string) (TransitionPolicy, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "", PolicyPermissive:
		return PermissiveTransitionPolicy{}, nil
	case PolicyForwardOnly:
		return NewForwardOnlyTransitionPolicy(exitStages), nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("transition policy",
			fmt.Errorf("%q is neither %q nor %q", name, PolicyPermissive, PolicyForwardOnly))
	}
}

// PermissiveTransitionPolicy allows any registered stage, including skips,
// regressions and re-selecting the current stage.
type PermissiveTransitionPolicy struct{}

func (PermissiveTransitionPolicy) Check(_ *stage.Registry, _, _ string) error {
	return nil
}

// ForwardOnlyTransitionPolicy forbids moving to a stage ranked below the
// current one unless the target is an exit stage such as cancelled.
type ForwardOnlyTransitionPolicy struct {
	exits map[string]struct{}
}

func NewForwardOnlyTransitionPolicy(exitStages []string) ForwardOnlyTransitionPolicy {
	exits := make(map[string]struct{}, len(exitStages))
	for _, code := range exitStages {
		if code = strings.TrimSpace(code); code != "" {
			exits[code] = struct{}{}
		}
	}
	return ForwardOnlyTransitionPolicy{exits: exits}
}

func (p ForwardOnlyTransitionPolicy) Check(registry *stage.Registry, current, next string) error {
	if current == "" {
		return nil
	}
	if _, ok := p.exits[next]; ok {
		return nil
	}

	from, err := registry.Rank(current)
	if err != nil {
		// a stage that left the registry does not pin the order
		return nil //nolint:nilerr // retired stage
	}
	to, err := registry.Rank(next)
	if err != nil {
		return err
	}

	if to < from {
		return errs.NewValueIsInvalidErrorWithCause("stageCode",
			fmt.Errorf("regression from %q to %q is not allowed", current, next))
	}
	return nil
}
