package stage

import (
	"errors"
	"fmt"
	"strings"

	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

// ErrStageIsNotConstructed is returned when a zero-value Stage is validated.
var ErrStageIsNotConstructed = errors.New("Stage must be created via NewStage constructor")

// Stage is one named step of the delivery lifecycle.
type Stage struct { //nolint:recvcheck //using for validation
	code        string
	displayName string
	position    int

	guard guard.ConstructorGuard
}

// NewStage validates and creates a stage.
// Code is trimmed and must not contain whitespace; position must be non-negative.
func NewStage(code, displayName string, position int) (Stage, error) {
	s := Stage{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setCode(code),
		s.setDisplayName(displayName),
		s.setPosition(position),
	); err != nil {
		return Stage{}, err
	}

	return s, nil
}

func (s Stage) Validate() error {
	return s.guard.Validate(ErrStageIsNotConstructed)
}

func (s Stage) Code() string {
	return s.code
}

func (s Stage) DisplayName() string {
	return s.displayName
}

func (s Stage) Position() int {
	return s.position
}

func (s Stage) String() string {
	return fmt.Sprintf("%s(%d)", s.code, s.position)
}

func (s *Stage) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	if strings.ContainsAny(code, " \t\r\n") {
		return errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("%q contains whitespace", code))
	}

	s.code = code
	return nil
}

func (s *Stage) setDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return errs.NewValueIsRequiredError("displayName")
	}

	s.displayName = displayName
	return nil
}

func (s *Stage) setPosition(position int) error {
	if position < 0 {
		return errs.NewValueIsInvalidErrorWithCause("position", fmt.Errorf("%d is negative", position))
	}

	s.position = position
	return nil
}
