package stage_test

import (
	"testing"

	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStage(t *testing.T) {
	t.Run("should trim and keep values", func(t *testing.T) {
		s, err := stage.NewStage("  in_transit ", " In transit ", 2)

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, "in_transit", s.Code())
		assert.Equal(t, "In transit", s.DisplayName())
		assert.Equal(t, 2, s.Position())
		assert.Equal(t, "in_transit(2)", s.String())
	})

	t.Run("should collect all violations", func(t *testing.T) {
		_, err := stage.NewStage("", "", -1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "code")
		assert.Contains(t, err.Error(), "displayName")
		assert.Contains(t, err.Error(), "position")
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("should reject whitespace inside code", func(t *testing.T) {
		_, err := stage.NewStage("in transit", "In transit", 2)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var s stage.Stage

		require.ErrorIs(t, s.Validate(), stage.ErrStageIsNotConstructed)
	})
}
