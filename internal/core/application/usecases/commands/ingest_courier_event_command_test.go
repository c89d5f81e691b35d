package commands_test

import (
	"testing"

	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIngestCourierEventCommand(t *testing.T) {
	id := kernel.NewUUID()

	tests := []struct {
		name    string
		orderID *kernel.UUID
		ref     string
		code    string
		wantErr error
	}{
		{name: "by order id", orderID: &id, code: "delivered"},
		{name: "by external ref", ref: " CR-1 ", code: "delivered"},
		{name: "no target", code: "delivered", wantErr: errs.ErrValueIsRequired},
		{name: "zero order id", orderID: &kernel.UUID{}, code: "delivered", wantErr: errs.ErrValueIsInvalid},
		{name: "blank code", ref: "CR-1", code: "  ", wantErr: errs.ErrValueIsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := commands.NewIngestCourierEventCommand(tt.orderID, tt.ref, tt.code, "", nil, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, cmd.Validate())
			assert.Equal(t, tt.code, cmd.ExternalCode())
		})
	}
}

func TestIngestCourierEventCommand_TrimsReference(t *testing.T) {
	cmd, err := commands.NewIngestCourierEventCommand(nil, "  CR-1\n", "in_transit", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "CR-1", cmd.ExternalRef())
	assert.Nil(t, cmd.OrderID())
}
