package commands_test

import (
	"context"
	"testing"
	"time"

	"ordertracker/internal/core/application/courierstatus"
	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	nopMetrics
	webhook []string
}

func (m *recordingMetrics) WebhookEventObserved(outcome string) { m.webhook = append(m.webhook, outcome) }

type ingestFixture struct {
	catalog    *MockStageCatalog
	resolver   *MockOrderRepository
	transition *MockTransitionHandler
	metrics    *recordingMetrics
	handler    commands.IngestCourierEventCommandHandler
}

func newIngestFixture(t *testing.T) ingestFixture {
	f := ingestFixture{
		catalog:    new(MockStageCatalog),
		resolver:   new(MockOrderRepository),
		transition: new(MockTransitionHandler),
		metrics:    &recordingMetrics{},
	}
	f.catalog.On("Registry", mock.Anything).Return(scenarioRegistry(t), nil).Maybe()
	f.handler = commands.NewIngestCourierEventCommandHandler(courierstatus.Default(), f.catalog, f.resolver,
		f.transition, f.metrics, discardLogger())
	return f
}

func externalTransition(orderID kernel.UUID, stageCode string) any {
	return mock.MatchedBy(func(cmd commands.TransitionOrderCommand) bool {
		return cmd.OrderID().IsEqual(orderID) && cmd.StageCode() == stageCode && cmd.Actor().IsExternalSystem()
	})
}

func TestIngestCourierEventCommandHandler_AppliesByExternalRef(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)
	orderID := kernel.NewUUID()
	lat, lng := 1.5, 2.5
	cmd, err := commands.NewIngestCourierEventCommand(nil, "CR-7", "  IN_TRANSIT ", "hub scan", &lat, &lng)
	require.NoError(t, err)

	stored := history.RestoreEntry(5, orderID, "in_transit", "hub scan", nil, history.SourceExternalSystem, nil, time.Now())
	f.resolver.On("FindIDByExternalRef", ctx, "CR-7").Return(orderID, nil).Once()
	f.transition.On("Handle", ctx, externalTransition(orderID, "in_transit")).Return(stored, nil).Once()

	result, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "in_transit", result.InternalStage)
	assert.Equal(t, int64(5), result.Entry.Seq())
	assert.Equal(t, []string{"applied"}, f.metrics.webhook)
	f.resolver.AssertExpectations(t)
	f.transition.AssertExpectations(t)
}

func TestIngestCourierEventCommandHandler_MapsExternalVocabulary(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIngestCourierEventCommand(&orderID, "", "accepted", "", nil, nil)

	f.transition.On("Handle", ctx, externalTransition(orderID, "confirmed")).
		Return(history.RestoreEntry(1, orderID, "confirmed", "", nil, history.SourceExternalSystem, nil, time.Now()), nil).
		Once()

	result, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.InternalStage)
	f.resolver.AssertNotCalled(t, "FindIDByExternalRef", mock.Anything, mock.Anything)
	f.transition.AssertExpectations(t)
}

func TestIngestCourierEventCommandHandler_SkipsUnknownCodes(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "code not in vocabulary", code: "lost_in_space"},
		{name: "code maps to unregistered stage", code: "picked_up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestFixture(t)
			cmd, _ := commands.NewIngestCourierEventCommand(nil, "CR-7", tt.code, "", nil, nil)

			result, err := f.handler.Handle(context.Background(), cmd)

			require.NoError(t, err)
			assert.False(t, result.Applied)
			assert.Equal(t, []string{"skipped"}, f.metrics.webhook)
			f.resolver.AssertNotCalled(t, "FindIDByExternalRef", mock.Anything, mock.Anything)
			f.transition.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestIngestCourierEventCommandHandler_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)
	cmd, _ := commands.NewIngestCourierEventCommand(nil, "CR-404", "delivered", "", nil, nil)

	f.resolver.On("FindIDByExternalRef", ctx, "CR-404").
		Return(kernel.UUID{}, errs.NewObjectNotFoundError("externalOrderRef", "CR-404")).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Equal(t, []string{"not_found"}, f.metrics.webhook)
	f.transition.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestIngestCourierEventCommandHandler_PropagatesValidation(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)
	orderID := kernel.NewUUID()
	lat, lng := 95.0, 0.0
	cmd, _ := commands.NewIngestCourierEventCommand(&orderID, "", "delivered", "", &lat, &lng)

	f.transition.On("Handle", ctx, externalTransition(orderID, "delivered")).
		Return(nil, errs.NewValueIsOutOfRangeError("lat", lat, -90.0, 90.0)).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	assert.Equal(t, []string{"rejected"}, f.metrics.webhook)
}
