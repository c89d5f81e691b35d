package http_test

import (
	"context"

	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/model/history"

	"github.com/stretchr/testify/mock"
)

type MockRegisterOrderHandler struct {
	mock.Mock
}

func (m *MockRegisterOrderHandler) Handle(ctx context.Context, cmd commands.RegisterOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockTransitionOrderHandler struct {
	mock.Mock
}

func (m *MockTransitionOrderHandler) Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (history.Entry, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(history.Entry), args.Error(1)
}

type MockIngestCourierEventHandler struct {
	mock.Mock
}

func (m *MockIngestCourierEventHandler) Handle(
	ctx context.Context,
	cmd commands.IngestCourierEventCommand,
) (commands.IngestCourierEventResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.IngestCourierEventResult), args.Error(1)
}

type MockGetCurrentStageHandler struct {
	mock.Mock
}

func (m *MockGetCurrentStageHandler) Handle(
	ctx context.Context,
	query queries.GetCurrentStageQuery,
) (queries.GetCurrentStageQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetCurrentStageQueryResponse), args.Error(1)
}

type MockGetOrderHistoryHandler struct {
	mock.Mock
}

func (m *MockGetOrderHistoryHandler) Handle(
	ctx context.Context,
	query queries.GetOrderHistoryQuery,
) (queries.GetOrderHistoryQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetOrderHistoryQueryResponse), args.Error(1)
}

type MockListStagesHandler struct {
	mock.Mock
}

func (m *MockListStagesHandler) Handle(ctx context.Context, query queries.ListStagesQuery) ([]queries.ListStagesQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.ListStagesQueryResponse), args.Error(1)
}
