package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindIDByExternalRef(ctx context.Context, ref string) (kernel.UUID, error) {
	args := m.Called(ctx, ref)
	id, _ := args.Get(0).(kernel.UUID)
	return id, args.Error(1)
}

func (m *MockOrderRepository) ListInconsistent(ctx context.Context, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, limit)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Append(ctx context.Context, e history.Entry) (history.Entry, error) {
	args := m.Called(ctx, e)
	if fn, ok := args.Get(0).(func(history.Entry) history.Entry); ok {
		return fn(e), args.Error(1)
	}
	stored, _ := args.Get(0).(history.Entry)
	return stored, args.Error(1)
}

func (m *MockHistoryRepository) Latest(ctx context.Context, orderID kernel.UUID) (*history.Entry, error) {
	args := m.Called(ctx, orderID)
	e, _ := args.Get(0).(*history.Entry)
	return e, args.Error(1)
}

type MockStageRepository struct{ mock.Mock }

func (m *MockStageRepository) List(ctx context.Context) ([]stage.Stage, error) {
	args := m.Called(ctx)
	stages, _ := args.Get(0).([]stage.Stage)
	return stages, args.Error(1)
}

func (m *MockStageRepository) Upsert(ctx context.Context, stages []stage.Stage) error {
	return m.Called(ctx, stages).Error(0)
}

type MockCourierPushRepository struct{ mock.Mock }

func (m *MockCourierPushRepository) Enqueue(ctx context.Context, p ports.CourierPush) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockCourierPushRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]ports.CourierPush, error) {
	args := m.Called(ctx, now, leaseUntil, limit)
	pushes, _ := args.Get(0).([]ports.CourierPush)
	return pushes, args.Error(1)
}

func (m *MockCourierPushRepository) MarkDelivered(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourierPushRepository) MarkRetry(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error {
	return m.Called(ctx, id, attempts, lastErr, next).Error(0)
}

func (m *MockCourierPushRepository) MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error {
	return m.Called(ctx, id, attempts, lastErr).Error(0)
}

// MockUoW satisfies every narrowed unit of work interface.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) HistoryRepository() ports.HistoryRepository {
	return m.Called().Get(0).(ports.HistoryRepository)
}

func (m *MockUoW) StageRepository() ports.StageRepository {
	return m.Called().Get(0).(ports.StageRepository)
}

func (m *MockUoW) CourierPushRepository() ports.CourierPushRepository {
	return m.Called().Get(0).(ports.CourierPushRepository)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create() commands.TransitionUoW {
	return m.Called().Get(0).(commands.TransitionUoW)
}

type MockReconcileUoWFactory struct{ mock.Mock }

func (m *MockReconcileUoWFactory) Create() commands.ReconcileUoW {
	return m.Called().Get(0).(commands.ReconcileUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockStageUoWFactory struct{ mock.Mock }

func (m *MockStageUoWFactory) Create() commands.StageUoW {
	return m.Called().Get(0).(commands.StageUoW)
}

type MockCourierPushUoWFactory struct{ mock.Mock }

func (m *MockCourierPushUoWFactory) Create() commands.CourierPushUoW {
	return m.Called().Get(0).(commands.CourierPushUoW)
}

type MockStageCatalog struct{ mock.Mock }

func (m *MockStageCatalog) Registry(ctx context.Context) (*stage.Registry, error) {
	args := m.Called(ctx)
	reg, _ := args.Get(0).(*stage.Registry)
	return reg, args.Error(1)
}

func (m *MockStageCatalog) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, change ports.StageChange) {
	m.Called(ctx, change)
}

type MockCourierClient struct{ mock.Mock }

func (m *MockCourierClient) PushStatus(ctx context.Context, ref, code string) error {
	return m.Called(ctx, ref, code).Error(0)
}

type MockTransitionHandler struct{ mock.Mock }

func (m *MockTransitionHandler) Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (history.Entry, error) {
	args := m.Called(ctx, cmd)
	e, _ := args.Get(0).(history.Entry)
	return e, args.Error(1)
}

type nopMetrics struct{}

func (nopMetrics) TransitionObserved(string, string)   {}
func (nopMetrics) WebhookEventObserved(string)         {}
func (nopMetrics) CourierPushObserved(string)          {}
func (nopMetrics) NotificationObserved(string, string) {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
