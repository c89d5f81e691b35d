package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
	"ordertracker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type RegisterOrderHandler interface {
	Handle(ctx context.Context, cmd commands.RegisterOrderCommand) error
}

type TransitionOrderHandler interface {
	Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (history.Entry, error)
}

type IngestCourierEventHandler interface {
	Handle(ctx context.Context, cmd commands.IngestCourierEventCommand) (commands.IngestCourierEventResult, error)
}

type GetCurrentStageHandler interface {
	Handle(ctx context.Context, query queries.GetCurrentStageQuery) (queries.GetCurrentStageQueryResponse, error)
}

type GetOrderHistoryHandler interface {
	Handle(ctx context.Context, query queries.GetOrderHistoryQuery) (queries.GetOrderHistoryQueryResponse, error)
}

type ListStagesHandler interface {
	Handle(ctx context.Context, query queries.ListStagesQuery) ([]queries.ListStagesQueryResponse, error)
}

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	RegisterOrder      RegisterOrderHandler
	TransitionOrder    TransitionOrderHandler
	IngestCourierEvent IngestCourierEventHandler
	GetCurrentStage    GetCurrentStageHandler
	GetOrderHistory    GetOrderHistoryHandler
	ListStages         ListStagesHandler
}

// WebhookConfig holds the courier webhook's shared secrets and timeout.
// Several tokens may be valid at once while one is being rotated.
type WebhookConfig struct {
	Tokens  []string
	Timeout time.Duration
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	handlers Handlers
	spec     *Spec
	webhook  WebhookConfig
	logger   *slog.Logger
}

func NewServer(handlers Handlers, spec *Spec, webhook WebhookConfig, logger *slog.Logger) *Server {
	if webhook.Timeout <= 0 {
		webhook.Timeout = 5 * time.Second
	}
	return &Server{
		handlers: handlers,
		spec:     spec,
		webhook:  webhook,
		logger:   logger.With("component", "http_server"),
	}
}

// ListStages handles GET /api/v1/stages.
func (s *Server) ListStages(ctx echo.Context) error {
	stages, err := s.handlers.ListStages.Handle(ctx.Request().Context(), queries.NewListStagesQuery())
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := make([]Stage, len(stages))
	for i, st := range stages {
		response[i] = toStage(st)
	}

	return ctx.JSON(http.StatusOK, response)
}

// RegisterOrder handles POST /api/v1/orders.
func (s *Server) RegisterOrder(ctx echo.Context) error {
	var req NewOrder
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	orderID := kernel.NewUUID()
	if req.OrderID != "" {
		id, err := parseUUID("orderId", req.OrderID)
		if err != nil {
			return s.writeError(ctx, err)
		}
		orderID = id
	}

	buyerID, buyerErr := parseUUID("buyerId", req.BuyerID)
	sellerID, sellerErr := parseUUID("sellerId", req.SellerID)
	productID, productErr := parseUUID("productId", req.ProductID)
	if err := errors.Join(buyerErr, sellerErr, productErr); err != nil {
		return s.writeError(ctx, err)
	}

	delivery, err := order.NewDeliveryDetails(
		req.Delivery.Address,
		req.Delivery.ContactName,
		req.Delivery.ContactPhone,
		req.Delivery.ContactEmail,
		req.Delivery.WindowStart,
		req.Delivery.WindowEnd,
	)
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewRegisterOrderCommand(orderID, buyerID, sellerID, productID, req.AmountMinor, delivery,
		req.ExternalOrderRef)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err = s.handlers.RegisterOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, OrderRegistered{OrderID: orderID.String()})
}

// TransitionOrder handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) TransitionOrder(ctx echo.Context, orderID string, params TransitionOrderParams) error {
	var req Transition
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	id, err := parseUUID("orderId", orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}
	userID, err := parseUUID("X-User-Id", params.XUserID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	actor, err := history.UserActor(userID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(id, actor, req.StageCode, req.Note, req.Lat, req.Lng)
	if err != nil {
		return s.writeError(ctx, err)
	}

	entry, err := s.handlers.TransitionOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toHistoryEntry(entry))
}

// GetCurrentStage handles GET /api/v1/orders/{orderId}/stage.
func (s *Server) GetCurrentStage(ctx echo.Context, orderID string) error {
	id, err := parseUUID("orderId", orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	query, err := queries.NewGetCurrentStageQuery(id)
	if err != nil {
		return s.writeError(ctx, err)
	}

	current, err := s.handlers.GetCurrentStage.Handle(ctx.Request().Context(), query)
	if errors.Is(err, history.ErrNoHistory) {
		return ctx.JSON(http.StatusOK, CurrentStage{OrderID: id.String(), Started: false})
	}
	if err != nil {
		return s.writeError(ctx, err)
	}

	changedAt := current.Entry.CreatedAt()
	return ctx.JSON(http.StatusOK, CurrentStage{
		OrderID: id.String(),
		Started: true,
		Stage: &Stage{
			Code:            current.Stage.Code(),
			DisplayName:     current.Stage.DisplayName(),
			Position:        current.Stage.Position(),
			ProgressPercent: current.ProgressPercent,
		},
		ChangedAt: &changedAt,
		Source:    current.Entry.Source().String(),
	})
}

// GetOrderHistory handles GET /api/v1/orders/{orderId}/history.
func (s *Server) GetOrderHistory(ctx echo.Context, orderID string, params GetOrderHistoryParams) error {
	id, err := parseUUID("orderId", orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	query, err := queries.NewGetOrderHistoryQuery(id, params.Cursor, limit)
	if err != nil {
		return s.writeError(ctx, err)
	}

	page, err := s.handlers.GetOrderHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := HistoryPage{
		Entries:    make([]HistoryEntry, len(page.Entries)),
		NextCursor: page.NextCursor,
	}
	for i, e := range page.Entries {
		response.Entries[i] = toHistoryEntry(e)
	}

	return ctx.JSON(http.StatusOK, response)
}

func parseUUID(param, value string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return id, nil
}
