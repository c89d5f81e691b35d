package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of openapi.json.
type ServerInterface interface {
	// (GET /api/v1/stages)
	ListStages(ctx echo.Context) error
	// (POST /api/v1/orders)
	RegisterOrder(ctx echo.Context) error
	// (POST /api/v1/orders/{orderId}/transitions)
	TransitionOrder(ctx echo.Context, orderID string, params TransitionOrderParams) error
	// (GET /api/v1/orders/{orderId}/stage)
	GetCurrentStage(ctx echo.Context, orderID string) error
	// (GET /api/v1/orders/{orderId}/history)
	GetOrderHistory(ctx echo.Context, orderID string, params GetOrderHistoryParams) error
	// (GET /api/v1/webhooks/courier)
	VerifyCourierWebhook(ctx echo.Context) error
	// (POST /api/v1/webhooks/courier)
	ReceiveCourierEvent(ctx echo.Context) error
}

type TransitionOrderParams struct {
	XUserID string
}

type GetOrderHistoryParams struct {
	Cursor *int64
	Limit  *int
}

// ServerInterfaceWrapper binds request parameters before calling the server.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) ListStages(ctx echo.Context) error {
	return w.Handler.ListStages(ctx)
}

func (w *ServerInterfaceWrapper) RegisterOrder(ctx echo.Context) error {
	return w.Handler.RegisterOrder(ctx)
}

func (w *ServerInterfaceWrapper) TransitionOrder(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	var params TransitionOrderParams
	header := ctx.Request().Header.Values("X-User-Id")
	if len(header) != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Expected one header parameter 'X-User-Id'")
	}
	err = runtime.BindStyledParameterWithOptions("simple", "X-User-Id", header[0], &params.XUserID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-User-Id: %s", err))
	}

	return w.Handler.TransitionOrder(ctx, orderID, params)
}

func (w *ServerInterfaceWrapper) GetCurrentStage(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetCurrentStage(ctx, orderID)
}

func (w *ServerInterfaceWrapper) GetOrderHistory(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	var params GetOrderHistoryParams
	err = runtime.BindQueryParameter("form", true, false, "cursor", ctx.QueryParams(), &params.Cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter cursor: %s", err))
	}
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.GetOrderHistory(ctx, orderID, params)
}

func (w *ServerInterfaceWrapper) VerifyCourierWebhook(ctx echo.Context) error {
	return w.Handler.VerifyCourierWebhook(ctx)
}

func (w *ServerInterfaceWrapper) ReceiveCourierEvent(ctx echo.Context) error {
	return w.Handler.ReceiveCourierEvent(ctx)
}

func bindOrderID(ctx echo.Context) (string, error) {
	var orderID string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderID, nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts every operation of si on router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET("/api/v1/stages", wrapper.ListStages)
	router.POST("/api/v1/orders", wrapper.RegisterOrder)
	router.POST("/api/v1/orders/:orderId/transitions", wrapper.TransitionOrder)
	router.GET("/api/v1/orders/:orderId/stage", wrapper.GetCurrentStage)
	router.GET("/api/v1/orders/:orderId/history", wrapper.GetOrderHistory)
	router.GET("/api/v1/webhooks/courier", wrapper.VerifyCourierWebhook)
	router.POST("/api/v1/webhooks/courier", wrapper.ReceiveCourierEvent)
}
