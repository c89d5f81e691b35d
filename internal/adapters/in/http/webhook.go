package http

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const (
	courierTokenHeader = "X-Courier-Token"
	maxWebhookBody     = 64 << 10
)

// VerifyCourierWebhook handles GET /api/v1/webhooks/courier.
func (s *Server) VerifyCourierWebhook(ctx echo.Context) error {
	return acknowledgeHandshake(ctx)
}

// ReceiveCourierEvent handles POST /api/v1/webhooks/courier. An empty body is
// a verification handshake and is answered without authentication or side
// effects.
func (s *Server) ReceiveCourierEvent(ctx echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody+1))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Unreadable request body"})
	}
	if len(body) > maxWebhookBody {
		return ctx.JSON(http.StatusRequestEntityTooLarge, Error{
			Code:    http.StatusRequestEntityTooLarge,
			Message: "Request body too large",
		})
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return acknowledgeHandshake(ctx)
	}

	if !s.courierTokenAccepted(ctx.Request().Header.Get(courierTokenHeader)) {
		s.logger.WarnContext(ctx.Request().Context(), "courier event with invalid token",
			"remote_ip", ctx.RealIP())
		return ctx.JSON(http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: "Invalid courier token"})
	}

	if err = s.spec.ValidateCourierEvent(body); err != nil {
		s.logger.WarnContext(ctx.Request().Context(), "malformed courier event", "error", err)
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid courier event: " + err.Error(),
		})
	}

	var event CourierEvent
	if err = json.Unmarshal(body, &event); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Invalid courier event"})
	}

	var orderID *kernel.UUID
	if event.OrderID != "" {
		id, parseErr := parseUUID("orderId", event.OrderID)
		if parseErr != nil {
			return s.writeError(ctx, parseErr)
		}
		orderID = &id
	}

	cmd, err := commands.NewIngestCourierEventCommand(orderID, event.ExternalOrderRef, event.ExternalStatusCode,
		event.Note, event.Lat, event.Lng)
	if err != nil {
		return s.writeError(ctx, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), s.webhook.Timeout)
	defer cancel()

	result, err := s.handlers.IngestCourierEvent.Handle(reqCtx, cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if !result.Applied {
		return ctx.JSON(http.StatusOK, CourierEventResult{Status: "skipped"})
	}

	entry := toHistoryEntry(result.Entry)
	return ctx.JSON(http.StatusOK, CourierEventResult{Status: "applied", Entry: &entry})
}

// courierTokenAccepted compares against every configured token without
// stopping at the first match.
func (s *Server) courierTokenAccepted(token string) bool {
	if token == "" {
		return false
	}

	accepted := 0
	for _, candidate := range s.webhook.Tokens {
		if candidate == "" {
			continue
		}
		accepted |= subtle.ConstantTimeCompare([]byte(token), []byte(candidate))
	}
	return accepted == 1
}

func acknowledgeHandshake(ctx echo.Context) error {
	if challenge := ctx.QueryParam("challenge"); challenge != "" {
		return ctx.String(http.StatusOK, challenge)
	}
	return ctx.NoContent(http.StatusOK)
}
