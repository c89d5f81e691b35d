package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "ordertracker/internal/adapters/in/http"
	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/metrics"
	"ordertracker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const courierToken = "current-token"

type apiFixture struct {
	register   *MockRegisterOrderHandler
	transition *MockTransitionOrderHandler
	ingest     *MockIngestCourierEventHandler
	current    *MockGetCurrentStageHandler
	history    *MockGetOrderHistoryHandler
	stages     *MockListStagesHandler
	router     *echo.Echo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	spec, err := httpadapter.LoadSpec(context.Background())
	require.NoError(t, err)

	f := &apiFixture{
		register:   &MockRegisterOrderHandler{},
		transition: &MockTransitionOrderHandler{},
		ingest:     &MockIngestCourierEventHandler{},
		current:    &MockGetCurrentStageHandler{},
		history:    &MockGetOrderHistoryHandler{},
		stages:     &MockListStagesHandler{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httpadapter.NewServer(httpadapter.Handlers{
		RegisterOrder:      f.register,
		TransitionOrder:    f.transition,
		IngestCourierEvent: f.ingest,
		GetCurrentStage:    f.current,
		GetOrderHistory:    f.history,
		ListStages:         f.stages,
	}, spec, httpadapter.WebhookConfig{
		Tokens:  []string{"previous-token", courierToken},
		Timeout: time.Second,
	}, logger)

	reg := prometheus.NewRegistry()
	f.router = httpadapter.NewRouter(server, metrics.New(reg), reg, logger)

	t.Cleanup(func() {
		f.register.AssertExpectations(t)
		f.transition.AssertExpectations(t)
		f.ingest.AssertExpectations(t)
		f.current.AssertExpectations(t)
		f.history.AssertExpectations(t)
		f.stages.AssertExpectations(t)
	})
	return f
}

func (f *apiFixture) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWebhook_VerificationHandshake(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/webhooks/courier", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/webhooks/courier?challenge=abc123", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/webhooks/courier?challenge=xyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xyz", rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/webhooks/courier", "  \n", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.ingest.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestWebhook_Token(t *testing.T) {
	f := newAPIFixture(t)
	body := `{"externalOrderRef":"CR-1","externalStatusCode":"in_transit"}`

	rec := f.do(http.MethodPost, "/api/v1/webhooks/courier", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/webhooks/courier", body, map[string]string{"X-Courier-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.ingest.On("Handle", mock.Anything, mock.Anything).
		Return(commands.IngestCourierEventResult{}, nil).Once()
	rec = f.do(http.MethodPost, "/api/v1/webhooks/courier", body, map[string]string{"X-Courier-Token": "previous-token"})
	assert.Equal(t, http.StatusOK, rec.Code, "a rotated-out token stays valid while configured")
}

func TestWebhook_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"externalStatusCode":`},
		{name: "missing status code", body: `{"externalOrderRef":"CR-1"}`},
		{name: "missing order reference", body: `{"externalStatusCode":"in_transit"}`},
		{name: "latitude out of range", body: `{"externalOrderRef":"CR-1","externalStatusCode":"in_transit","lat":91,"lng":0}`},
		{name: "status code not a string", body: `{"externalOrderRef":"CR-1","externalStatusCode":7}`},
		{name: "order id not a uuid", body: `{"orderId":"nope","externalStatusCode":"in_transit"}`},
		{name: "blank status code", body: `{"externalOrderRef":"CR-1","externalStatusCode":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)

			rec := f.do(http.MethodPost, "/api/v1/webhooks/courier", tt.body,
				map[string]string{"X-Courier-Token": courierToken})

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			f.ingest.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhook_Outcomes(t *testing.T) {
	orderID := kernel.NewUUID()
	entry := history.RestoreEntry(12, orderID, "in_transit", "", nil, history.SourceExternalSystem, nil,
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	t.Run("applied", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingest.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.IngestCourierEventCommand) bool {
			lat, lng := cmd.Coordinate()
			return cmd.ExternalRef() == "CR-1" && cmd.ExternalCode() == "IN_TRANSIT" &&
				lat != nil && *lat == 52.5 && lng != nil && *lng == 13.4
		})).Return(commands.IngestCourierEventResult{Applied: true, InternalStage: "in_transit", Entry: entry}, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/webhooks/courier",
			`{"externalOrderRef":"CR-1","externalStatusCode":"IN_TRANSIT","lat":52.5,"lng":13.4,"carrier":"x"}`,
			map[string]string{"X-Courier-Token": courierToken})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := decode[httpadapter.CourierEventResult](t, rec)
		assert.Equal(t, "applied", result.Status)
		require.NotNil(t, result.Entry)
		assert.Equal(t, int64(12), result.Entry.Seq)
		assert.Equal(t, "external-system", result.Entry.Source)
	})

	t.Run("unknown code is skipped", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingest.On("Handle", mock.Anything, mock.Anything).
			Return(commands.IngestCourierEventResult{}, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/webhooks/courier",
			`{"orderId":"`+orderID.String()+`","externalStatusCode":"teleported"}`,
			map[string]string{"X-Courier-Token": courierToken})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"skipped"}`, rec.Body.String())
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingest.On("Handle", mock.Anything, mock.Anything).
			Return(commands.IngestCourierEventResult{}, errs.NewObjectNotFoundError("externalOrderRef", "CR-404")).Once()

		rec := f.do(http.MethodPost, "/api/v1/webhooks/courier",
			`{"externalOrderRef":"CR-404","externalStatusCode":"delivered"}`,
			map[string]string{"X-Courier-Token": courierToken})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingest.On("Handle", mock.Anything, mock.Anything).
			Return(commands.IngestCourierEventResult{}, context.DeadlineExceeded).Once()

		rec := f.do(http.MethodPost, "/api/v1/webhooks/courier",
			`{"externalOrderRef":"CR-1","externalStatusCode":"delivered"}`,
			map[string]string{"X-Courier-Token": courierToken})

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestTransitionOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	sellerID := kernel.NewUUID()
	target := "/api/v1/orders/" + orderID.String() + "/transitions"

	t.Run("applied", func(t *testing.T) {
		f := newAPIFixture(t)
		entry := history.RestoreEntry(3, orderID, "confirmed", "packed", nil, history.SourceSeller, &sellerID, time.Now())
		f.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionOrderCommand) bool {
			userID, isUser := cmd.Actor().UserID()
			return cmd.OrderID().IsEqual(orderID) && isUser && userID.IsEqual(sellerID) &&
				cmd.StageCode() == "confirmed" && cmd.Note() == "packed"
		})).Return(entry, nil).Once()

		rec := f.do(http.MethodPost, target, `{"stageCode":"confirmed","note":"packed"}`,
			map[string]string{"X-User-Id": sellerID.String()})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[httpadapter.HistoryEntry](t, rec)
		assert.Equal(t, "confirmed", got.StageCode)
		assert.Equal(t, sellerID.String(), got.ActorID)
		assert.Equal(t, "seller", got.Source)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{name: "buyer", err: errs.NewPermissionDeniedError("buyer", "transition order"), status: http.StatusForbidden},
			{name: "unknown stage", err: errs.NewValueIsInvalidError("stageCode"), status: http.StatusBadRequest},
			{name: "unknown order", err: errs.NewObjectNotFoundError("order", orderID.String()), status: http.StatusNotFound},
			{name: "conflict", err: errs.NewVersionIsInvalidError("order", nil), status: http.StatusConflict},
			{name: "store down", err: io.ErrUnexpectedEOF, status: http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newAPIFixture(t)
				f.transition.On("Handle", mock.Anything, mock.Anything).Return(history.Entry{}, tt.err).Once()

				rec := f.do(http.MethodPost, target, `{"stageCode":"confirmed"}`,
					map[string]string{"X-User-Id": sellerID.String()})

				assert.Equal(t, tt.status, rec.Code)
				body := decode[httpadapter.Error](t, rec)
				assert.Equal(t, tt.status, body.Code)
			})
		}
	})

	t.Run("missing user header", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, target, `{"stageCode":"confirmed"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed order id", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/orders/not-a-uuid/transitions", `{"stageCode":"confirmed"}`,
			map[string]string{"X-User-Id": sellerID.String()})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCurrentStage(t *testing.T) {
	orderID := kernel.NewUUID()
	target := "/api/v1/orders/" + orderID.String() + "/stage"

	t.Run("not started", func(t *testing.T) {
		f := newAPIFixture(t)
		f.current.On("Handle", mock.Anything, mock.Anything).
			Return(queries.GetCurrentStageQueryResponse{}, history.ErrNoHistory).Once()

		rec := f.do(http.MethodGet, target, "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"orderId":"`+orderID.String()+`","started":false}`, rec.Body.String())
	})

	t.Run("projected", func(t *testing.T) {
		f := newAPIFixture(t)
		inTransit, err := stage.NewStage("in_transit", "In transit", 2)
		require.NoError(t, err)
		entry := history.RestoreEntry(9, orderID, "in_transit", "", nil, history.SourceExternalSystem, nil, time.Now())
		f.current.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetCurrentStageQuery) bool {
			return q.OrderID().IsEqual(orderID)
		})).Return(queries.GetCurrentStageQueryResponse{
			OrderID:         orderID,
			Stage:           inTransit,
			ProgressPercent: 67,
			Entry:           entry,
		}, nil).Once()

		rec := f.do(http.MethodGet, target, "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[httpadapter.CurrentStage](t, rec)
		assert.True(t, got.Started)
		require.NotNil(t, got.Stage)
		assert.Equal(t, "in_transit", got.Stage.Code)
		assert.Equal(t, 67, got.Stage.ProgressPercent)
		assert.Equal(t, "external-system", got.Source)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newAPIFixture(t)
		f.current.On("Handle", mock.Anything, mock.Anything).
			Return(queries.GetCurrentStageQueryResponse{}, errs.NewObjectNotFoundError("order", orderID.String())).Once()

		rec := f.do(http.MethodGet, target, "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetOrderHistory(t *testing.T) {
	orderID := kernel.NewUUID()
	target := "/api/v1/orders/" + orderID.String() + "/history"

	t.Run("page with cursor", func(t *testing.T) {
		f := newAPIFixture(t)
		next := int64(7)
		entries := []history.Entry{
			history.RestoreEntry(8, orderID, "delivered", "", nil, history.SourceSeller, nil, time.Now()),
			history.RestoreEntry(7, orderID, "in_transit", "", nil, history.SourceExternalSystem, nil, time.Now()),
		}
		f.history.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderHistoryQuery) bool {
			return q.Limit() == 2 && q.Cursor() != nil && *q.Cursor() == 9
		})).Return(queries.GetOrderHistoryQueryResponse{Entries: entries, NextCursor: &next}, nil).Once()

		rec := f.do(http.MethodGet, target+"?limit=2&cursor=9", "", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decode[httpadapter.HistoryPage](t, rec)
		require.Len(t, page.Entries, 2)
		assert.Equal(t, int64(8), page.Entries[0].Seq)
		require.NotNil(t, page.NextCursor)
		assert.Equal(t, int64(7), *page.NextCursor)
	})

	t.Run("default limit", func(t *testing.T) {
		f := newAPIFixture(t)
		f.history.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderHistoryQuery) bool {
			return q.Limit() == queries.DefaultHistoryPageSize && q.Cursor() == nil
		})).Return(queries.GetOrderHistoryQueryResponse{Entries: []history.Entry{}}, nil).Once()

		rec := f.do(http.MethodGet, target, "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
	})

	t.Run("bad paging parameters", func(t *testing.T) {
		f := newAPIFixture(t)

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, target+"?limit=500", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, target+"?limit=abc", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, target+"?cursor=0", "", nil).Code)
	})
}

func TestRegisterOrder(t *testing.T) {
	buyerID, sellerID, productID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	body := `{
		"buyerId":"` + buyerID.String() + `",
		"sellerId":"` + sellerID.String() + `",
		"productId":"` + productID.String() + `",
		"amountMinor":1999,
		"delivery":{"address":"1 Main St","contactName":"Ann","contactEmail":"ann@example.com"},
		"externalOrderRef":"CR-1"
	}`

	t.Run("created", func(t *testing.T) {
		f := newAPIFixture(t)
		f.register.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RegisterOrderCommand) bool {
			return cmd.BuyerID().IsEqual(buyerID) && cmd.SellerID().IsEqual(sellerID) &&
				cmd.AmountMinor() == 1999 && cmd.ExternalRef() == "CR-1" &&
				cmd.Delivery().ContactEmail() == "ann@example.com"
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", body, nil)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		got := decode[httpadapter.OrderRegistered](t, rec)
		_, err := kernel.UUIDFromString(got.OrderID)
		require.NoError(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newAPIFixture(t)
		f.register.On("Handle", mock.Anything, mock.Anything).
			Return(errs.NewVersionIsInvalidError("order", nil)).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", body, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid ids and delivery", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/orders",
			`{"buyerId":"x","sellerId":"`+sellerID.String()+`","productId":"`+productID.String()+`",
			  "amountMinor":1,"delivery":{"address":"1 Main St","contactName":"Ann"}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(http.MethodPost, "/api/v1/orders",
			`{"buyerId":"`+buyerID.String()+`","sellerId":"`+sellerID.String()+`","productId":"`+productID.String()+`",
			  "amountMinor":1,"delivery":{"address":"","contactName":"Ann"}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListStages(t *testing.T) {
	f := newAPIFixture(t)
	f.stages.On("Handle", mock.Anything, mock.Anything).Return([]queries.ListStagesQueryResponse{
		{Code: "pending", DisplayName: "Pending", Position: 0, ProgressPercent: 0},
		{Code: "delivered", DisplayName: "Delivered", Position: 1, ProgressPercent: 100},
	}, nil).Once()

	rec := f.do(http.MethodGet, "/api/v1/stages", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stages := decode[[]httpadapter.Stage](t, rec)
	require.Len(t, stages, 2)
	assert.Equal(t, "delivered", stages[1].Code)
	assert.Equal(t, 100, stages[1].ProgressPercent)
}

func TestOperationalEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CourierEvent")

	rec = f.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[httpadapter.Error](t, rec).Code)
}
