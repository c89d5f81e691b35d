package queries_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ordertracker/internal/adapters/out/postgres/historyrepo"
	"ordertracker/internal/adapters/out/postgres/orderrepo"
	"ordertracker/internal/adapters/out/postgres/pgtest"
	"ordertracker/internal/adapters/out/postgres/stagerepo"
	"ordertracker/internal/core/application/catalog"
	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/order"
	"ordertracker/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type LedgerQueriesIntegrationTestSuite struct {
	suite.Suite
	pg       *pgtest.Database
	current  queries.GetCurrentStageQueryHandler
	history  queries.GetOrderHistoryQueryHandler
	order    *order.Order
	sellerID kernel.UUID
}

func (suite *LedgerQueriesIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *LedgerQueriesIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	suite.Require().NoError(suite.pg.Reset(pgtest.ScenarioStages...))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stageCatalog := catalog.New(stagerepo.NewGormStageRepository(suite.pg.DB), logger)
	suite.current = queries.NewGetCurrentStageQueryHandler(suite.pg.DB, stageCatalog)
	suite.history = queries.NewGetOrderHistoryQueryHandler(suite.pg.DB)

	details, err := order.NewDeliveryDetails("1 Main St", "Ann", "", "", nil, nil)
	suite.Require().NoError(err)
	suite.sellerID = kernel.NewUUID()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), suite.sellerID, kernel.NewUUID(), 2500, details, "",
		time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(orderrepo.NewGormOrderRepository(suite.pg.DB).Add(ctx, o))
	suite.order = o
}

func (suite *LedgerQueriesIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *LedgerQueriesIntegrationTestSuite) appendEntry(stageCode string, actor history.Actor) history.Entry {
	e, err := history.NewEntry(suite.order.ID(), stageCode, "", nil, actor, time.Now())
	suite.Require().NoError(err)
	stored, err := historyrepo.NewGormHistoryRepository(suite.pg.DB).Append(context.Background(), e)
	suite.Require().NoError(err)
	return stored
}

func (suite *LedgerQueriesIntegrationTestSuite) seller() history.Actor {
	actor, err := history.UserActor(suite.sellerID)
	suite.Require().NoError(err)
	return actor
}

func (suite *LedgerQueriesIntegrationTestSuite) currentStage(orderID kernel.UUID) (queries.GetCurrentStageQueryResponse, error) {
	query, err := queries.NewGetCurrentStageQuery(orderID)
	suite.Require().NoError(err)
	return suite.current.Handle(context.Background(), query)
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetCurrentStage_Scenario() {
	_, err := suite.currentStage(suite.order.ID())
	suite.Require().ErrorIs(err, history.ErrNoHistory)

	steps := []struct {
		stage    string
		actor    history.Actor
		progress int
	}{
		{stage: "confirmed", actor: suite.seller(), progress: 33},
		{stage: "in_transit", actor: history.ExternalSystemActor(), progress: 67},
		{stage: "delivered", actor: suite.seller(), progress: 100},
	}

	for _, step := range steps {
		stored := suite.appendEntry(step.stage, step.actor)

		current, currentErr := suite.currentStage(suite.order.ID())
		suite.Require().NoError(currentErr)
		suite.Equal(step.stage, current.Stage.Code())
		suite.Equal(step.progress, current.ProgressPercent)
		suite.Equal(stored.Seq(), current.Entry.Seq())
		suite.Equal(step.actor.Source(), current.Entry.Source())
	}
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetCurrentStage_IgnoresStaleCache() {
	suite.appendEntry("in_transit", suite.seller())

	// the order row still says nothing happened
	current, err := suite.currentStage(suite.order.ID())
	suite.Require().NoError(err)
	suite.Equal("in_transit", current.Stage.Code())
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetCurrentStage_UnknownOrder() {
	_, err := suite.currentStage(kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetOrderHistory_Pages() {
	stored := make([]history.Entry, 0, 5)
	for _, code := range []string{"pending", "confirmed", "in_transit", "confirmed", "delivered"} {
		stored = append(stored, suite.appendEntry(code, suite.seller()))
	}

	var (
		cursor *int64
		seen   []int64
	)
	for pages := 0; pages < 5; pages++ {
		query, err := queries.NewGetOrderHistoryQuery(suite.order.ID(), cursor, 2)
		suite.Require().NoError(err)

		page, err := suite.history.Handle(context.Background(), query)
		suite.Require().NoError(err)
		suite.LessOrEqual(len(page.Entries), 2)
		for _, e := range page.Entries {
			seen = append(seen, e.Seq())
		}

		if page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	want := make([]int64, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		want = append(want, stored[i].Seq())
	}
	suite.Equal(want, seen, "most recent first, every entry exactly once")
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetOrderHistory_FullPageHasNoCursor() {
	suite.appendEntry("pending", suite.seller())
	suite.appendEntry("confirmed", suite.seller())

	query, err := queries.NewGetOrderHistoryQuery(suite.order.ID(), nil, 2)
	suite.Require().NoError(err)

	page, err := suite.history.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Len(page.Entries, 2)
	suite.Nil(page.NextCursor)
	suite.Equal("confirmed", page.Entries[0].StageCode())
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetOrderHistory_RestoresEveryColumn() {
	lat, lng := 52.52, 13.405
	point, err := kernel.NewOptionalGeoPoint(&lat, &lng)
	suite.Require().NoError(err)
	e, err := history.NewEntry(suite.order.ID(), "in_transit", "left the depot", point, suite.seller(), time.Now())
	suite.Require().NoError(err)
	seller, err := historyrepo.NewGormHistoryRepository(suite.pg.DB).Append(context.Background(), e)
	suite.Require().NoError(err)
	external := suite.appendEntry("delivered", history.ExternalSystemActor())

	query, err := queries.NewGetOrderHistoryQuery(suite.order.ID(), nil, 0)
	suite.Require().NoError(err)
	page, err := suite.history.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(page.Entries, 2)

	got := page.Entries[0]
	suite.Equal(external.Seq(), got.Seq())
	suite.Equal(history.SourceExternalSystem, got.Source())
	suite.Nil(got.ActorID())
	suite.Nil(got.Point())

	got = page.Entries[1]
	suite.Equal(seller.Seq(), got.Seq())
	suite.True(got.OrderID().IsEqual(suite.order.ID()))
	suite.Equal("in_transit", got.StageCode())
	suite.Equal("left the depot", got.Note())
	suite.Equal(history.SourceSeller, got.Source())
	suite.Require().NotNil(got.ActorID())
	suite.True(got.ActorID().IsEqual(suite.sellerID))
	suite.Require().NotNil(got.Point())
	suite.InDelta(lat, got.Point().Lat(), 1e-9)
	suite.InDelta(lng, got.Point().Lng(), 1e-9)
	suite.WithinDuration(seller.CreatedAt(), got.CreatedAt(), time.Millisecond)
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetOrderHistory_NotStartedOrder() {
	query, err := queries.NewGetOrderHistoryQuery(suite.order.ID(), nil, 0)
	suite.Require().NoError(err)

	page, err := suite.history.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(page.Entries)
	suite.Nil(page.NextCursor)
}

func (suite *LedgerQueriesIntegrationTestSuite) TestGetOrderHistory_UnknownOrder() {
	query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID(), nil, 0)
	suite.Require().NoError(err)

	_, err = suite.history.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestLedgerQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerQueriesIntegrationTestSuite))
}
