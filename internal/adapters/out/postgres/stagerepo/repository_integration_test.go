package stagerepo_test

import (
	"context"
	"testing"

	"ordertracker/internal/adapters/out/postgres/pgtest"
	"ordertracker/internal/adapters/out/postgres/stagerepo"
	"ordertracker/internal/core/domain/model/stage"

	"github.com/stretchr/testify/suite"
)

type StageRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg *pgtest.Database
}

func (suite *StageRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *StageRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Reset())
}

func (suite *StageRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *StageRepositoryIntegrationTestSuite) stages(codes ...string) []stage.Stage {
	out := make([]stage.Stage, 0, len(codes))
	for i, code := range codes {
		s, err := stage.NewStage(code, "Stage "+code, i)
		suite.Require().NoError(err)
		out = append(out, s)
	}
	return out
}

func (suite *StageRepositoryIntegrationTestSuite) TestList_Empty() {
	stages, err := stagerepo.NewGormStageRepository(suite.pg.DB).List(context.Background())
	suite.Require().NoError(err)
	suite.Empty(stages)
}

func (suite *StageRepositoryIntegrationTestSuite) TestUpsert_InsertsOrderedByPosition() {
	ctx := context.Background()
	repo := stagerepo.NewGormStageRepository(suite.pg.DB)
	suite.Require().NoError(repo.Upsert(ctx, suite.stages("pending", "confirmed", "delivered")))

	stages, err := repo.List(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(stages, 3)
	suite.Equal("pending", stages[0].Code())
	suite.Equal("Stage delivered", stages[2].DisplayName())
}

func (suite *StageRepositoryIntegrationTestSuite) TestUpsert_SwapsPositionsInOneTransaction() {
	ctx := context.Background()
	suite.Require().NoError(stagerepo.NewGormStageRepository(suite.pg.DB).Upsert(ctx, suite.stages("a", "b")))

	tx := suite.pg.DB.Begin()
	suite.Require().NoError(tx.Error)
	suite.Require().NoError(stagerepo.NewGormStageRepository(tx).Upsert(ctx, suite.stages("b", "a")))
	suite.Require().NoError(tx.Commit().Error)

	stages, err := stagerepo.NewGormStageRepository(suite.pg.DB).List(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(stages, 2)
	suite.Equal("b", stages[0].Code())
	suite.Equal("a", stages[1].Code())
}

func (suite *StageRepositoryIntegrationTestSuite) TestUpsert_PositionClashFailsAtCommit() {
	ctx := context.Background()
	suite.Require().NoError(stagerepo.NewGormStageRepository(suite.pg.DB).Upsert(ctx, suite.stages("a", "b")))

	tx := suite.pg.DB.Begin()
	suite.Require().NoError(tx.Error)
	suite.Require().NoError(stagerepo.NewGormStageRepository(tx).Upsert(ctx, suite.stages("c")))
	suite.Require().Error(tx.Commit().Error)
}

func TestStageRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StageRepositoryIntegrationTestSuite))
}
