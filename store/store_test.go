package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/lvroute/routing"
	"github.com/katalvlaran/lvroute/store"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	path  string
	store *store.Store
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "runs", "lvroute.db")
	st, err := store.Open(s.ctx, s.path)
	s.Require().NoError(err)
	s.store = st
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func solved(t *testing.T) (*routing.Model, *routing.Assignment) {
	t.Helper()
	manager, err := routing.NewIndexManager(4, 2, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterUnaryTransitCallback(func(int64) int64 { return 1 })
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	asg := model.Solve(nil)
	require.NotNil(t, asg)
	return model, asg
}

func (s *StoreSuite) TestSaveAndGet() {
	model, asg := solved(s.T())
	run := store.RunFromAssignment("ones", model, asg, nil)
	s.Require().Equal(asg.ID(), run.ID)
	s.Require().Equal("ROUTING_SUCCESS", run.Status)
	s.Require().Equal("PATH_CHEAPEST_ARC", run.Strategy)
	s.Require().Equal("GREEDY_DESCENT", run.Metaheuristic)
	s.Require().Len(run.Routes, 2)
	s.Require().NoError(s.store.Save(s.ctx, run))

	got, err := s.store.Get(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Equal(run.ID, got.ID)
	s.Require().Equal("ones", got.Problem)
	s.Require().Equal(asg.ObjectiveValue(), got.Objective)
	s.Require().Equal(run.Routes, got.Routes)
	s.Require().Empty(got.Dropped)
	s.Require().True(run.CreatedAt.Equal(got.CreatedAt))
	for _, route := range got.Routes {
		s.Require().Equal(0, route[0])
		s.Require().Equal(0, route[len(route)-1])
	}
}

func (s *StoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, uuid.New())
	s.Require().ErrorIs(err, store.ErrRunNotFound)
}

func (s *StoreSuite) TestListNewestFirst() {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for k := 0; k < 3; k++ {
		s.Require().NoError(s.store.Save(s.ctx, store.Run{
			ID:        uuid.New(),
			Problem:   "p",
			Status:    "ROUTING_FAIL",
			Objective: int64(k),
			CreatedAt: base.Add(time.Duration(k) * time.Minute),
		}))
	}

	all, err := s.store.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Require().Equal([]int64{2, 1, 0}, []int64{all[0].Objective, all[1].Objective, all[2].Objective})
	s.Require().Nil(all[0].Routes)

	two, err := s.store.List(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(two, 2)
}

func (s *StoreSuite) TestReopenKeepsRuns() {
	model, asg := solved(s.T())
	run := store.RunFromAssignment("ones", model, asg, routing.DefaultSearchParameters())
	s.Require().NoError(s.store.Save(s.ctx, run))
	s.Require().NoError(s.store.Close())

	st, err := store.Open(s.ctx, s.path)
	s.Require().NoError(err)
	s.store = st
	got, err := s.store.Get(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Equal(run.Objective, got.Objective)
}

func (s *StoreSuite) TestCloseReportsErrors() {
	st, err := store.Open(s.ctx, filepath.Join(s.T().TempDir(), "twice.db"))
	s.Require().NoError(err)
	s.Require().NoError(st.Close())
	// The checkpoint on a closed handle fails and is returned.
	s.Require().Error(st.Close())
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func TestRunFromAssignment_Failed(t *testing.T) {
	manager, err := routing.NewIndexManager(3, 1, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterUnaryTransitCallback(func(int64) int64 { return 1 })
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.AllUnperformed
	asg := model.Solve(p)
	require.Nil(t, asg)

	run := store.RunFromAssignment("empty", model, asg, p)
	require.Equal(t, "ROUTING_FAIL", run.Status)
	require.Equal(t, "ALL_UNPERFORMED", run.Strategy)
	require.NotEqual(t, uuid.Nil, run.ID)
	require.Nil(t, run.Routes)
}
