package scheduler

import (
	"context"
	"testing"
	"time"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

type stubLoader struct {
	data *PlanningData
	err  error
}

func (l *stubLoader) Load(ctx context.Context, window *calendar.Window) (*PlanningData, error) {
	return l.data, l.err
}

// stubSolver returns a canned status without searching.
type stubSolver struct {
	status cmpb.CpSolverStatus
	err    error

	gotModel  *cmpb.CpModelProto
	gotParams *sppb.SatParameters
}

func (s *stubSolver) Solve(m *cmpb.CpModelProto, params *sppb.SatParameters) (*cmpb.CpSolverResponse, error) {
	s.gotModel = m
	s.gotParams = params
	if s.err != nil {
		return nil, s.err
	}
	return &cmpb.CpSolverResponse{Status: s.status}, nil
}

type memStore struct {
	totals map[uuid.UUID]stats.Totals
}

func (s *memStore) ReadTotals(ctx context.Context) (map[uuid.UUID]stats.Totals, error) {
	return s.totals, nil
}

func (s *memStore) WriteTotals(ctx context.Context, totals map[uuid.UUID]stats.Totals) error {
	s.totals = totals
	return nil
}

func newTestPlanner(t *testing.T, data *PlanningData, solver Solver) *Planner {
	t.Helper()
	acc := stats.NewAccumulator(&memStore{})
	require.NoError(t, acc.Load(context.Background()))
	return NewPlanner(&stubLoader{data: data}, solver, acc, DefaultConfig(), DefaultWeights())
}

func TestPlan_RejectsInvalidRange(t *testing.T) {
	f := newFixture(t)
	planner := newTestPlanner(t, f.data, &stubSolver{})

	_, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate: "2026-01-18",
		EndDate:   "2026-01-05",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidDateRange), "got %v", err)
}

func TestPlan_InfeasibleIsAResultNotAnError(t *testing.T) {
	f := newFixture(t)
	solver := &stubSolver{status: cmpb.CpSolverStatus_INFEASIBLE}
	planner := newTestPlanner(t, f.data, solver)

	result, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate: "2026-01-05",
		EndDate:   "2026-01-18",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInfeasible, result.Status)
	assert.False(t, result.Status.Solved())
	assert.Empty(t, result.Assignments)
}

func TestPlan_UnknownStatusMeansTimeout(t *testing.T) {
	f := newFixture(t)
	solver := &stubSolver{status: cmpb.CpSolverStatus_UNKNOWN}
	planner := newTestPlanner(t, f.data, solver)

	result, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate: "2026-01-05",
		EndDate:   "2026-01-18",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTimeout, result.Status)
}

func TestPlan_PassesTimeBudgetToSolver(t *testing.T) {
	f := newFixture(t)
	solver := &stubSolver{status: cmpb.CpSolverStatus_INFEASIBLE}
	planner := newTestPlanner(t, f.data, solver)

	_, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate:  "2026-01-05",
		EndDate:    "2026-01-18",
		TimeBudget: 90 * time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, solver.gotParams)
	assert.Equal(t, 90.0, solver.gotParams.GetMaxTimeInSeconds())
	assert.NotNil(t, solver.gotModel, "the built model must reach the solver")
}

func TestPlan_ModelInvalidIsAnError(t *testing.T) {
	f := newFixture(t)
	solver := &stubSolver{status: cmpb.CpSolverStatus_MODEL_INVALID}
	planner := newTestPlanner(t, f.data, solver)

	_, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate: "2026-01-05",
		EndDate:   "2026-01-18",
	})
	assert.True(t, errors.Is(err, errors.CodeInternal), "got %v", err)
}

func TestFolding_SkipsExtendedDates(t *testing.T) {
	f := newFixture(t)
	extended := []string{"2026-01-05", "2026-01-06"}

	schedule := model.Schedule{
		f.alpha.ID: {
			workingDay("2026-01-05", "S"),
			workingDay("2026-01-07", "S"),
		},
	}
	trimmed := trimSchedule(schedule, extended)
	require.Len(t, trimmed[f.alpha.ID], 1)
	assert.Equal(t, "2026-01-07", trimmed[f.alpha.ID][0].Date)

	committed := []*model.ShiftAssignment{
		{BaseModel: model.NewBaseModel(), EmployeeID: f.alpha.ID, ShiftCode: "S", Date: "2026-01-05"},
		{BaseModel: model.NewBaseModel(), EmployeeID: f.alpha.ID, ShiftCode: "S", Date: "2026-01-07"},
	}
	replaced := supersededAssignments(committed, extended)
	require.Len(t, replaced, 1)
	assert.Equal(t, "2026-01-07", replaced[0].Date)
}

func TestPlan_ExtendedDatesReported(t *testing.T) {
	f := newFixture(t)
	solver := &stubSolver{status: cmpb.CpSolverStatus_INFEASIBLE}
	planner := newTestPlanner(t, f.data, solver)

	result, err := planner.Plan(context.Background(), model.PlanningRequest{
		StartDate: "2026-01-07",
		EndDate:   "2026-01-16",
	})
	require.NoError(t, err)
	assert.Len(t, result.ExtendedDates, 4)
}
