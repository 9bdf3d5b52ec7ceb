package scheduler

import (
	"context"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/logger"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

// Config carries the planning-wide tunables. Shift-specific numbers live on
// the shift types instead.
type Config struct {
	WeekStart time.Weekday `yaml:"week_start"`

	// MinRestHours is the preferred rest between two shifts on adjacent days.
	MinRestHours float64 `yaml:"min_rest_hours"`
	// MinTotalHours is the hard per-period floor of worked hours.
	MinTotalHours float64 `yaml:"min_total_hours"`
	// WeeklyTargetHours scales the dynamic per-employee hour target.
	WeeklyTargetHours float64 `yaml:"weekly_target_hours"`

	SoftMaxConsecutive   int `yaml:"soft_max_consecutive"`
	MinBlockDays         int `yaml:"min_block_days"`
	MaxShiftTypesPerWeek int `yaml:"max_shift_types_per_week"`

	// Workers is the solver's parallelism. Zero lets the solver decide.
	Workers int `yaml:"workers"`

	DefaultTimeBudget time.Duration `yaml:"default_time_budget"`
}

// DefaultConfig returns the standard planning configuration.
func DefaultConfig() Config {
	return Config{
		WeekStart:            time.Monday,
		MinRestHours:         11,
		MinTotalHours:        40,
		WeeklyTargetHours:    38.5,
		SoftMaxConsecutive:   5,
		MinBlockDays:         2,
		MaxShiftTypesPerWeek: 2,
		Workers:              8,
		DefaultTimeBudget:    5 * time.Minute,
	}
}

// Solver is the boundary to the external CP-SAT process. The engine never
// searches itself; it builds the model proto and hands it over.
type Solver interface {
	Solve(m *cmpb.CpModelProto, params *sppb.SatParameters) (*cmpb.CpSolverResponse, error)
}

// SatSolver solves via the bundled CP-SAT backend.
type SatSolver struct{}

// Solve implements Solver.
func (SatSolver) Solve(m *cmpb.CpModelProto, params *sppb.SatParameters) (*cmpb.CpSolverResponse, error) {
	return cpmodel.SolveCpModelWithParameters(m, params)
}

// Planner orchestrates one planning run end to end: window partition, data
// load, model build, solve, extraction and bookkeeping.
type Planner struct {
	loader  Loader
	solver  Solver
	acc     *stats.Accumulator
	cfg     Config
	weights Weights
}

// NewPlanner wires a planner from its collaborators.
func NewPlanner(loader Loader, solver Solver, acc *stats.Accumulator, cfg Config, weights Weights) *Planner {
	return &Planner{loader: loader, solver: solver, acc: acc, cfg: cfg, weights: weights}
}

// Plan runs one solve for the requested range. The range is extended to whole
// weeks; ExtendedDates on the result lists the added days.
func (p *Planner) Plan(ctx context.Context, req model.PlanningRequest) (*model.PlanResult, error) {
	window, err := calendar.Partition(req.StartDate, req.EndDate, p.cfg.WeekStart)
	if err != nil {
		return nil, err
	}

	log := logger.With(uuid.New().String())
	log.Info().
		Str("start", window.Start).
		Str("end", window.End).
		Int("weeks", len(window.Weeks)).
		Msg("planning run started")

	data, err := p.loader.Load(ctx, window)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "loading planning data")
	}

	pc, err := newPlanContext(window, data)
	if err != nil {
		return nil, err
	}

	v := buildVariables(pc)
	addHardConstraints(pc, v, p.cfg)

	locks := mergeContinuityLocks(data, window, req.Overwrite)
	report := applyLocks(pc, v, locks)

	bias := make(map[uuid.UUID]int64)
	for _, emp := range pc.activeEmployees() {
		bias[emp.ID] = int64(p.acc.Bias(emp.ID))
	}
	addObjective(pc, v, p.cfg, p.weights, bias)

	m, err := v.builder.Model()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "building constraint model")
	}

	budget := req.TimeBudget
	if budget <= 0 {
		budget = p.cfg.DefaultTimeBudget
	}
	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(budget.Seconds()),
	}
	if p.cfg.Workers > 0 {
		params.NumSearchWorkers = proto.Int32(int32(p.cfg.Workers))
	}

	started := time.Now()
	resp, err := p.solver.Solve(m, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "solving")
	}
	elapsed := time.Since(started)

	result := &model.PlanResult{
		ExtendedDates: window.ExtendedDates(),
		SolveTime:     elapsed,
	}

	switch resp.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		result.Status = model.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		result.Status = model.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		result.Status = model.StatusInfeasible
	case cmpb.CpSolverStatus_UNKNOWN:
		result.Status = model.StatusTimeout
	default:
		return nil, errors.New(errors.CodeInternal, "solver rejected the model as invalid")
	}

	log.Info().
		Str("status", string(result.Status)).
		Dur("solve_time", elapsed).
		Msg("solve finished")

	if !result.Status.Solved() {
		result.Violations = report.Notes
		return result, nil
	}

	result.Objective = resp.GetObjectiveValue()
	result.Schedule, result.Assignments = extractSolution(pc, v, resp)
	result.Violations = append(evaluateViolations(pc, p.cfg, result.Schedule), report.Notes...)

	// Only the requested range is folded; extended-window assignments may be
	// discarded by the caller and must not skew the running totals.
	if err := p.acc.Fold(ctx,
		supersededAssignments(data.Committed, result.ExtendedDates),
		trimSchedule(result.Schedule, result.ExtendedDates),
		pc.shiftTypes,
	); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "folding fairness totals")
	}
	result.FairnessScore = stats.AnalyzeTotals(p.acc.All()).OverallFairness

	return result, nil
}

// trimSchedule strips the extended dates from a schedule before folding.
func trimSchedule(schedule model.Schedule, extended []string) model.Schedule {
	skip := make(map[string]bool, len(extended))
	for _, d := range extended {
		skip[d] = true
	}
	trimmed := make(model.Schedule, len(schedule))
	for id, days := range schedule {
		for _, day := range days {
			if !skip[day.Date] {
				trimmed[id] = append(trimmed[id], day)
			}
		}
	}
	return trimmed
}

// supersededAssignments lists the committed assignments the new schedule
// replaces on the folded dates; their fairness contribution is subtracted so
// re-planning a range stays idempotent.
func supersededAssignments(committed []*model.ShiftAssignment, extended []string) []*model.ShiftAssignment {
	skip := make(map[string]bool, len(extended))
	for _, d := range extended {
		skip[d] = true
	}
	var out []*model.ShiftAssignment
	for _, a := range committed {
		if !skip[a.Date] {
			out = append(out, a)
		}
	}
	return out
}

// mergeContinuityLocks turns committed assignments overlapping the window
// into continuity locks on top of the loaded manual locks. With Overwrite
// only pinned assignments survive as locks.
func mergeContinuityLocks(data *PlanningData, window *calendar.Window, overwrite bool) model.LockSet {
	locks := data.Locks
	for _, a := range data.Committed {
		if overwrite && !a.Pinned {
			continue
		}
		if _, ok := window.WeekOf(a.Date); !ok {
			continue
		}
		locks.EmployeeDates = append(locks.EmployeeDates, model.EmployeeDateLock{
			EmployeeID: a.EmployeeID,
			Date:       a.Date,
			ShiftCode:  a.ShiftCode,
			CrossTeam:  a.CrossTeam,
			Source:     model.LockContinuity,
		})
	}
	return locks
}
