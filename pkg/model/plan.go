package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanningRequest asks for one solve over a date range.
type PlanningRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// Overwrite drops non-pinned committed assignments inside the range
	// instead of replaying them as continuity locks.
	Overwrite bool `json:"overwrite"`
	// TimeBudget bounds the solver's wall time.
	TimeBudget time.Duration `json:"time_budget"`
}

// PlanStatus classifies the solver outcome.
type PlanStatus string

const (
	StatusOptimal PlanStatus = "optimal"
	// StatusFeasible is a valid solution not proven optimal within budget.
	StatusFeasible   PlanStatus = "feasible"
	StatusInfeasible PlanStatus = "infeasible"
	// StatusTimeout means the budget ran out before any solution was found.
	// Unlike infeasible this is retryable with a larger budget.
	StatusTimeout PlanStatus = "timeout"
)

// Solved reports whether the status carries a usable schedule.
func (s PlanStatus) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// ViolationSeverity grades violation records.
type ViolationSeverity string

const (
	SeverityCritical ViolationSeverity = "critical"
	SeverityWarning  ViolationSeverity = "warning"
	SeverityInfo     ViolationSeverity = "info"
)

// Violation is a structured diagnostic. The engine never persists these; they
// are returned to callers for display or delivery.
type Violation struct {
	Category   string            `json:"category"`
	Severity   ViolationSeverity `json:"severity"`
	Date       string            `json:"date,omitempty"`
	EmployeeID *uuid.UUID        `json:"employee_id,omitempty"`
	TeamID     *uuid.UUID        `json:"team_id,omitempty"`
	Message    string            `json:"message"`
}

// PlanResult is the full outcome of one planning run.
type PlanResult struct {
	Status      PlanStatus        `json:"status"`
	Schedule    Schedule          `json:"schedule,omitempty"`
	Assignments []ShiftAssignment `json:"assignments,omitempty"`
	Violations  []Violation       `json:"violations,omitempty"`

	// ExtendedDates lists days added by whole-week extension beyond the
	// requested range, so the caller can decide whether to persist them.
	ExtendedDates []string `json:"extended_dates,omitempty"`

	Objective float64       `json:"objective"`
	SolveTime time.Duration `json:"solve_time"`

	// FairnessScore summarizes distribution quality over the running totals
	// after folding in this period (0-100).
	FairnessScore float64 `json:"fairness_score,omitempty"`
}
