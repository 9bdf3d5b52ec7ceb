// Package springer fills gaps left by a reported absence without re-running
// the solver. It removes the absent employee's assignments and substitutes
// qualified standby employees day by day.
package springer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/logger"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/scheduler"
	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

// Result is the outcome of one substitution pass.
type Result struct {
	// Removed lists the absent employee's assignments that were cleared.
	Removed []model.ShiftAssignment `json:"removed,omitempty"`
	// Substitutions are the new standby assignments, one per covered gap.
	Substitutions []model.ShiftAssignment `json:"substitutions,omitempty"`
	// Violations reports gaps no candidate could fill.
	Violations []model.Violation `json:"violations,omitempty"`
}

// Covered reports whether every removed assignment found a substitute.
func (r *Result) Covered() bool {
	return len(r.Substitutions) == len(r.Removed)
}

// Engine performs deterministic standby substitution.
type Engine struct {
	cfg scheduler.Config
	acc *stats.Accumulator
}

// NewEngine creates a substitution engine.
func NewEngine(cfg scheduler.Config, acc *stats.Accumulator) *Engine {
	return &Engine{cfg: cfg, acc: acc}
}

// ReplaceForAbsence clears the absent employee's committed assignments inside
// the absence range and fills each cleared day with the best available
// standby employee. The committed plan is never otherwise modified.
func (e *Engine) ReplaceForAbsence(data *scheduler.PlanningData, absence *model.Absence) (*Result, error) {
	if !absence.Range().Valid() {
		return nil, errors.InvalidDateRange(absence.StartDate, absence.EndDate)
	}

	idx := indexData(data)
	if idx.employees[absence.EmployeeID] == nil {
		return nil, errors.UnknownEmployee(absence.EmployeeID.String())
	}

	result := &Result{}
	for _, a := range data.Committed {
		if a.EmployeeID != absence.EmployeeID || !absence.Covers(a.Date) {
			continue
		}
		result.Removed = append(result.Removed, *a)

		st := idx.shiftTypes[a.ShiftCode]
		if st == nil {
			return nil, errors.UnknownShiftType(a.ShiftCode)
		}

		sub := e.pickCandidate(idx, data, st, a.Date)
		if sub == nil {
			id := absence.EmployeeID
			result.Violations = append(result.Violations, model.Violation{
				Category:   "understaffed",
				Severity:   model.SeverityCritical,
				Date:       a.Date,
				EmployeeID: &id,
				Message:    fmt.Sprintf("no standby employee available for shift %s on %s", a.ShiftCode, a.Date),
			})
			continue
		}

		replacement := model.ShiftAssignment{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: sub.ID,
			ShiftCode:  a.ShiftCode,
			Date:       a.Date,
			Source:     model.SourceSystem,
			CrossTeam:  true,
			Springer:   true,
		}
		result.Substitutions = append(result.Substitutions, replacement)
		// Later days of the same absence see this substitution.
		idx.add(&replacement)

		logger.Info().
			Str("date", a.Date).
			Str("shift", a.ShiftCode).
			Str("springer", sub.Name).
			Msg("standby substitution")
	}

	return result, nil
}

// pickCandidate returns the best standby employee for one gap, or nil. The
// order is deterministic: least accumulated irregular load first, personnel
// number as the tie-break.
func (e *Engine) pickCandidate(idx *index, data *scheduler.PlanningData, st *model.ShiftType, date string) *model.Employee {
	var candidates []*model.Employee
	for _, emp := range data.Employees {
		if e.eligible(idx, emp, st, date) {
			candidates = append(candidates, emp)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		li := e.acc.Totals(candidates[i].ID).IrregularLoad()
		lj := e.acc.Totals(candidates[j].ID).IrregularLoad()
		if li != lj {
			return li < lj
		}
		return candidates[i].PersonnelNumber < candidates[j].PersonnelNumber
	})
	return candidates[0]
}

func (e *Engine) eligible(idx *index, emp *model.Employee, st *model.ShiftType, date string) bool {
	if !emp.IsActive() || !emp.IsSpringer {
		return false
	}
	if st.RequiredDuty != "" && !emp.HasDuty(st.RequiredDuty) {
		return false
	}
	if idx.absentOn(emp.ID, date) || idx.assignment(emp.ID, date) != nil {
		return false
	}
	if !e.restOK(idx, emp.ID, st, date) {
		return false
	}
	if !e.loadOK(idx, emp.ID, st, date) {
		return false
	}
	return e.consecutiveOK(idx, emp.ID, date)
}

// restOK checks the minimum rest against the candidate's neighboring shifts.
func (e *Engine) restOK(idx *index, empID uuid.UUID, st *model.ShiftType, date string) bool {
	if prev := idx.assignment(empID, model.PreviousDate(date)); prev != nil {
		if before := idx.shiftTypes[prev.ShiftCode]; before != nil &&
			before.RestHoursBefore(st) < e.cfg.MinRestHours {
			return false
		}
	}
	if next := idx.assignment(empID, model.NextDate(date)); next != nil {
		if after := idx.shiftTypes[next.ShiftCode]; after != nil &&
			st.RestHoursBefore(after) < e.cfg.MinRestHours {
			return false
		}
	}
	return true
}

// loadOK keeps the candidate's week at or under the weekly baseline.
func (e *Engine) loadOK(idx *index, empID uuid.UUID, st *model.ShiftType, date string) bool {
	key := calendar.KeyFor(date)
	hours := st.DurationHours()
	for _, a := range idx.byEmployee[empID] {
		if calendar.KeyFor(a.Date) != key {
			continue
		}
		if s := idx.shiftTypes[a.ShiftCode]; s != nil {
			hours += s.DurationHours()
		}
	}
	return hours <= e.cfg.WeeklyTargetHours
}

// consecutiveOK bounds the working stretch the substitution would create.
func (e *Engine) consecutiveOK(idx *index, empID uuid.UUID, date string) bool {
	limit := idx.maxConsecutive
	if limit <= 0 {
		return true
	}
	run := 1
	for d := model.PreviousDate(date); idx.assignment(empID, d) != nil; d = model.PreviousDate(d) {
		run++
	}
	for d := model.NextDate(date); idx.assignment(empID, d) != nil; d = model.NextDate(d) {
		run++
	}
	return run <= limit
}

// index holds the lookups one substitution pass needs.
type index struct {
	employees  map[uuid.UUID]*model.Employee
	shiftTypes map[string]*model.ShiftType
	absences   map[uuid.UUID][]*model.Absence
	byEmpDate  map[uuid.UUID]map[string]*model.ShiftAssignment
	byEmployee map[uuid.UUID][]*model.ShiftAssignment

	maxConsecutive int
}

func indexData(data *scheduler.PlanningData) *index {
	idx := &index{
		employees:  make(map[uuid.UUID]*model.Employee),
		shiftTypes: make(map[string]*model.ShiftType),
		absences:   make(map[uuid.UUID][]*model.Absence),
		byEmpDate:  make(map[uuid.UUID]map[string]*model.ShiftAssignment),
		byEmployee: make(map[uuid.UUID][]*model.ShiftAssignment),
	}
	for _, emp := range data.Employees {
		idx.employees[emp.ID] = emp
	}
	for _, st := range data.ShiftTypes {
		idx.shiftTypes[st.Code] = st
		if st.MaxConsecutiveDays > idx.maxConsecutive {
			idx.maxConsecutive = st.MaxConsecutiveDays
		}
	}
	for _, a := range data.Absences {
		idx.absences[a.EmployeeID] = append(idx.absences[a.EmployeeID], a)
	}
	for _, a := range data.Committed {
		idx.add(a)
	}
	return idx
}

func (idx *index) add(a *model.ShiftAssignment) {
	byDate := idx.byEmpDate[a.EmployeeID]
	if byDate == nil {
		byDate = make(map[string]*model.ShiftAssignment)
		idx.byEmpDate[a.EmployeeID] = byDate
	}
	byDate[a.Date] = a
	idx.byEmployee[a.EmployeeID] = append(idx.byEmployee[a.EmployeeID], a)
}

func (idx *index) assignment(empID uuid.UUID, date string) *model.ShiftAssignment {
	return idx.byEmpDate[empID][date]
}

func (idx *index) absentOn(empID uuid.UUID, date string) bool {
	for _, a := range idx.absences[empID] {
		if a.Covers(date) {
			return true
		}
	}
	return false
}
