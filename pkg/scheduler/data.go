// Package scheduler builds the constraint model for a planning run and
// orchestrates the external CP-SAT solve.
package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// PlanningData is everything the loader boundary supplies for one run: the
// full configuration plus the absences and committed assignments overlapping
// the week-extended window.
type PlanningData struct {
	Employees      []*model.Employee
	Teams          []*model.Team
	ShiftTypes     []*model.ShiftType
	RotationGroups []*model.RotationGroup
	Absences       []*model.Absence
	Committed      []*model.ShiftAssignment
	Locks          model.LockSet
}

// Loader supplies planning data for a window. Implemented by the repository.
type Loader interface {
	Load(ctx context.Context, window *calendar.Window) (*PlanningData, error)
}

// planContext indexes the loaded data for constraint building.
type planContext struct {
	window *calendar.Window
	data   *PlanningData

	employees  map[uuid.UUID]*model.Employee
	teams      map[uuid.UUID]*model.Team
	shiftTypes map[string]*model.ShiftType
	rotations  map[uuid.UUID]*model.RotationGroup

	teamMembers map[uuid.UUID][]*model.Employee
	absences    map[uuid.UUID][]*model.Absence
	committed   map[uuid.UUID]map[string]*model.ShiftAssignment

	// codes lists every shift code in a stable order.
	codes []string
}

func newPlanContext(window *calendar.Window, data *PlanningData) (*planContext, error) {
	pc := &planContext{
		window:      window,
		data:        data,
		employees:   make(map[uuid.UUID]*model.Employee),
		teams:       make(map[uuid.UUID]*model.Team),
		shiftTypes:  make(map[string]*model.ShiftType),
		rotations:   make(map[uuid.UUID]*model.RotationGroup),
		teamMembers: make(map[uuid.UUID][]*model.Employee),
		absences:    make(map[uuid.UUID][]*model.Absence),
		committed:   make(map[uuid.UUID]map[string]*model.ShiftAssignment),
	}

	for _, t := range data.Teams {
		pc.teams[t.ID] = t
	}
	for _, g := range data.RotationGroups {
		pc.rotations[g.ID] = g
	}
	for _, s := range data.ShiftTypes {
		if _, dup := pc.shiftTypes[s.Code]; dup {
			return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("duplicate shift code %q", s.Code))
		}
		pc.shiftTypes[s.Code] = s
		pc.codes = append(pc.codes, s.Code)
	}
	sort.Strings(pc.codes)

	for _, t := range data.Teams {
		if t.RotationGroupID != nil {
			if _, ok := pc.rotations[*t.RotationGroupID]; !ok {
				return nil, errors.New(errors.CodeNotFound,
					fmt.Sprintf("team %q references unknown rotation group %s", t.Name, t.RotationGroupID))
			}
		}
		// Every code the rotation can dictate must resolve to a shift type,
		// or the anchor pinning would silently skip that week.
		for _, code := range pc.rotationOf(t.ID) {
			if _, ok := pc.shiftTypes[code]; !ok {
				return nil, errors.UnknownShiftType(code)
			}
		}
	}

	for _, e := range data.Employees {
		pc.employees[e.ID] = e
		if e.TeamID != nil {
			if _, ok := pc.teams[*e.TeamID]; !ok {
				return nil, errors.UnknownTeam(e.TeamID.String())
			}
			pc.teamMembers[*e.TeamID] = append(pc.teamMembers[*e.TeamID], e)
		}
	}

	for _, a := range data.Absences {
		if _, ok := pc.employees[a.EmployeeID]; !ok {
			return nil, errors.UnknownEmployee(a.EmployeeID.String())
		}
		pc.absences[a.EmployeeID] = append(pc.absences[a.EmployeeID], a)
	}

	for _, c := range data.Committed {
		if _, ok := pc.employees[c.EmployeeID]; !ok {
			return nil, errors.UnknownEmployee(c.EmployeeID.String())
		}
		if _, ok := pc.shiftTypes[c.ShiftCode]; !ok {
			return nil, errors.UnknownShiftType(c.ShiftCode)
		}
		byDate := pc.committed[c.EmployeeID]
		if byDate == nil {
			byDate = make(map[string]*model.ShiftAssignment)
			pc.committed[c.EmployeeID] = byDate
		}
		byDate[c.Date] = c
	}

	if err := pc.validateLocks(); err != nil {
		return nil, err
	}

	return pc, nil
}

// validateLocks rejects locks referencing unloaded entities before any
// variable is built.
func (pc *planContext) validateLocks() error {
	for _, l := range pc.data.Locks.TeamWeeks {
		if _, ok := pc.teams[l.TeamID]; !ok {
			return errors.UnknownTeam(l.TeamID.String())
		}
		if _, ok := pc.shiftTypes[l.ShiftCode]; !ok {
			return errors.UnknownShiftType(l.ShiftCode)
		}
	}
	for _, l := range pc.data.Locks.Weekends {
		if _, ok := pc.employees[l.EmployeeID]; !ok {
			return errors.UnknownEmployee(l.EmployeeID.String())
		}
	}
	for _, l := range pc.data.Locks.EmployeeDates {
		if _, ok := pc.employees[l.EmployeeID]; !ok {
			return errors.UnknownEmployee(l.EmployeeID.String())
		}
		if _, ok := pc.shiftTypes[l.ShiftCode]; !ok {
			return errors.UnknownShiftType(l.ShiftCode)
		}
	}
	for _, l := range pc.data.Locks.SpecialDuties {
		if _, ok := pc.employees[l.EmployeeID]; !ok {
			return errors.UnknownEmployee(l.EmployeeID.String())
		}
	}
	return nil
}

// absenceOn returns the absence covering the date, if any.
func (pc *planContext) absenceOn(empID uuid.UUID, date string) *model.Absence {
	for _, a := range pc.absences[empID] {
		if a.Covers(date) {
			return a
		}
	}
	return nil
}

// rotationOf resolves the rotation sequence for a team.
func (pc *planContext) rotationOf(teamID uuid.UUID) []string {
	return model.RotationFor(pc.teams[teamID], pc.rotations)
}

// anchorFor returns the rotation-dictated anchor code for a team and week.
func (pc *planContext) anchorFor(teamID uuid.UUID, key calendar.WeekKey) string {
	team := pc.teams[teamID]
	offset := 0
	if team != nil {
		offset = team.RotationOffset
	}
	return model.AnchorAt(pc.rotationOf(teamID), key.Week, offset)
}

// maxConsecutiveAll is the largest per-type consecutive-day limit. It also
// bounds total consecutive working days across mixed shift types.
func (pc *planContext) maxConsecutiveAll() int {
	max := 0
	for _, s := range pc.data.ShiftTypes {
		if s.MaxConsecutiveDays > max {
			max = s.MaxConsecutiveDays
		}
	}
	return max
}

// activeEmployees returns employees that take part in planning.
func (pc *planContext) activeEmployees() []*model.Employee {
	var active []*model.Employee
	for _, e := range pc.data.Employees {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	return active
}

// capacityOf returns the weekday staffing maximum used as the shift's
// capacity rank in the soft catalog.
func (pc *planContext) capacityOf(code string) int {
	if s, ok := pc.shiftTypes[code]; ok {
		return s.MaxWeekday
	}
	return 0
}
