package scheduler

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// extractSolution reads the solver response back into the domain types: a
// normalized per-employee schedule plus the assignment rows to persist.
func extractSolution(pc *planContext, v *cpVars, resp *cmpb.CpSolverResponse) (model.Schedule, []model.ShiftAssignment) {
	schedule := make(model.Schedule)
	var assignments []model.ShiftAssignment

	for _, emp := range pc.activeEmployees() {
		var days []model.DayStatus
		for _, date := range pc.window.Dates() {
			day := model.DayStatus{Date: date}

			if a := pc.absenceOn(emp.ID, date); a != nil {
				cat := a.Category
				day.Absence = &cat
				days = append(days, day)
				continue
			}

			if w, ok := v.dayWorkVar(emp.ID, date); ok && cpmodel.SolutionBooleanValue(resp, w) {
				week, _ := pc.window.WeekOf(date)
				day.ShiftCode = pc.anchorFor(*emp.TeamID, week.Key)
			} else {
				for _, code := range pc.codes {
					c, ok := v.cross[empDateCode{emp.ID, date, code}]
					if ok && cpmodel.SolutionBooleanValue(resp, c) {
						day.ShiftCode = code
						day.CrossTeam = true
						break
					}
				}
			}
			days = append(days, day)

			if day.Working() {
				assignments = append(assignments, newAssignment(pc, emp.ID, day))
			}
		}
		schedule[emp.ID] = days
	}

	return schedule, assignments
}

// newAssignment builds the persistable row, carrying provenance flags forward
// from a matching committed assignment.
func newAssignment(pc *planContext, empID uuid.UUID, day model.DayStatus) model.ShiftAssignment {
	a := model.ShiftAssignment{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: empID,
		ShiftCode:  day.ShiftCode,
		Date:       day.Date,
		Source:     model.SourceSystem,
		CrossTeam:  day.CrossTeam,
	}
	if prev, ok := pc.committed[empID][day.Date]; ok && prev.ShiftCode == day.ShiftCode {
		a.BaseModel = prev.BaseModel
		a.Source = prev.Source
		a.Springer = prev.Springer
		a.Pinned = prev.Pinned
	}
	return a
}
