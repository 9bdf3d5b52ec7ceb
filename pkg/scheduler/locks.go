package scheduler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/logger"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// lockReport records what the lock applier did, for the violation report.
type lockReport struct {
	SuppressedWeeks []calendar.WeekKey
	Notes           []model.Violation
}

// applyLocks overlays external facts onto the model as fixed literals:
// absences (always), manual overrides, and continuity locks from adjacent
// solved periods. Inside boundary weeks, mutually inconsistent continuity
// locks are dropped as a whole rather than forcing an infeasible model;
// absences are never dropped.
func applyLocks(pc *planContext, v *cpVars, locks model.LockSet) *lockReport {
	report := &lockReport{}

	applyAbsences(pc, v)

	suppressed := detectBoundaryConflicts(pc, locks)
	for _, key := range suppressed {
		report.SuppressedWeeks = append(report.SuppressedWeeks, key)
		report.Notes = append(report.Notes, model.Violation{
			Category: "lock_conflict",
			Severity: model.SeverityInfo,
			Message: fmt.Sprintf(
				"continuity locks in boundary week %d/W%02d are mutually inconsistent; all non-absence locks for that week were dropped",
				key.Year, key.Week,
			),
		})
		logger.Info().
			Int("year", key.Year).
			Int("week", key.Week).
			Msg("suppressing inconsistent boundary-week locks")
	}
	drop := make(map[calendar.WeekKey]bool, len(suppressed))
	for _, key := range suppressed {
		drop[key] = true
	}

	for _, l := range locks.TeamWeeks {
		if drop[calendar.WeekKey{Year: l.Year, Week: l.Week}] {
			continue
		}
		if av, ok := v.anchor[anchorKey{l.TeamID, calendar.WeekKey{Year: l.Year, Week: l.Week}, l.ShiftCode}]; ok {
			v.fixTrue(av)
		}
	}

	for _, l := range locks.EmployeeDates {
		if dropsDate(pc, drop, l.Date) || pc.absenceOn(l.EmployeeID, l.Date) != nil {
			continue
		}
		applyEmployeeDateLock(pc, v, l)
	}

	for _, l := range locks.Weekends {
		if dropsDate(pc, drop, l.Date) || pc.absenceOn(l.EmployeeID, l.Date) != nil {
			continue
		}
		if l.Working {
			// Any shift satisfies the lock, own anchor or cross-team.
			if wd, ok := v.worksDay[empDate{l.EmployeeID, l.Date}]; ok {
				v.fixTrue(wd)
			}
			continue
		}
		if wv, ok := v.weekend[empDate{l.EmployeeID, l.Date}]; ok {
			v.fixFalse(wv)
		}
		forbidAllWork(pc, v, l.EmployeeID, l.Date)
	}

	for _, l := range locks.SpecialDuties {
		if drop[calendar.WeekKey{Year: l.Year, Week: l.Week}] {
			continue
		}
		note := applySpecialDutyLock(pc, v, l)
		if note != nil {
			report.Notes = append(report.Notes, *note)
		}
	}

	return report
}

// applyAbsences pins every variable of an absent employee-day to false.
// Absences are authoritative over every other input.
func applyAbsences(pc *planContext, v *cpVars) {
	for _, emp := range pc.activeEmployees() {
		for _, date := range pc.window.Dates() {
			if pc.absenceOn(emp.ID, date) == nil {
				continue
			}
			if w, ok := v.dayWorkVar(emp.ID, date); ok {
				v.fixFalse(w)
			}
			forbidAllWork(pc, v, emp.ID, date)
		}
	}
}

func forbidAllWork(pc *planContext, v *cpVars, empID uuid.UUID, date string) {
	for _, code := range pc.codes {
		if c, ok := v.cross[empDateCode{empID, date, code}]; ok {
			v.fixFalse(c)
		}
	}
}

// applyEmployeeDateLock replays one exact-shift lock. The rotation makes the
// anchor deterministic, so a lock matching the team's expected anchor pins
// the own/weekend variable; anything else pins the cross-team variable.
func applyEmployeeDateLock(pc *planContext, v *cpVars, l model.EmployeeDateLock) {
	emp := pc.employees[l.EmployeeID]
	week, ok := pc.window.WeekOf(l.Date)
	if !ok {
		return
	}

	ownAnchor := emp.HasTeam() && !l.CrossTeam &&
		pc.anchorFor(*emp.TeamID, week.Key) == l.ShiftCode

	if ownAnchor {
		if w, ok := v.dayWorkVar(emp.ID, l.Date); ok {
			v.fixTrue(w)
			return
		}
	}
	if c, ok := v.cross[empDateCode{emp.ID, l.Date, l.ShiftCode}]; ok {
		v.fixTrue(c)
	}
}

// applySpecialDutyLock forces an employee on or off a special duty week.
func applySpecialDutyLock(pc *planContext, v *cpVars, l model.SpecialDutyLock) *model.Violation {
	emp := pc.employees[l.EmployeeID]
	key := calendar.WeekKey{Year: l.Year, Week: l.Week}
	week, ok := pc.window.WeekByKey(key)
	if !ok {
		return nil
	}

	if l.OnDuty {
		if !emp.HasDuty(l.Duty) {
			return &model.Violation{
				Category:   "lock_conflict",
				Severity:   model.SeverityWarning,
				EmployeeID: &l.EmployeeID,
				Message: fmt.Sprintf(
					"special duty lock %q for %s ignored: employee is not qualified", l.Duty, emp.Name,
				),
			}
		}
		for _, date := range week.Dates {
			if pc.absenceOn(emp.ID, date) != nil {
				continue
			}
			if !model.IsWeekend(date) && emp.HasTeam() {
				expected := pc.anchorFor(*emp.TeamID, key)
				if pc.shiftTypes[expected] != nil && pc.shiftTypes[expected].RunsOn(model.Weekday(date)) {
					if w, ok := v.own[empDate{emp.ID, date}]; ok {
						v.fixTrue(w)
					}
				}
			}
			forbidAllWork(pc, v, emp.ID, date)
		}
		return nil
	}

	// Off duty: forbid any shift that requires this qualification.
	for _, date := range week.Dates {
		for _, code := range pc.codes {
			if pc.shiftTypes[code].RequiredDuty != l.Duty {
				continue
			}
			if c, ok := v.cross[empDateCode{emp.ID, date, code}]; ok {
				v.fixFalse(c)
			}
		}
	}
	return nil
}

// detectBoundaryConflicts finds boundary weeks whose per-employee continuity
// locks imply different anchor shifts for members of one team. Only those
// weeks' locks are suppressed.
func detectBoundaryConflicts(pc *planContext, locks model.LockSet) []calendar.WeekKey {
	// Implied anchor codes per (week, team) from own-team weekday locks.
	implied := make(map[calendar.WeekKey]map[uuid.UUID]map[string]bool)

	for _, l := range locks.EmployeeDates {
		if l.Source != model.LockContinuity || l.CrossTeam {
			continue
		}
		emp := pc.employees[l.EmployeeID]
		if emp == nil || !emp.HasTeam() || model.IsWeekend(l.Date) {
			continue
		}
		week, ok := pc.window.WeekOf(l.Date)
		if !ok || !pc.window.IsBoundaryWeek(week.Key) {
			continue
		}
		byTeam := implied[week.Key]
		if byTeam == nil {
			byTeam = make(map[uuid.UUID]map[string]bool)
			implied[week.Key] = byTeam
		}
		codes := byTeam[*emp.TeamID]
		if codes == nil {
			codes = make(map[string]bool)
			byTeam[*emp.TeamID] = codes
		}
		codes[l.ShiftCode] = true
	}

	var conflicted []calendar.WeekKey
	for key, byTeam := range implied {
		for _, codes := range byTeam {
			if len(codes) > 1 {
				conflicted = append(conflicted, key)
				break
			}
		}
	}
	return conflicted
}

func dropsDate(pc *planContext, drop map[calendar.WeekKey]bool, date string) bool {
	week, ok := pc.window.WeekOf(date)
	return ok && drop[week.Key]
}
