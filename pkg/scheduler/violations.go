package scheduler

import (
	"fmt"
	"math"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// evaluateViolations re-checks the soft catalog against the extracted
// schedule. The solver already traded these off inside the objective; this
// pass names the residual compromises for the dispatcher.
func evaluateViolations(pc *planContext, cfg Config, schedule model.Schedule) []model.Violation {
	var out []model.Violation
	for _, emp := range pc.activeEmployees() {
		days := schedule[emp.ID]
		if len(days) == 0 {
			continue
		}
		out = append(out, checkPatterns(emp, days)...)
		out = append(out, checkRest(pc, cfg, emp, days)...)
		out = append(out, checkRotation(pc, emp, days)...)
		out = append(out, checkBlocks(cfg, emp, days)...)
		out = append(out, checkConsecutive(cfg, emp, days)...)
		out = append(out, checkHopping(emp, days)...)
		out = append(out, checkWeekVariety(pc, cfg, emp, days)...)
		out = append(out, checkShortfall(pc, cfg, emp, days)...)
	}
	out = append(out, checkStaffingBalance(pc, schedule)...)
	out = append(out, checkTeamCohesion(pc, schedule)...)
	return out
}

func violationFor(emp *model.Employee, category string, sev model.ViolationSeverity, date, msg string) model.Violation {
	id := emp.ID
	return model.Violation{
		Category:   category,
		Severity:   sev,
		Date:       date,
		EmployeeID: &id,
		Message:    msg,
	}
}

// checkPatterns flags sandwich and isolation patterns.
func checkPatterns(emp *model.Employee, days []model.DayStatus) []model.Violation {
	var out []model.Violation
	for i := range days {
		if !days[i].Working() {
			continue
		}
		code := days[i].ShiftCode

		// Resumed after one or two worked days of another type.
		for gap := 1; gap <= 2; gap++ {
			j := i + gap + 1
			if j >= len(days) || days[j].ShiftCode != code {
				continue
			}
			interrupted := true
			for m := i + 1; m < j; m++ {
				if !days[m].Working() || days[m].ShiftCode == code {
					interrupted = false
					break
				}
			}
			if interrupted {
				out = append(out, violationFor(emp, "sandwich_pattern", model.SeverityWarning, days[i].Date,
					fmt.Sprintf("%s resumes shift %s after %d day(s) of other work", emp.Name, code, gap)))
			}
		}

		// Single day wedged between worked days of other types.
		if i > 0 && i+1 < len(days) &&
			days[i-1].Working() && days[i-1].ShiftCode != code &&
			days[i+1].Working() && days[i+1].ShiftCode != code {
			out = append(out, violationFor(emp, "isolated_shift", model.SeverityWarning, days[i].Date,
				fmt.Sprintf("%s works a single day of shift %s between other shift types", emp.Name, code)))
		}
	}
	return out
}

// checkRest flags adjacent-day pairs under the minimum rest.
func checkRest(pc *planContext, cfg Config, emp *model.Employee, days []model.DayStatus) []model.Violation {
	var out []model.Violation
	for i := 0; i+1 < len(days); i++ {
		if !days[i].Working() || !days[i+1].Working() {
			continue
		}
		cur, next := pc.shiftTypes[days[i].ShiftCode], pc.shiftTypes[days[i+1].ShiftCode]
		if cur == nil || next == nil {
			continue
		}
		rest := cur.RestHoursBefore(next)
		if rest >= cfg.MinRestHours {
			continue
		}
		sev := model.SeverityCritical
		if model.IsWeekend(days[i].Date) && !model.IsWeekend(days[i+1].Date) &&
			days[i].CrossTeam && !days[i+1].CrossTeam {
			// The tolerated cross-team weekend into Monday anchor transition.
			sev = model.SeverityWarning
		}
		out = append(out, violationFor(emp, "rest_time", sev, days[i+1].Date,
			fmt.Sprintf("%s has %.1fh rest between %s and %s (minimum %.0fh)",
				emp.Name, rest, days[i].ShiftCode, days[i+1].ShiftCode, cfg.MinRestHours)))
	}
	return out
}

// checkRotation flags week transitions that skip a rotation step.
func checkRotation(pc *planContext, emp *model.Employee, days []model.DayStatus) []model.Violation {
	if !emp.HasTeam() {
		return nil
	}
	seq := pc.rotationOf(*emp.TeamID)

	var out []model.Violation
	for i := 0; i < len(days); i++ {
		if !days[i].Working() {
			continue
		}
		weekA, okA := pc.window.WeekOf(days[i].Date)
		for j := i + 1; j <= i+3 && j < len(days); j++ {
			if !days[j].Working() {
				continue
			}
			weekB, okB := pc.window.WeekOf(days[j].Date)
			if !okA || !okB || weekA.Key == weekB.Key {
				break
			}
			c1, c2 := days[i].ShiftCode, days[j].ShiftCode
			if c2 != c1 && c2 != model.NextInRotation(seq, c1) {
				out = append(out, violationFor(emp, "rotation_adherence", model.SeverityWarning, days[j].Date,
					fmt.Sprintf("%s jumps from %s to %s across the week boundary, skipping the rotation order",
						emp.Name, c1, c2)))
			}
			break
		}
	}
	return out
}

// checkBlocks flags weekday working blocks shorter than the preferred
// minimum. Blocks end at weekends, off days and the window edges.
func checkBlocks(cfg Config, emp *model.Employee, days []model.DayStatus) []model.Violation {
	if cfg.MinBlockDays <= 1 {
		return nil
	}
	var out []model.Violation
	run, last := 0, ""
	flush := func() {
		if run > 0 && run < cfg.MinBlockDays {
			out = append(out, violationFor(emp, "min_block_length", model.SeverityInfo, last,
				fmt.Sprintf("%s works a block of %d weekday(s) (preferred at least %d)",
					emp.Name, run, cfg.MinBlockDays)))
		}
		run = 0
	}
	for _, d := range days {
		if !model.IsWeekend(d.Date) && d.Working() {
			run++
			last = d.Date
			continue
		}
		flush()
	}
	flush()
	return out
}

// checkConsecutive flags stretches beyond the soft preference.
func checkConsecutive(cfg Config, emp *model.Employee, days []model.DayStatus) []model.Violation {
	if cfg.SoftMaxConsecutive <= 0 {
		return nil
	}
	var out []model.Violation
	run := 0
	for i := range days {
		if days[i].Working() {
			run++
			continue
		}
		if run > cfg.SoftMaxConsecutive {
			out = append(out, violationFor(emp, "consecutive_days", model.SeverityInfo, days[i-1].Date,
				fmt.Sprintf("%s works %d consecutive days (preferred at most %d)", emp.Name, run, cfg.SoftMaxConsecutive)))
		}
		run = 0
	}
	if run > cfg.SoftMaxConsecutive {
		out = append(out, violationFor(emp, "consecutive_days", model.SeverityInfo, days[len(days)-1].Date,
			fmt.Sprintf("%s works %d consecutive days (preferred at most %d)", emp.Name, run, cfg.SoftMaxConsecutive)))
	}
	return out
}

// checkHopping flags shift-type changes between adjacent worked days.
func checkHopping(emp *model.Employee, days []model.DayStatus) []model.Violation {
	var out []model.Violation
	for i := 0; i+1 < len(days); i++ {
		if !days[i].Working() || !days[i+1].Working() || days[i].ShiftCode == days[i+1].ShiftCode {
			continue
		}
		out = append(out, violationFor(emp, "shift_hopping", model.SeverityInfo, days[i+1].Date,
			fmt.Sprintf("%s changes from %s to %s on adjacent days",
				emp.Name, days[i].ShiftCode, days[i+1].ShiftCode)))
	}
	return out
}

// checkWeekVariety flags weeks with too many distinct shift types.
func checkWeekVariety(pc *planContext, cfg Config, emp *model.Employee, days []model.DayStatus) []model.Violation {
	if cfg.MaxShiftTypesPerWeek <= 0 {
		return nil
	}
	var out []model.Violation
	for _, week := range pc.window.Weeks {
		types := make(map[string]bool)
		for _, d := range days {
			if week.Contains(d.Date) && d.Working() {
				types[d.ShiftCode] = true
			}
		}
		if len(types) > cfg.MaxShiftTypesPerWeek {
			out = append(out, violationFor(emp, "shift_variety", model.SeverityInfo, week.Dates[0],
				fmt.Sprintf("%s works %d different shift types in week %d/W%02d",
					emp.Name, len(types), week.Key.Year, week.Key.Week)))
		}
	}
	return out
}

// checkShortfall flags employees well under their availability-scaled target.
func checkShortfall(pc *planContext, cfg Config, emp *model.Employee, days []model.DayStatus) []model.Violation {
	perDay := cfg.WeeklyTargetHours / 7.0
	target, worked := 0.0, 0.0
	for _, d := range days {
		if d.Absence != nil {
			continue
		}
		target += perDay
		if d.Working() {
			if st := pc.shiftTypes[d.ShiftCode]; st != nil {
				worked += st.DurationHours()
			}
		}
	}
	short := target - worked
	if short < 4 { // under half a shift of slack is noise
		return nil
	}
	id := emp.ID
	return []model.Violation{{
		Category:   "hour_target",
		Severity:   model.SeverityWarning,
		EmployeeID: &id,
		Message: fmt.Sprintf("%s is %.1fh under the %.1fh target for the period",
			emp.Name, math.Round(short*10)/10, math.Round(target*10)/10),
	}}
}

// checkStaffingBalance flags day-level staffing compromises: headcount above
// a shift's minimum, and a low-capacity shift filled beyond its minimum while
// a higher-capacity one still has room.
func checkStaffingBalance(pc *planContext, schedule model.Schedule) []model.Violation {
	counts := make(map[string]map[string]int) // date -> code -> headcount
	for _, days := range schedule {
		for _, d := range days {
			if !d.Working() {
				continue
			}
			byCode := counts[d.Date]
			if byCode == nil {
				byCode = make(map[string]int)
				counts[d.Date] = byCode
			}
			byCode[d.ShiftCode]++
		}
	}

	var out []model.Violation
	for _, date := range pc.window.Dates() {
		byCode := counts[date]
		if byCode == nil {
			continue
		}
		weekend := model.IsWeekend(date)
		for _, code := range pc.codes {
			st := pc.shiftTypes[code]
			if !st.RunsOn(model.Weekday(date)) {
				continue
			}
			over := byCode[code] - st.MinStaff(weekend)
			if over <= 0 {
				continue
			}
			category := "weekday_overstaffing"
			if weekend {
				category = "weekend_overstaffing"
			}
			out = append(out, model.Violation{
				Category: category,
				Severity: model.SeverityInfo,
				Date:     date,
				Message: fmt.Sprintf("shift %s has %d assignment(s) above its minimum of %d",
					code, over, st.MinStaff(weekend)),
			})
			for _, high := range pc.codes {
				if pc.capacityOf(high) <= pc.capacityOf(code) {
					continue
				}
				hst := pc.shiftTypes[high]
				if !hst.RunsOn(model.Weekday(date)) || byCode[high] >= hst.MaxStaff(weekend) {
					continue
				}
				out = append(out, model.Violation{
					Category: "staffing_ordering",
					Severity: model.SeverityWarning,
					Date:     date,
					Message: fmt.Sprintf("shift %s is filled beyond its minimum while higher-capacity shift %s still has room",
						code, high),
				})
			}
		}
	}
	return out
}

// checkTeamCohesion flags a member pulled cross-team during the team's night
// week and weekend days only part of the available team covers.
func checkTeamCohesion(pc *planContext, schedule model.Schedule) []model.Violation {
	var out []model.Violation
	for _, team := range pc.data.Teams {
		var members []*model.Employee
		for _, m := range pc.teamMembers[team.ID] {
			if m.IsActive() {
				members = append(members, m)
			}
		}
		if len(members) < 2 {
			continue
		}
		teamID := team.ID

		for _, week := range pc.window.Weeks {
			anchor := pc.shiftTypes[pc.anchorFor(team.ID, week.Key)]
			if anchor == nil || !anchor.IsNight {
				continue
			}
			for _, m := range members {
				for _, d := range schedule[m.ID] {
					if !week.Contains(d.Date) || !d.Working() || !d.CrossTeam {
						continue
					}
					empID := m.ID
					out = append(out, model.Violation{
						Category:   "team_cohesion",
						Severity:   model.SeverityInfo,
						Date:       week.Dates[0],
						EmployeeID: &empID,
						TeamID:     &teamID,
						Message: fmt.Sprintf("%s works cross-team during the team's night week %d/W%02d",
							m.Name, week.Key.Year, week.Key.Week),
					})
					break
				}
			}
		}

		for _, date := range pc.window.Dates() {
			if !model.IsWeekend(date) {
				continue
			}
			working, off := 0, 0
			for _, m := range members {
				worked := false
				for _, d := range schedule[m.ID] {
					if d.Date == date {
						worked = d.Working() && !d.CrossTeam
						break
					}
				}
				switch {
				case worked:
					working++
				case pc.absenceOn(m.ID, date) == nil:
					off++
				}
			}
			if working > 0 && off > 0 {
				out = append(out, model.Violation{
					Category: "team_cohesion",
					Severity: model.SeverityInfo,
					Date:     date,
					TeamID:   &teamID,
					Message: fmt.Sprintf("%d of %d available team members cover the weekend day",
						working, working+off),
				})
			}
		}
	}
	return out
}
