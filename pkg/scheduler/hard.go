package scheduler

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// addHardConstraints attaches the non-negotiable rules. If they are jointly
// unsatisfiable the solve reports infeasible; no rule is ever dropped here.
func addHardConstraints(pc *planContext, v *cpVars, cfg Config) {
	addAnchorRules(pc, v)
	addStaffingBounds(pc, v)
	addExclusivity(pc, v)
	addConsecutiveCaps(pc, v)
	addHourFloor(pc, v, cfg)
}

// addAnchorRules enforces exactly one anchor per team-week and pins it to the
// rotation sequence. Keying the rotation by ISO week number keeps it
// continuous when overlapping periods are solved independently.
func addAnchorRules(pc *planContext, v *cpVars) {
	for _, team := range pc.data.Teams {
		for _, week := range pc.window.Weeks {
			var lits []cpmodel.BoolVar
			for _, code := range pc.codes {
				lits = append(lits, v.anchor[anchorKey{team.ID, week.Key, code}])
			}
			v.builder.AddExactlyOne(lits...)

			expected := pc.anchorFor(team.ID, week.Key)
			if av, ok := v.anchor[anchorKey{team.ID, week.Key, expected}]; ok {
				v.fixTrue(av)
			}
		}
	}
}

// addStaffingBounds constrains per-shift per-day headcount to the weekday or
// weekend band from the shift configuration.
func addStaffingBounds(pc *planContext, v *cpVars) {
	for _, code := range pc.codes {
		st := pc.shiftTypes[code]
		for _, date := range pc.window.Dates() {
			if !st.RunsOn(model.Weekday(date)) {
				continue
			}
			weekendDay := model.IsWeekend(date)
			min := int64(st.MinStaff(weekendDay))
			max := int64(st.MaxStaff(weekendDay))
			if max < min {
				max = min
			}

			count := cpmodel.NewConstant(0)
			for _, emp := range pc.activeEmployees() {
				if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
					count.Add(sd)
				}
			}
			v.builder.AddLinearConstraint(count, cpmodel.NewDomain(min, max))
		}
	}
}

// addExclusivity caps each employee at one assignment per day. The worksDay
// channel already forces this through its boolean equality; the explicit
// bound keeps the rule visible to the solver's presolve.
func addExclusivity(pc *planContext, v *cpVars) {
	for _, emp := range pc.activeEmployees() {
		for _, date := range pc.window.Dates() {
			total := cpmodel.NewConstant(0)
			if w, ok := v.dayWorkVar(emp.ID, date); ok {
				total.Add(w)
			}
			for _, code := range pc.codes {
				if c, ok := v.cross[empDateCode{emp.ID, date, code}]; ok {
					total.Add(c)
				}
			}
			v.builder.AddLinearConstraint(total, cpmodel.NewDomain(0, 1))
		}
	}
}

// addConsecutiveCaps applies the per-type maximum consecutive working days
// and the cross-type cap that closes the gap where alternating shift types
// would otherwise defeat the per-type rule.
func addConsecutiveCaps(pc *planContext, v *cpVars) {
	dates := pc.window.Dates()

	for _, emp := range pc.activeEmployees() {
		for _, code := range pc.codes {
			limit := pc.shiftTypes[code].MaxConsecutiveDays
			if limit <= 0 || limit >= len(dates) {
				continue
			}
			for i := 0; i+limit < len(dates); i++ {
				window := cpmodel.NewConstant(0)
				for j := i; j <= i+limit; j++ {
					if sd, ok := v.shiftDay[empDateCode{emp.ID, dates[j], code}]; ok {
						window.Add(sd)
					}
				}
				v.builder.AddLinearConstraint(window, cpmodel.NewDomain(0, int64(limit)))
			}
		}

		all := pc.maxConsecutiveAll()
		if all <= 0 || all >= len(dates) {
			continue
		}
		for i := 0; i+all < len(dates); i++ {
			window := cpmodel.NewConstant(0)
			for j := i; j <= i+all; j++ {
				window.Add(v.worksDay[empDate{emp.ID, dates[j]}])
			}
			v.builder.AddLinearConstraint(window, cpmodel.NewDomain(0, int64(all)))
		}
	}
}

// addHourFloor enforces the fixed minimum total worked hours for the period.
// Absent days credit a daily reference so an absence alone can never make the
// model infeasible.
func addHourFloor(pc *planContext, v *cpVars, cfg Config) {
	floorMin := int64(cfg.MinTotalHours * 60)
	if floorMin <= 0 {
		return
	}
	dailyRefMin := int64(cfg.WeeklyTargetHours / 7 * 60)

	for _, emp := range pc.activeEmployees() {
		worked := cpmodel.NewConstant(0)
		for _, date := range pc.window.Dates() {
			if pc.absenceOn(emp.ID, date) != nil {
				worked.AddConstant(dailyRefMin)
				continue
			}
			for _, code := range pc.codes {
				if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
					worked.AddTerm(sd, int64(pc.shiftTypes[code].DurationMin))
				}
			}
		}
		v.builder.AddGreaterOrEqual(worked, cpmodel.NewConstant(floorMin))
	}
}
