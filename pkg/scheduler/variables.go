package scheduler

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

type anchorKey struct {
	team uuid.UUID
	week calendar.WeekKey
	code string
}

type empDate struct {
	emp  uuid.UUID
	date string
}

type empDateCode struct {
	emp  uuid.UUID
	date string
	code string
}

// cpVars holds every decision variable of one planning model.
//
//   - anchor[t,w,c]: team t's anchor shift in week w is c
//   - own[e,d]:      e works the own team's anchor on weekday d
//   - weekend[e,d]:  e works the own team's anchor on weekend date d
//   - cross[e,d,c]:  e works shift c outside the own team's anchor on d
//
// anchorAt and worksDay are linearization helpers: anchorAt[e,d,c] is true
// iff e works the own-team anchor on d AND that anchor is c; worksDay[e,d]
// is true iff e works anything on d. shiftDay[e,d,c] combines anchorAt and
// cross into "e works shift c on d".
type cpVars struct {
	builder *cpmodel.Builder

	anchor   map[anchorKey]cpmodel.BoolVar
	own      map[empDate]cpmodel.BoolVar
	weekend  map[empDate]cpmodel.BoolVar
	cross    map[empDateCode]cpmodel.BoolVar
	anchorAt map[empDateCode]cpmodel.BoolVar
	shiftDay map[empDateCode]cpmodel.BoolVar
	worksDay map[empDate]cpmodel.BoolVar
}

// buildVariables allocates every variable the catalogs reference. No variable
// is created outside the week-extended window.
func buildVariables(pc *planContext) *cpVars {
	b := cpmodel.NewCpModelBuilder()
	v := &cpVars{
		builder:  b,
		anchor:   make(map[anchorKey]cpmodel.BoolVar),
		own:      make(map[empDate]cpmodel.BoolVar),
		weekend:  make(map[empDate]cpmodel.BoolVar),
		cross:    make(map[empDateCode]cpmodel.BoolVar),
		anchorAt: make(map[empDateCode]cpmodel.BoolVar),
		shiftDay: make(map[empDateCode]cpmodel.BoolVar),
		worksDay: make(map[empDate]cpmodel.BoolVar),
	}

	for _, team := range pc.data.Teams {
		for _, week := range pc.window.Weeks {
			for _, code := range pc.codes {
				v.anchor[anchorKey{team.ID, week.Key, code}] = b.NewBoolVar()
			}
		}
	}

	for _, emp := range pc.activeEmployees() {
		for _, date := range pc.window.Dates() {
			ed := empDate{emp.ID, date}
			weekendDay := model.IsWeekend(date)

			if emp.HasTeam() {
				if weekendDay {
					v.weekend[ed] = b.NewBoolVar()
				} else {
					v.own[ed] = b.NewBoolVar()
				}
			}

			for _, code := range pc.codes {
				if !pc.shiftTypes[code].RunsOn(model.Weekday(date)) {
					continue
				}
				edc := empDateCode{emp.ID, date, code}
				v.cross[edc] = b.NewBoolVar()
				if emp.HasTeam() {
					v.anchorAt[edc] = b.NewBoolVar()
				}
				v.shiftDay[edc] = b.NewBoolVar()
			}

			v.worksDay[ed] = b.NewBoolVar()
		}
	}

	v.linkVariables(pc)
	return v
}

// linkVariables ties the helper variables to the decision variables.
func (v *cpVars) linkVariables(pc *planContext) {
	b := v.builder

	for _, emp := range pc.activeEmployees() {
		for _, date := range pc.window.Dates() {
			ed := empDate{emp.ID, date}
			week, _ := pc.window.WeekOf(date)

			anchorVar, hasAnchorVar := v.own[ed]
			if !hasAnchorVar {
				anchorVar, hasAnchorVar = v.weekend[ed]
			}

			// anchorAt[e,d,c] <=> anchorVar[e,d] AND anchor[team,week,c]
			anchorSum := cpmodel.NewConstant(0)
			for _, code := range pc.codes {
				edc := empDateCode{emp.ID, date, code}
				at, ok := v.anchorAt[edc]
				if !ok {
					continue
				}
				teamAnchor := v.anchor[anchorKey{*emp.TeamID, week.Key, code}]
				b.AddImplication(at, anchorVar)
				b.AddImplication(at, teamAnchor)
				b.AddBoolOr(anchorVar.Not(), teamAnchor.Not(), at)
				anchorSum.Add(at)
			}
			if hasAnchorVar {
				// Working the own anchor requires the anchor shift to run
				// on this weekday at all.
				b.AddEquality(anchorVar, anchorSum)
			}

			// shiftDay[e,d,c] = anchorAt[e,d,c] + cross[e,d,c]
			for _, code := range pc.codes {
				edc := empDateCode{emp.ID, date, code}
				sd, ok := v.shiftDay[edc]
				if !ok {
					continue
				}
				sum := cpmodel.NewConstant(0)
				if at, ok := v.anchorAt[edc]; ok {
					sum.Add(at)
				}
				sum.Add(v.cross[edc])
				b.AddEquality(sd, sum)
			}

			// worksDay[e,d] = anchor work + all cross work on d.
			total := cpmodel.NewConstant(0)
			if hasAnchorVar {
				total.Add(anchorVar)
			}
			for _, code := range pc.codes {
				if c, ok := v.cross[empDateCode{emp.ID, date, code}]; ok {
					total.Add(c)
				}
			}
			b.AddEquality(v.worksDay[ed], total)
		}
	}
}

// dayWorkVar returns the own/weekend anchor variable for a teamed employee.
func (v *cpVars) dayWorkVar(empID uuid.UUID, date string) (cpmodel.BoolVar, bool) {
	if w, ok := v.own[empDate{empID, date}]; ok {
		return w, true
	}
	w, ok := v.weekend[empDate{empID, date}]
	return w, ok
}

// fixTrue pins a literal to true.
func (v *cpVars) fixTrue(lit cpmodel.BoolVar) { v.builder.AddBoolOr(lit) }

// fixFalse pins a literal to false.
func (v *cpVars) fixFalse(lit cpmodel.BoolVar) { v.builder.AddBoolOr(lit.Not()) }
