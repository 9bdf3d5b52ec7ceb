package scheduler

import (
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// addObjective encodes the soft catalog as penalty terms and installs the
// minimization objective. bias carries the cross-period fairness accumulator
// value per employee; positive means above-average irregular load.
func addObjective(pc *planContext, v *cpVars, cfg Config, w Weights, bias map[uuid.UUID]int64) {
	obj := cpmodel.NewLinearExpr()

	addSandwichPenalties(pc, v, obj, w)
	addIsolationPenalties(pc, v, obj, w)
	addRestPenalties(pc, v, obj, cfg, w)
	addRotationAdherence(pc, v, obj, w)
	addMinBlockPenalties(pc, v, obj, cfg, w)
	addSoftConsecutive(pc, v, obj, cfg, w)
	addHoppingPenalties(pc, v, obj, w)
	addStaffingOrdering(pc, v, obj, w)
	addShortfallPenalties(pc, v, obj, cfg, w)
	addDistinctTypePenalties(pc, v, obj, cfg, w)
	addTeamTogether(pc, v, obj, w)
	addOverstaffAndRewards(pc, v, obj, w, bias)

	v.builder.Minimize(obj)
}

// violLit creates a penalty literal forced true whenever every positive
// literal holds and every negative literal does not. The clause leaves the
// literal free otherwise; minimization settles it at false.
func violLit(v *cpVars, pos []cpmodel.BoolVar, neg []cpmodel.BoolVar) cpmodel.BoolVar {
	viol := v.builder.NewBoolVar()
	clause := make([]cpmodel.BoolVar, 0, len(pos)+len(neg)+1)
	for _, p := range pos {
		clause = append(clause, p.Not())
	}
	clause = append(clause, neg...)
	clause = append(clause, viol)
	v.builder.AddBoolOr(clause...)
	return viol
}

// addSandwichPenalties punishes a shift type interrupted by one or two worked
// days of another type and then resumed.
func addSandwichPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		for _, code := range pc.codes {
			for i := 0; i+2 < len(dates); i++ {
				a, okA := v.shiftDay[empDateCode{emp.ID, dates[i], code}]
				b, okB := v.shiftDay[empDateCode{emp.ID, dates[i+2], code}]
				if !okA || !okB {
					continue
				}
				mid, okMid := v.shiftDay[empDateCode{emp.ID, dates[i+1], code}]
				works := v.worksDay[empDate{emp.ID, dates[i+1]}]

				pos := []cpmodel.BoolVar{a, b, works}
				var neg []cpmodel.BoolVar
				if okMid {
					neg = append(neg, mid)
				}
				obj.AddTerm(violLit(v, pos, neg), w.SandwichPattern)

				// Two-day interruption: A ? ? A with both middle days worked
				// on other types.
				if i+3 >= len(dates) {
					continue
				}
				b3, okB3 := v.shiftDay[empDateCode{emp.ID, dates[i+3], code}]
				if !okB3 {
					continue
				}
				mid2, okMid2 := v.shiftDay[empDateCode{emp.ID, dates[i+2], code}]
				works2 := v.worksDay[empDate{emp.ID, dates[i+2]}]
				pos2 := []cpmodel.BoolVar{a, b3, works, works2}
				var neg2 []cpmodel.BoolVar
				if okMid {
					neg2 = append(neg2, mid)
				}
				if okMid2 {
					neg2 = append(neg2, mid2)
				}
				obj.AddTerm(violLit(v, pos2, neg2), w.SandwichPattern)
			}
		}
	}
}

// addIsolationPenalties punishes a single day of one type wedged between
// worked days of other types.
func addIsolationPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		for _, code := range pc.codes {
			for i := 1; i+1 < len(dates); i++ {
				day, ok := v.shiftDay[empDateCode{emp.ID, dates[i], code}]
				if !ok {
					continue
				}
				prevWorks := v.worksDay[empDate{emp.ID, dates[i-1]}]
				nextWorks := v.worksDay[empDate{emp.ID, dates[i+1]}]

				pos := []cpmodel.BoolVar{day, prevWorks, nextWorks}
				var neg []cpmodel.BoolVar
				if p, ok := v.shiftDay[empDateCode{emp.ID, dates[i-1], code}]; ok {
					neg = append(neg, p)
				}
				if n, ok := v.shiftDay[empDateCode{emp.ID, dates[i+1], code}]; ok {
					neg = append(neg, n)
				}
				obj.AddTerm(violLit(v, pos, neg), w.IsolatedShift)
			}
		}
	}
}

// addRestPenalties punishes adjacent-day shift pairs with less than the
// minimum rest. The weekend-into-weekday transition worked cross-team carries
// the reduced weight; it is often the only way to cover a weekend gap.
func addRestPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, cfg Config, w Weights) {
	type codePair struct{ from, to string }
	var tight []codePair
	for _, c1 := range pc.codes {
		for _, c2 := range pc.codes {
			if pc.shiftTypes[c1].RestHoursBefore(pc.shiftTypes[c2]) < cfg.MinRestHours {
				tight = append(tight, codePair{c1, c2})
			}
		}
	}
	if len(tight) == 0 {
		return
	}

	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		for i := 0; i+1 < len(dates); i++ {
			boundary := model.IsWeekend(dates[i]) && !model.IsWeekend(dates[i+1])
			for _, p := range tight {
				next, ok := v.shiftDay[empDateCode{emp.ID, dates[i+1], p.to}]
				if !ok {
					continue
				}
				if !boundary {
					if cur, ok := v.shiftDay[empDateCode{emp.ID, dates[i], p.from}]; ok {
						obj.AddTerm(violLit(v, []cpmodel.BoolVar{cur, next}, nil), w.RestViolation)
					}
					continue
				}
				// Split the weekend boundary by provenance: only the
				// cross-team weekend shift into the Monday anchor start is
				// tolerated at the reduced weight.
				if at, ok := v.anchorAt[empDateCode{emp.ID, dates[i], p.from}]; ok {
					obj.AddTerm(violLit(v, []cpmodel.BoolVar{at, next}, nil), w.RestViolation)
				}
				c, ok := v.cross[empDateCode{emp.ID, dates[i], p.from}]
				if !ok {
					continue
				}
				if toAnchor, ok := v.anchorAt[empDateCode{emp.ID, dates[i+1], p.to}]; ok {
					obj.AddTerm(violLit(v, []cpmodel.BoolVar{c, toAnchor}, nil), w.RestBoundaryReduced)
				}
				if toCross, ok := v.cross[empDateCode{emp.ID, dates[i+1], p.to}]; ok {
					obj.AddTerm(violLit(v, []cpmodel.BoolVar{c, toCross}, nil), w.RestViolation)
				}
			}
		}
	}
}

// addRotationAdherence punishes week-to-week transitions that skip a step of
// the employee's rotation sequence. Only date pairs close to the week boundary
// with no work in between are compared.
func addRotationAdherence(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		if !emp.HasTeam() {
			continue
		}
		seq := pc.rotationOf(*emp.TeamID)

		for k := 0; k+1 < len(pc.window.Weeks); k++ {
			boundary := (k + 1) * 7
			for i := boundary - 3; i < boundary; i++ {
				for j := boundary; j < boundary+3 && j < len(dates); j++ {
					if j-i > 3 {
						continue
					}
					var between []cpmodel.BoolVar
					for m := i + 1; m < j; m++ {
						between = append(between, v.worksDay[empDate{emp.ID, dates[m]}])
					}
					for _, c1 := range pc.codes {
						from, ok := v.shiftDay[empDateCode{emp.ID, dates[i], c1}]
						if !ok {
							continue
						}
						allowed := model.NextInRotation(seq, c1)
						for _, c2 := range pc.codes {
							if c2 == c1 || c2 == allowed {
								continue
							}
							to, ok := v.shiftDay[empDateCode{emp.ID, dates[j], c2}]
							if !ok {
								continue
							}
							obj.AddTerm(violLit(v, []cpmodel.BoolVar{from, to}, between), w.RotationAdherence)
						}
					}
				}
			}
		}
	}
}

// addMinBlockPenalties punishes weekday working blocks shorter than the
// configured minimum, per week.
func addMinBlockPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, cfg Config, w Weights) {
	if cfg.MinBlockDays <= 1 {
		return
	}
	for _, emp := range pc.activeEmployees() {
		for _, week := range pc.window.Weeks {
			var weekdays []string
			for _, d := range week.Dates {
				if !model.IsWeekend(d) {
					weekdays = append(weekdays, d)
				}
			}
			for s := 0; s < len(weekdays); s++ {
				for length := 1; length < cfg.MinBlockDays && s+length <= len(weekdays); length++ {
					var pos, neg []cpmodel.BoolVar
					for i := s; i < s+length; i++ {
						pos = append(pos, v.worksDay[empDate{emp.ID, weekdays[i]}])
					}
					// The week edge counts as a boundary: weekday blocks do
					// not continue across the weekend.
					if s > 0 {
						neg = append(neg, v.worksDay[empDate{emp.ID, weekdays[s-1]}])
					}
					if s+length < len(weekdays) {
						neg = append(neg, v.worksDay[empDate{emp.ID, weekdays[s+length]}])
					}
					obj.AddTerm(violLit(v, pos, neg), w.MinBlockLength)
				}
			}
		}
	}
}

// addSoftConsecutive punishes each fully worked window one day longer than
// the soft consecutive-days preference. Layered under the hard cap.
func addSoftConsecutive(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, cfg Config, w Weights) {
	span := cfg.SoftMaxConsecutive + 1
	if cfg.SoftMaxConsecutive <= 0 {
		return
	}
	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		for i := 0; i+span <= len(dates); i++ {
			var pos []cpmodel.BoolVar
			for j := i; j < i+span; j++ {
				pos = append(pos, v.worksDay[empDate{emp.ID, dates[j]}])
			}
			obj.AddTerm(violLit(v, pos, nil), w.SoftConsecutiveCap)
		}
	}
}

// addHoppingPenalties punishes a shift-type change between adjacent worked
// days. Rest and sandwich rules cover the severe cases; this is the gentle
// background pressure toward stable blocks.
func addHoppingPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	dates := pc.window.Dates()
	for _, emp := range pc.activeEmployees() {
		for i := 0; i+1 < len(dates); i++ {
			for _, c1 := range pc.codes {
				cur, ok := v.shiftDay[empDateCode{emp.ID, dates[i], c1}]
				if !ok {
					continue
				}
				for _, c2 := range pc.codes {
					if c2 == c1 {
						continue
					}
					next, ok := v.shiftDay[empDateCode{emp.ID, dates[i+1], c2}]
					if !ok {
						continue
					}
					obj.AddTerm(violLit(v, []cpmodel.BoolVar{cur, next}, nil), w.ShiftHopping)
				}
			}
		}
	}
}

// addStaffingOrdering punishes filling a low-capacity shift beyond its
// minimum while a higher-capacity shift still has room that day.
func addStaffingOrdering(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	b := v.builder
	for _, date := range pc.window.Dates() {
		for _, low := range pc.codes {
			for _, high := range pc.codes {
				if pc.capacityOf(low) >= pc.capacityOf(high) {
					continue
				}
				lowCount := cpmodel.NewConstant(0)
				highCount := cpmodel.NewConstant(0)
				present := false
				for _, emp := range pc.activeEmployees() {
					if sd, ok := v.shiftDay[empDateCode{emp.ID, date, low}]; ok {
						lowCount.Add(sd)
						present = true
					}
					if sd, ok := v.shiftDay[empDateCode{emp.ID, date, high}]; ok {
						highCount.Add(sd)
					}
				}
				if !present {
					continue
				}

				weekend := model.IsWeekend(date)
				lowMin := int64(pc.shiftTypes[low].MinStaff(weekend))
				highCap := int64(pc.shiftTypes[high].MaxStaff(weekend))

				over := b.NewBoolVar()
				b.AddGreaterOrEqual(lowCount, cpmodel.NewConstant(lowMin+1)).OnlyEnforceIf(over)
				b.AddLessOrEqual(lowCount, cpmodel.NewConstant(lowMin)).OnlyEnforceIf(over.Not())

				gap := b.NewIntVarFromDomain(cpmodel.NewDomain(0, highCap))
				withGap := cpmodel.NewLinearExpr().Add(gap)
				for _, emp := range pc.activeEmployees() {
					if sd, ok := v.shiftDay[empDateCode{emp.ID, date, high}]; ok {
						withGap.Add(sd)
					}
				}
				b.AddGreaterOrEqual(withGap, cpmodel.NewConstant(highCap)).OnlyEnforceIf(over)
				obj.AddTerm(gap, w.StaffingOrdering)
			}
		}
	}
}

// addShortfallPenalties punishes per-minute shortfall against the dynamic
// per-employee target: the weekly baseline scaled by the days the employee
// was available. Absences shrink the target instead of creating debt.
func addShortfallPenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, cfg Config, w Weights) {
	b := v.builder
	perDay := int64(math.Round(cfg.WeeklyTargetHours * 60.0 / 7.0))

	for _, emp := range pc.activeEmployees() {
		var target int64
		worked := cpmodel.NewLinearExpr()
		for _, date := range pc.window.Dates() {
			if pc.absenceOn(emp.ID, date) != nil {
				continue
			}
			target += perDay
			for _, code := range pc.codes {
				if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
					worked.AddTerm(sd, int64(pc.shiftTypes[code].DurationMin))
				}
			}
		}
		if target <= 0 {
			continue
		}
		short := b.NewIntVarFromDomain(cpmodel.NewDomain(0, target))
		withShort := cpmodel.NewLinearExpr().Add(short)
		for _, date := range pc.window.Dates() {
			if pc.absenceOn(emp.ID, date) != nil {
				continue
			}
			for _, code := range pc.codes {
				if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
					withShort.AddTerm(sd, int64(pc.shiftTypes[code].DurationMin))
				}
			}
		}
		b.AddGreaterOrEqual(withShort, cpmodel.NewConstant(target))
		obj.AddTerm(short, w.TargetShortfallPerMin)
	}
}

// addDistinctTypePenalties punishes every shift type beyond the configured
// weekly allowance.
func addDistinctTypePenalties(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, cfg Config, w Weights) {
	b := v.builder
	allowance := int64(cfg.MaxShiftTypesPerWeek)
	if allowance <= 0 {
		allowance = 1
	}
	for _, emp := range pc.activeEmployees() {
		for _, week := range pc.window.Weeks {
			uses := cpmodel.NewConstant(0)
			any := false
			for _, code := range pc.codes {
				u := b.NewBoolVar()
				hit := false
				for _, date := range week.Dates {
					if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
						b.AddImplication(sd, u)
						hit = true
					}
				}
				if hit {
					uses.Add(u)
					any = true
				} else {
					v.fixFalse(u)
				}
			}
			if !any {
				continue
			}
			excess := b.NewIntVarFromDomain(cpmodel.NewDomain(0, int64(len(pc.codes))))
			withExcess := cpmodel.NewLinearExpr().Add(excess).AddConstant(allowance)
			b.AddGreaterOrEqual(withExcess, uses)
			obj.AddTerm(excess, w.DistinctShiftTypes)
		}
	}
}

// addTeamTogether punishes splitting a team: a member pulled cross-team in a
// night-anchor week, and partially staffed weekend days.
func addTeamTogether(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights) {
	b := v.builder

	var nightCodes []string
	for _, code := range pc.codes {
		if pc.shiftTypes[code].IsNight {
			nightCodes = append(nightCodes, code)
		}
	}

	for _, team := range pc.data.Teams {
		members := pc.teamMembers[team.ID]
		if len(members) == 0 {
			continue
		}

		for _, week := range pc.window.Weeks {
			if len(nightCodes) == 0 {
				break
			}
			for _, emp := range members {
				if !emp.IsActive() {
					continue
				}
				pulled := b.NewBoolVar()
				hit := false
				for _, date := range week.Dates {
					for _, code := range pc.codes {
						if c, ok := v.cross[empDateCode{emp.ID, date, code}]; ok {
							b.AddImplication(c, pulled)
							hit = true
						}
					}
				}
				if !hit {
					v.fixFalse(pulled)
					continue
				}
				for _, night := range nightCodes {
					anchor, ok := v.anchor[anchorKey{team.ID, week.Key, night}]
					if !ok {
						continue
					}
					obj.AddTerm(violLit(v, []cpmodel.BoolVar{pulled, anchor}, nil), w.TeamTogetherNight)
				}
			}
		}

		for _, date := range pc.window.Dates() {
			if !model.IsWeekend(date) {
				continue
			}
			var lits []cpmodel.BoolVar
			for _, emp := range members {
				if wv, ok := v.weekend[empDate{emp.ID, date}]; ok {
					lits = append(lits, wv)
				}
			}
			if len(lits) < 2 {
				continue
			}
			anyb := b.NewBoolVar()
			for _, l := range lits {
				b.AddImplication(l, anyb)
			}
			b.AddBoolOr(lits...).OnlyEnforceIf(anyb)

			missing := b.NewIntVarFromDomain(cpmodel.NewDomain(0, int64(len(lits))))
			withSum := cpmodel.NewLinearExpr().Add(missing)
			for _, l := range lits {
				withSum.Add(l)
			}
			b.AddGreaterOrEqual(withSum, cpmodel.NewConstant(int64(len(lits)))).OnlyEnforceIf(anyb)
			obj.AddTerm(missing, w.TeamTogetherWeekend)
		}
	}
}

// addOverstaffAndRewards attaches the low-tier per-variable terms: gap-fill
// reward, cross-team penalty, spill surcharge, capacity-rank reward, fairness
// bias, and the graduated overstaffing penalties.
func addOverstaffAndRewards(pc *planContext, v *cpVars, obj *cpmodel.LinearExpr, w Weights, bias map[uuid.UUID]int64) {
	b := v.builder
	dates := pc.window.Dates()

	capMax := 0
	for _, code := range pc.codes {
		if c := pc.capacityOf(code); c > capMax {
			capMax = c
		}
	}

	for _, emp := range pc.activeEmployees() {
		for _, date := range dates {
			if !model.IsWeekend(date) {
				obj.AddTerm(v.worksDay[empDate{emp.ID, date}], -w.GapFillReward)
			}
			for _, code := range pc.codes {
				edc := empDateCode{emp.ID, date, code}
				if c, ok := v.cross[edc]; ok {
					coeff := w.CrossTeamPenalty
					coeff += w.SpillPreference * int64(capMax-pc.capacityOf(code))
					coeff += w.FairnessBias * bias[emp.ID]
					obj.AddTerm(c, coeff)
				}
				if sd, ok := v.shiftDay[edc]; ok {
					obj.AddTerm(sd, -w.HighCapacityReward*int64(pc.capacityOf(code)))
				}
			}
			if wv, ok := v.weekend[empDate{emp.ID, date}]; ok {
				obj.AddTerm(wv, w.FairnessBias*bias[emp.ID])
			}
		}
	}

	for idx, date := range dates {
		weekend := model.IsWeekend(date)
		for _, code := range pc.codes {
			st := pc.shiftTypes[code]
			if !st.RunsOn(model.Weekday(date)) {
				continue
			}
			min := int64(st.MinStaff(weekend))
			max := int64(st.MaxStaff(weekend))
			if max <= min {
				continue
			}

			over := b.NewIntVarFromDomain(cpmodel.NewDomain(0, max-min))
			withMin := cpmodel.NewLinearExpr().Add(over).AddConstant(min)
			count := cpmodel.NewConstant(0)
			for _, emp := range pc.activeEmployees() {
				if sd, ok := v.shiftDay[empDateCode{emp.ID, date, code}]; ok {
					count.Add(sd)
				}
			}
			b.AddGreaterOrEqual(withMin, count)

			var weight int64
			if weekend {
				// Overstaffing late weekends costs more so spare capacity is
				// burned early, keeping the final weekends lean.
				weight = w.WeekendOverstaff + 2*w.WeekendOverstaff*int64(idx)/int64(len(dates))
			} else {
				weight = w.WeekdayOverstaff
			}
			obj.AddTerm(over, weight)
		}
	}
}
