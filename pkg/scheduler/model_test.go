package scheduler

import (
	"sort"
	"testing"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// unitLiterals collects the single-literal clauses from the built model
// proto. fixTrue and fixFalse are the only sources of these, so they identify
// the pinned variables: a non-negative literal is pinned true, a negative one
// (proto encoding -index-1) pinned false.
func unitLiterals(t *testing.T, v *cpVars) (pos, neg []int32) {
	t.Helper()
	m, err := v.builder.Model()
	if err != nil {
		t.Fatalf("building model proto: %v", err)
	}
	for _, c := range m.GetConstraints() {
		lits := c.GetBoolOr().GetLiterals()
		if len(lits) != 1 || len(c.GetEnforcementLiteral()) != 0 {
			continue
		}
		if lits[0] >= 0 {
			pos = append(pos, lits[0])
		} else {
			neg = append(neg, lits[0])
		}
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
	sort.Slice(neg, func(i, j int) bool { return neg[i] < neg[j] })
	return pos, neg
}

func TestModel_RotationPinsAnchors(t *testing.T) {
	f := newFixture(t)
	pc := f.context(t)
	v := buildVariables(pc)
	addHardConstraints(pc, v, DefaultConfig())

	// Anchor variables are created first, teams x weeks x sorted codes, so
	// their indices are deterministic: team A fills 0-5, team B 6-11 with
	// F/N/S per week in that order. The rotation dictates S and F for team A
	// in weeks 2026/W02 and W03, and F and N for the offset team B.
	pos, neg := unitLiterals(t, v)
	want := []int32{2, 3, 6, 10}
	if len(pos) != len(want) {
		t.Fatalf("pinned-true literals = %v, expected %v", pos, want)
	}
	for i := range want {
		if pos[i] != want[i] {
			t.Fatalf("pinned-true literals = %v, expected %v", pos, want)
		}
	}
	if len(neg) != 0 {
		t.Errorf("hard catalog pinned %d literals false, expected none", len(neg))
	}
}

func TestModel_AbsenceFixesAllWorkFalse(t *testing.T) {
	f := newFixture(t)
	f.data.Absences = append(f.data.Absences, &model.Absence{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: f.alpha.ID,
		Category:   model.AbsenceSick,
		StartDate:  "2026-01-06",
		EndDate:    "2026-01-06",
	})
	pc := f.context(t)
	v := buildVariables(pc)

	applyLocks(pc, v, model.LockSet{})

	// One weekday absence pins the own-anchor variable and all three
	// cross-team variables false; nothing is pinned true.
	pos, neg := unitLiterals(t, v)
	if len(neg) != 4 {
		t.Errorf("absence pinned %d literals false, expected 4 (own + 3 cross)", len(neg))
	}
	if len(pos) != 0 {
		t.Errorf("absence pinned %d literals true, expected none", len(pos))
	}
}

func TestModel_ContinuityLockFixesLiteral(t *testing.T) {
	f := newFixture(t)
	pc := f.context(t)
	v := buildVariables(pc)

	// Team A's rotation anchor in 2026/W02 is S, so a continuity lock on S
	// pins the own-anchor day variable true.
	applyLocks(pc, v, model.LockSet{EmployeeDates: []model.EmployeeDateLock{{
		EmployeeID: f.alpha.ID,
		Date:       "2026-01-05",
		ShiftCode:  "S",
		Source:     model.LockContinuity,
	}}})

	pos, neg := unitLiterals(t, v)
	if len(pos) != 1 || len(neg) != 0 {
		t.Fatalf("continuity lock pinned %d true / %d false, expected exactly one true", len(pos), len(neg))
	}
	if pos[0] < 12 {
		t.Errorf("pinned literal %d is an anchor variable; expected an employee-day variable", pos[0])
	}

	// A code that is not the week's anchor pins the cross-team variable.
	f2 := newFixture(t)
	pc2 := f2.context(t)
	v2 := buildVariables(pc2)
	applyLocks(pc2, v2, model.LockSet{EmployeeDates: []model.EmployeeDateLock{{
		EmployeeID: f2.alpha.ID,
		Date:       "2026-01-05",
		ShiftCode:  "F",
		Source:     model.LockContinuity,
	}}})
	pos2, _ := unitLiterals(t, v2)
	if len(pos2) != 1 {
		t.Fatalf("non-anchor lock pinned %d literals true, expected one", len(pos2))
	}
	if pos2[0] == pos[0] {
		t.Error("anchor and cross locks pinned the same variable")
	}
}

func TestModel_WeekendWorkingLockBindsAnyShift(t *testing.T) {
	f := newFixture(t)
	pc := f.context(t)
	v := buildVariables(pc)

	// The standby springer has no team and therefore no own-anchor weekend
	// variable; the lock must still bind by pinning the works-day variable.
	applyLocks(pc, v, model.LockSet{Weekends: []model.WeekendLock{{
		EmployeeID: f.standby.ID,
		Date:       "2026-01-10",
		Working:    true,
		Source:     model.LockManual,
	}}})

	pos, neg := unitLiterals(t, v)
	if len(pos) != 1 || len(neg) != 0 {
		t.Fatalf("working weekend lock pinned %d true / %d false, expected exactly one true", len(pos), len(neg))
	}

	// The non-working flavor pins the anchor weekend variable and every
	// cross-team variable false.
	f2 := newFixture(t)
	pc2 := f2.context(t)
	v2 := buildVariables(pc2)
	applyLocks(pc2, v2, model.LockSet{Weekends: []model.WeekendLock{{
		EmployeeID: f2.beta.ID,
		Date:       "2026-01-10",
		Working:    false,
		Source:     model.LockManual,
	}}})
	pos2, neg2 := unitLiterals(t, v2)
	if len(neg2) != 4 || len(pos2) != 0 {
		t.Fatalf("non-working weekend lock pinned %d true / %d false, expected 0/4", len(pos2), len(neg2))
	}
}
