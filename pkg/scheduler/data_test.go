package scheduler

import (
	"testing"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

func TestNewPlanContext_Indexes(t *testing.T) {
	f := newFixture(t)
	pc := f.context(t)

	if len(pc.codes) != 3 {
		t.Fatalf("got %d shift codes, expected 3", len(pc.codes))
	}
	// Stable alphabetical order keeps variable layout deterministic.
	for i, expected := range []string{"F", "N", "S"} {
		if pc.codes[i] != expected {
			t.Errorf("codes[%d] = %s, expected %s", i, pc.codes[i], expected)
		}
	}
	if len(pc.teamMembers[f.teamA.ID]) != 3 {
		t.Errorf("team A has %d members, expected 3", len(pc.teamMembers[f.teamA.ID]))
	}
	if len(pc.activeEmployees()) != 7 {
		t.Errorf("got %d active employees, expected 7", len(pc.activeEmployees()))
	}
}

func TestNewPlanContext_RejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	orphanTeam := uuid.New()
	f.data.Employees[0].TeamID = &orphanTeam

	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeUnknownTeam) {
		t.Errorf("expected CodeUnknownTeam, got %v", err)
	}

	f = newFixture(t)
	f.data.Absences = append(f.data.Absences, &model.Absence{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: uuid.New(),
		StartDate:  "2026-01-05",
		EndDate:    "2026-01-06",
	})
	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeUnknownEmployee) {
		t.Errorf("expected CodeUnknownEmployee, got %v", err)
	}

	f = newFixture(t)
	f.data.Committed = append(f.data.Committed, &model.ShiftAssignment{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: f.alpha.ID,
		ShiftCode:  "X",
		Date:       "2026-01-05",
	})
	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeUnknownShiftType) {
		t.Errorf("expected CodeUnknownShiftType, got %v", err)
	}
}

func TestNewPlanContext_RejectsUnresolvableRotations(t *testing.T) {
	f := newFixture(t)
	group := &model.RotationGroup{
		BaseModel: model.NewBaseModel(),
		Name:      "custom",
		Sequence:  []string{"F", "X"},
	}
	f.data.RotationGroups = append(f.data.RotationGroups, group)
	gid := group.ID
	f.teamA.RotationGroupID = &gid

	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeUnknownShiftType) {
		t.Errorf("expected CodeUnknownShiftType for rotation code X, got %v", err)
	}

	// The default rotation is validated too: without an S shift type the
	// cycle cannot be pinned.
	f = newFixture(t)
	f.data.ShiftTypes = f.data.ShiftTypes[:2] // F, N
	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeUnknownShiftType) {
		t.Errorf("expected CodeUnknownShiftType for the default rotation, got %v", err)
	}

	f = newFixture(t)
	orphanGroup := uuid.New()
	f.teamB.RotationGroupID = &orphanGroup
	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected CodeNotFound for an unknown rotation group, got %v", err)
	}
}

func TestNewPlanContext_RejectsDuplicateShiftCode(t *testing.T) {
	f := newFixture(t)
	dup := *f.data.ShiftTypes[0]
	dup.BaseModel = model.NewBaseModel()
	f.data.ShiftTypes = append(f.data.ShiftTypes, &dup)

	if _, err := newPlanContext(f.window, f.data); !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("expected CodeInvalidInput, got %v", err)
	}
}

func TestPlanContext_AnchorFor(t *testing.T) {
	f := newFixture(t)
	pc := f.context(t)

	week2 := calendar.WeekKey{Year: 2026, Week: 2}
	week3 := calendar.WeekKey{Year: 2026, Week: 3}

	// Default rotation F,N,S keyed by ISO week number.
	if got := pc.anchorFor(f.teamA.ID, week2); got != "S" {
		t.Errorf("team A week 2 anchor = %s, expected S", got)
	}
	if got := pc.anchorFor(f.teamA.ID, week3); got != "F" {
		t.Errorf("team A week 3 anchor = %s, expected F", got)
	}

	// Team B is offset by one position; the two teams never share an anchor.
	if got := pc.anchorFor(f.teamB.ID, week2); got != "F" {
		t.Errorf("team B week 2 anchor = %s, expected F", got)
	}
	if pc.anchorFor(f.teamA.ID, week2) == pc.anchorFor(f.teamB.ID, week2) {
		t.Error("offset teams must not share the same anchor in one week")
	}

	// Week-to-week continuity follows the rotation order.
	if next := pc.anchorFor(f.teamA.ID, week3); next != model.NextInRotation(pc.rotationOf(f.teamA.ID), pc.anchorFor(f.teamA.ID, week2)) {
		t.Error("consecutive weeks must step through the rotation")
	}
}

func TestPlanContext_AbsenceOn(t *testing.T) {
	f := newFixture(t)
	f.data.Absences = append(f.data.Absences, &model.Absence{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: f.alpha.ID,
		Category:   model.AbsenceSick,
		StartDate:  "2026-01-07",
		EndDate:    "2026-01-09",
	})
	pc := f.context(t)

	if pc.absenceOn(f.alpha.ID, "2026-01-08") == nil {
		t.Error("covered date should resolve the absence")
	}
	if pc.absenceOn(f.alpha.ID, "2026-01-10") != nil {
		t.Error("date after the absence should not resolve")
	}
	if pc.absenceOn(f.beta.ID, "2026-01-08") != nil {
		t.Error("other employees are unaffected")
	}
}

func TestPlanContext_MaxConsecutiveAll(t *testing.T) {
	f := newFixture(t)
	f.data.ShiftTypes[1].MaxConsecutiveDays = 4
	pc := f.context(t)

	if got := pc.maxConsecutiveAll(); got != 6 {
		t.Errorf("maxConsecutiveAll = %d, expected 6", got)
	}
}
