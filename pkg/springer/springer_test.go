package springer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/scheduler"
	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

type memStore struct {
	totals map[uuid.UUID]stats.Totals
}

func (s *memStore) ReadTotals(ctx context.Context) (map[uuid.UUID]stats.Totals, error) {
	return s.totals, nil
}

func (s *memStore) WriteTotals(ctx context.Context, totals map[uuid.UUID]stats.Totals) error {
	s.totals = totals
	return nil
}

func loadedAccumulator(t *testing.T, totals map[uuid.UUID]stats.Totals) *stats.Accumulator {
	t.Helper()
	acc := stats.NewAccumulator(&memStore{totals: totals})
	require.NoError(t, acc.Load(context.Background()))
	return acc
}

type fixture struct {
	data   *scheduler.PlanningData
	sick   model.Employee
	jumper model.Employee
	backup model.Employee
}

func newFixture() *fixture {
	teamID := uuid.New()
	emp := func(name string, springer bool, duties ...string) model.Employee {
		e := model.Employee{
			BaseModel:       model.NewBaseModel(),
			Name:            name,
			PersonnelNumber: name,
			IsSpringer:      springer,
			Duties:          duties,
			Active:          true,
		}
		if !springer {
			id := teamID
			e.TeamID = &id
		}
		return e
	}

	f := &fixture{
		sick:   emp("sick", false),
		jumper: emp("jumper", true, "firstaid"),
		backup: emp("backup", true, "firstaid"),
	}

	early := &model.ShiftType{
		BaseModel: model.NewBaseModel(), Code: "F", Name: "F",
		StartTime: "06:00", EndTime: "14:00", DurationMin: 480,
		MaxConsecutiveDays: 6,
	}
	night := &model.ShiftType{
		BaseModel: model.NewBaseModel(), Code: "N", Name: "N",
		StartTime: "22:00", EndTime: "06:00", DurationMin: 480,
		MaxConsecutiveDays: 6, IsNight: true,
	}

	f.data = &scheduler.PlanningData{
		Employees:  []*model.Employee{&f.sick, &f.jumper, &f.backup},
		ShiftTypes: []*model.ShiftType{early, night},
	}

	for _, date := range []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09"} {
		f.data.Committed = append(f.data.Committed, &model.ShiftAssignment{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: f.sick.ID,
			ShiftCode:  "F",
			Date:       date,
			Source:     model.SourceSystem,
		})
	}
	return f
}

func sickness(empID uuid.UUID, start, end string) *model.Absence {
	return &model.Absence{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: empID,
		Category:   model.AbsenceSick,
		StartDate:  start,
		EndDate:    end,
	}
}

func TestReplaceForAbsence_SubstitutesCoveredDays(t *testing.T) {
	f := newFixture()
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-09"))
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)

	require.Len(t, result.Removed, 3, "only the covered days are cleared")
	require.Len(t, result.Substitutions, 3)
	assert.True(t, result.Covered())
	assert.Empty(t, result.Violations)

	for _, sub := range result.Substitutions {
		assert.Equal(t, "F", sub.ShiftCode)
		assert.True(t, sub.Springer, "substitutions carry the springer flag")
		assert.True(t, sub.CrossTeam)
		assert.Equal(t, model.SourceSystem, sub.Source)
		assert.NotEqual(t, f.sick.ID, sub.EmployeeID)
	}
}

func TestReplaceForAbsence_PrefersLowerIrregularLoad(t *testing.T) {
	f := newFixture()
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-07"))

	acc := loadedAccumulator(t, map[uuid.UUID]stats.Totals{
		f.jumper.ID: {NightShifts: 8, WeekendShifts: 4},
		f.backup.ID: {NightShifts: 1},
	})
	engine := NewEngine(scheduler.DefaultConfig(), acc)

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, f.backup.ID, result.Substitutions[0].EmployeeID)
}

func TestReplaceForAbsence_TieBreaksByPersonnelNumber(t *testing.T) {
	f := newFixture()
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-07"))
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)
	require.Len(t, result.Substitutions, 1)
	// "backup" sorts before "jumper".
	assert.Equal(t, f.backup.ID, result.Substitutions[0].EmployeeID)
}

func TestReplaceForAbsence_SkipsOccupiedAndAbsentCandidates(t *testing.T) {
	f := newFixture()
	f.data.Absences = append(f.data.Absences,
		sickness(f.sick.ID, "2026-01-07", "2026-01-07"),
		sickness(f.backup.ID, "2026-01-07", "2026-01-07"),
	)
	f.data.Committed = append(f.data.Committed, &model.ShiftAssignment{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: f.jumper.ID,
		ShiftCode:  "N",
		Date:       "2026-01-07",
	})
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)

	assert.Empty(t, result.Substitutions)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "understaffed", result.Violations[0].Category)
	assert.Equal(t, model.SeverityCritical, result.Violations[0].Severity)
	assert.False(t, result.Covered())
}

func TestReplaceForAbsence_EnforcesRestBetweenShifts(t *testing.T) {
	f := newFixture()
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-07"))
	// Both candidates worked the night into the gap day; an early shift would
	// mean zero rest.
	for _, springer := range []uuid.UUID{f.jumper.ID, f.backup.ID} {
		f.data.Committed = append(f.data.Committed, &model.ShiftAssignment{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: springer,
			ShiftCode:  "N",
			Date:       "2026-01-06",
		})
	}
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)
	assert.Empty(t, result.Substitutions)
	require.Len(t, result.Violations, 1)
}

func TestReplaceForAbsence_RequiresDutyQualification(t *testing.T) {
	f := newFixture()
	f.data.ShiftTypes[0].RequiredDuty = "medic"
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-07"))
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)
	assert.Empty(t, result.Substitutions, "unqualified springers must not be assigned")
	assert.Len(t, result.Violations, 1)
}

func TestReplaceForAbsence_LaterDaysSeeEarlierSubstitutions(t *testing.T) {
	f := newFixture()
	// Two-day absence with a single available springer: after covering the
	// first day the weekly-load and same-day checks still run against the
	// updated picture.
	f.data.Employees = f.data.Employees[:2] // sick + jumper only
	f.data.Absences = append(f.data.Absences, sickness(f.sick.ID, "2026-01-07", "2026-01-08"))
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	result, err := engine.ReplaceForAbsence(f.data, f.data.Absences[0])
	require.NoError(t, err)

	require.Len(t, result.Removed, 2)
	require.Len(t, result.Substitutions, 2)
	for _, sub := range result.Substitutions {
		assert.Equal(t, f.jumper.ID, sub.EmployeeID)
	}
}

func TestReplaceForAbsence_RejectsBadInput(t *testing.T) {
	f := newFixture()
	engine := NewEngine(scheduler.DefaultConfig(), loadedAccumulator(t, nil))

	_, err := engine.ReplaceForAbsence(f.data, &model.Absence{
		EmployeeID: f.sick.ID, StartDate: "2026-01-09", EndDate: "2026-01-07",
	})
	assert.Error(t, err)

	_, err = engine.ReplaceForAbsence(f.data, sickness(uuid.New(), "2026-01-07", "2026-01-08"))
	assert.Error(t, err)
}
