package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// testFixture is a small two-team setup over two whole ISO weeks.
type testFixture struct {
	window *calendar.Window
	data   *PlanningData

	teamA, teamB model.Team
	// alpha..gamma belong to team A, delta..zeta to team B, standby is a
	// teamless springer.
	alpha, beta, gamma, delta, epsilon, zeta, standby model.Employee
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	window, err := calendar.Partition("2026-01-05", "2026-01-18", time.Monday)
	if err != nil {
		t.Fatalf("partitioning window: %v", err)
	}

	f := &testFixture{window: window}
	f.teamA = model.Team{BaseModel: model.NewBaseModel(), Name: "A", RotationOffset: 0}
	f.teamB = model.Team{BaseModel: model.NewBaseModel(), Name: "B", RotationOffset: 1}

	emp := func(name string, team *model.Team, springer bool, duties ...string) model.Employee {
		e := model.Employee{
			BaseModel:       model.NewBaseModel(),
			Name:            name,
			PersonnelNumber: name,
			IsSpringer:      springer,
			Duties:          duties,
			Active:          true,
		}
		if team != nil {
			id := team.ID
			e.TeamID = &id
		}
		return e
	}

	f.alpha = emp("alpha", &f.teamA, false)
	f.beta = emp("beta", &f.teamA, false, "firstaid")
	f.gamma = emp("gamma", &f.teamA, false)
	f.delta = emp("delta", &f.teamB, false)
	f.epsilon = emp("epsilon", &f.teamB, false)
	f.zeta = emp("zeta", &f.teamB, false)
	f.standby = emp("standby", nil, true, "firstaid")

	f.data = &PlanningData{
		Employees: []*model.Employee{
			&f.alpha, &f.beta, &f.gamma, &f.delta, &f.epsilon, &f.zeta, &f.standby,
		},
		Teams:      []*model.Team{&f.teamA, &f.teamB},
		ShiftTypes: testShiftTypes(),
	}
	return f
}

func testShiftTypes() []*model.ShiftType {
	shift := func(code, start, end string, night bool) *model.ShiftType {
		return &model.ShiftType{
			BaseModel:          model.NewBaseModel(),
			Code:               code,
			Name:               code,
			StartTime:          start,
			EndTime:            end,
			DurationMin:        480,
			WeeklyHours:        38.5,
			MinWeekday:         1,
			MaxWeekday:         3,
			MinWeekend:         1,
			MaxWeekend:         2,
			MaxConsecutiveDays: 6,
			IsNight:            night,
		}
	}
	return []*model.ShiftType{
		shift("F", "06:00", "14:00", false),
		shift("N", "22:00", "06:00", true),
		shift("S", "14:00", "22:00", false),
	}
}

func (f *testFixture) context(t *testing.T) *planContext {
	t.Helper()
	pc, err := newPlanContext(f.window, f.data)
	if err != nil {
		t.Fatalf("building plan context: %v", err)
	}
	return pc
}

// workingDay builds a worked DayStatus for evaluator tests.
func workingDay(date, code string) model.DayStatus {
	return model.DayStatus{Date: date, ShiftCode: code}
}

func offDay(date string) model.DayStatus {
	return model.DayStatus{Date: date}
}

func uuidPtrEqual(a *uuid.UUID, b uuid.UUID) bool {
	return a != nil && *a == b
}
