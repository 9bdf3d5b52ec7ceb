package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

type memStore struct {
	totals map[uuid.UUID]Totals
	writes int
}

func (s *memStore) ReadTotals(ctx context.Context) (map[uuid.UUID]Totals, error) {
	return s.totals, nil
}

func (s *memStore) WriteTotals(ctx context.Context, totals map[uuid.UUID]Totals) error {
	s.totals = totals
	s.writes++
	return nil
}

func TestAccumulator_Fold(t *testing.T) {
	empID := uuid.New()
	store := &memStore{}
	acc := NewAccumulator(store)

	shiftTypes := map[string]*model.ShiftType{
		"F": {Code: "F", DurationMin: 480},
		"N": {Code: "N", DurationMin: 480, IsNight: true},
	}

	schedule := model.Schedule{
		empID: {
			{Date: "2026-01-05", ShiftCode: "F"},                  // Monday
			{Date: "2026-01-06"},                                  // off
			{Date: "2026-01-09", ShiftCode: "N"},                  // Friday night
			{Date: "2026-01-10", ShiftCode: "F", CrossTeam: true}, // Saturday cross
		},
	}

	if err := acc.Fold(context.Background(), nil, schedule, shiftTypes); err != nil {
		t.Fatalf("Fold failed: %v", err)
	}

	got := acc.Totals(empID)
	if got.WorkedHours != 24 {
		t.Errorf("WorkedHours = %.1f, expected 24", got.WorkedHours)
	}
	if got.NightShifts != 1 {
		t.Errorf("NightShifts = %d, expected 1", got.NightShifts)
	}
	if got.WeekendShifts != 1 {
		t.Errorf("WeekendShifts = %d, expected 1", got.WeekendShifts)
	}
	if got.CrossShifts != 1 {
		t.Errorf("CrossShifts = %d, expected 1", got.CrossShifts)
	}
	if store.writes != 1 {
		t.Errorf("store received %d writes, expected 1", store.writes)
	}

	// Folding a second period accumulates instead of replacing.
	if err := acc.Fold(context.Background(), nil, schedule, shiftTypes); err != nil {
		t.Fatalf("second Fold failed: %v", err)
	}
	if got := acc.Totals(empID); got.WorkedHours != 48 || got.NightShifts != 2 {
		t.Errorf("totals after second fold = %+v, expected doubled", got)
	}
}

func TestAccumulator_FoldReplacesCommittedContribution(t *testing.T) {
	empID := uuid.New()
	acc := NewAccumulator(&memStore{})

	shiftTypes := map[string]*model.ShiftType{
		"F": {Code: "F", DurationMin: 480},
		"N": {Code: "N", DurationMin: 480, IsNight: true},
	}
	schedule := model.Schedule{
		empID: {
			{Date: "2026-01-05", ShiftCode: "F"},
			{Date: "2026-01-09", ShiftCode: "N"},
			{Date: "2026-01-10", ShiftCode: "F", CrossTeam: true},
		},
	}

	if err := acc.Fold(context.Background(), nil, schedule, shiftTypes); err != nil {
		t.Fatalf("first Fold failed: %v", err)
	}
	first := acc.Totals(empID)

	// Re-planning the same range replays the committed rows; subtracting them
	// before adding the identical schedule must leave the totals unchanged.
	committed := []*model.ShiftAssignment{
		{EmployeeID: empID, ShiftCode: "F", Date: "2026-01-05"},
		{EmployeeID: empID, ShiftCode: "N", Date: "2026-01-09"},
		{EmployeeID: empID, ShiftCode: "F", Date: "2026-01-10", CrossTeam: true},
	}
	if err := acc.Fold(context.Background(), committed, schedule, shiftTypes); err != nil {
		t.Fatalf("second Fold failed: %v", err)
	}
	if got := acc.Totals(empID); got != first {
		t.Errorf("re-folding the same period changed totals: %+v -> %+v", first, got)
	}
}

func TestAccumulator_Bias(t *testing.T) {
	loaded := uuid.New()
	light := uuid.New()
	extreme := uuid.New()

	store := &memStore{totals: map[uuid.UUID]Totals{
		loaded:  {WeekendShifts: 4, NightShifts: 2},
		light:   {},
		extreme: {WeekendShifts: 30, NightShifts: 20, CrossShifts: 10},
	}}
	acc := NewAccumulator(store)
	if err := acc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if b := acc.Bias(light); b >= 0 {
		t.Errorf("Bias(light) = %d, expected negative", b)
	}
	if b := acc.Bias(extreme); b != 5 {
		t.Errorf("Bias(extreme) = %d, expected clamp at 5", b)
	}

	empty := NewAccumulator(&memStore{})
	if b := empty.Bias(loaded); b != 0 {
		t.Errorf("Bias with no totals = %d, expected 0", b)
	}
}

func TestAnalyzeTotals(t *testing.T) {
	even := []Totals{
		{WorkedHours: 40, NightShifts: 2, WeekendShifts: 2},
		{WorkedHours: 40, NightShifts: 2, WeekendShifts: 2},
		{WorkedHours: 40, NightShifts: 2, WeekendShifts: 2},
	}
	skewed := []Totals{
		{WorkedHours: 80, NightShifts: 6, WeekendShifts: 6},
		{WorkedHours: 20, NightShifts: 0, WeekendShifts: 0},
		{WorkedHours: 20, NightShifts: 0, WeekendShifts: 0},
	}

	evenMetrics := AnalyzeTotals(even)
	skewedMetrics := AnalyzeTotals(skewed)

	if evenMetrics.WorkloadGini != 0 {
		t.Errorf("even distribution gini = %.3f, expected 0", evenMetrics.WorkloadGini)
	}
	if evenMetrics.OverallFairness != 100 {
		t.Errorf("even distribution fairness = %.1f, expected 100", evenMetrics.OverallFairness)
	}
	if skewedMetrics.OverallFairness >= evenMetrics.OverallFairness {
		t.Errorf("skewed fairness %.1f should be below even fairness %.1f",
			skewedMetrics.OverallFairness, evenMetrics.OverallFairness)
	}
	if skewedMetrics.MaxHours != 80 || skewedMetrics.MinHours != 20 {
		t.Errorf("bounds = %.0f/%.0f, expected 80/20", skewedMetrics.MaxHours, skewedMetrics.MinHours)
	}

	if AnalyzeTotals(nil).OverallFairness != 100 {
		t.Error("empty totals should report full fairness")
	}
}
