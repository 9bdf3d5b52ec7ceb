// Package stats maintains cross-period fairness statistics.
package stats

import (
	"context"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// Totals are the running per-employee counters kept across planning periods.
type Totals struct {
	EmployeeID    uuid.UUID `json:"employee_id" db:"employee_id"`
	WorkedHours   float64   `json:"worked_hours" db:"worked_hours"`
	WeekendShifts int       `json:"weekend_shifts" db:"weekend_shifts"`
	NightShifts   int       `json:"night_shifts" db:"night_shifts"`
	// CrossShifts counts shifts outside the employee's own rotation.
	CrossShifts int `json:"cross_shifts" db:"cross_shifts"`
}

// IrregularLoad is the tie-break score: the count of weekend, night and
// cross-rotation shifts an employee has accumulated.
func (t Totals) IrregularLoad() int {
	return t.WeekendShifts + t.NightShifts + t.CrossShifts
}

// Store persists the running totals between planning runs.
type Store interface {
	ReadTotals(ctx context.Context) (map[uuid.UUID]Totals, error)
	WriteTotals(ctx context.Context, totals map[uuid.UUID]Totals) error
}

// Accumulator exposes the read side to the objective assembler and the write
// side to the solve orchestrator.
type Accumulator struct {
	store  Store
	totals map[uuid.UUID]Totals
}

// NewAccumulator creates an accumulator over the given store.
func NewAccumulator(store Store) *Accumulator {
	return &Accumulator{store: store, totals: make(map[uuid.UUID]Totals)}
}

// Load reads the current totals from the store.
func (a *Accumulator) Load(ctx context.Context) error {
	totals, err := a.store.ReadTotals(ctx)
	if err != nil {
		return err
	}
	if totals == nil {
		totals = make(map[uuid.UUID]Totals)
	}
	a.totals = totals
	return nil
}

// Totals returns the running totals for one employee.
func (a *Accumulator) Totals(empID uuid.UUID) Totals {
	t := a.totals[empID]
	t.EmployeeID = empID
	return t
}

// All returns a snapshot of every employee's running totals.
func (a *Accumulator) All() []Totals {
	out := make([]Totals, 0, len(a.totals))
	for id, t := range a.totals {
		t.EmployeeID = id
		out = append(out, t)
	}
	return out
}

// Bias returns a signed per-assignment weight multiplier for irregular work:
// positive for employees above the mean irregular load, negative below. The
// objective assembler uses it to break ties toward less-loaded employees.
func (a *Accumulator) Bias(empID uuid.UUID) int {
	if len(a.totals) == 0 {
		return 0
	}
	sum := 0
	for _, t := range a.totals {
		sum += t.IrregularLoad()
	}
	mean := sum / len(a.totals)
	diff := a.Totals(empID).IrregularLoad() - mean
	// Clamp so one outlier cannot dominate a whole tier.
	if diff > 5 {
		diff = 5
	}
	if diff < -5 {
		diff = -5
	}
	return diff
}

// Fold replaces a period's contribution in the running totals and persists
// them. The committed assignments superseded by the new schedule are
// subtracted before the schedule is added, so re-folding an already-solved
// period does not double-count.
func (a *Accumulator) Fold(ctx context.Context, replaced []*model.ShiftAssignment, schedule model.Schedule, shiftTypes map[string]*model.ShiftType) error {
	for _, prev := range replaced {
		t := a.Totals(prev.EmployeeID)
		if st := shiftTypes[prev.ShiftCode]; st != nil {
			t.WorkedHours -= st.DurationHours()
			if st.IsNight {
				t.NightShifts--
			}
		}
		if model.IsWeekend(prev.Date) {
			t.WeekendShifts--
		}
		if prev.CrossTeam {
			t.CrossShifts--
		}
		a.totals[prev.EmployeeID] = t
	}

	for empID, days := range schedule {
		t := a.Totals(empID)
		for _, day := range days {
			if !day.Working() {
				continue
			}
			st := shiftTypes[day.ShiftCode]
			if st != nil {
				t.WorkedHours += st.DurationHours()
				if st.IsNight {
					t.NightShifts++
				}
			}
			if model.IsWeekend(day.Date) {
				t.WeekendShifts++
			}
			if day.CrossTeam {
				t.CrossShifts++
			}
		}
		a.totals[empID] = t
	}
	return a.store.WriteTotals(ctx, a.totals)
}
