package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

// FairnessRepository persists the cross-period fairness totals. It implements
// stats.Store.
type FairnessRepository struct {
	db DB
}

// NewFairnessRepository creates the fairness store.
func NewFairnessRepository(db DB) *FairnessRepository {
	return &FairnessRepository{db: db}
}

// ReadTotals loads the running totals for every employee.
func (r *FairnessRepository) ReadTotals(ctx context.Context) (map[uuid.UUID]stats.Totals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, worked_hours, weekend_shifts, night_shifts, cross_shifts
		FROM fairness_totals
	`)
	if err != nil {
		return nil, fmt.Errorf("loading fairness totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]stats.Totals)
	for rows.Next() {
		var t stats.Totals
		if err := rows.Scan(&t.EmployeeID, &t.WorkedHours, &t.WeekendShifts,
			&t.NightShifts, &t.CrossShifts); err != nil {
			return nil, fmt.Errorf("scanning fairness totals: %w", err)
		}
		totals[t.EmployeeID] = t
	}
	return totals, rows.Err()
}

// WriteTotals upserts the running totals.
func (r *FairnessRepository) WriteTotals(ctx context.Context, totals map[uuid.UUID]stats.Totals) error {
	now := time.Now()
	for id, t := range totals {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO fairness_totals (
				employee_id, worked_hours, weekend_shifts, night_shifts, cross_shifts, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (employee_id) DO UPDATE SET
				worked_hours = EXCLUDED.worked_hours,
				weekend_shifts = EXCLUDED.weekend_shifts,
				night_shifts = EXCLUDED.night_shifts,
				cross_shifts = EXCLUDED.cross_shifts,
				updated_at = EXCLUDED.updated_at
		`, id, t.WorkedHours, t.WeekendShifts, t.NightShifts, t.CrossShifts, now)
		if err != nil {
			return fmt.Errorf("saving fairness totals for %s: %w", id, err)
		}
	}
	return nil
}
