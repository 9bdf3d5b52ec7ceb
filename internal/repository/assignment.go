package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// AssignmentRepository persists solved assignments.
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository creates the assignment writer.
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ReplaceRange soft-deletes the system assignments in [start, end] that are
// not pinned and inserts the new ones. Manual and pinned rows survive.
func (r *AssignmentRepository) ReplaceRange(ctx context.Context, start, end string, assignments []model.ShiftAssignment) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE shift_assignments
		SET deleted_at = NOW()
		WHERE deleted_at IS NULL AND date BETWEEN $1 AND $2
			AND source = $3 AND NOT pinned
	`, start, end, model.SourceSystem)
	if err != nil {
		return fmt.Errorf("clearing assignments: %w", err)
	}

	for i := range assignments {
		if err := r.upsert(ctx, &assignments[i]); err != nil {
			return err
		}
	}
	return nil
}

// Remove soft-deletes one assignment.
func (r *AssignmentRepository) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE shift_assignments SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("removing assignment: %w", err)
	}
	return nil
}

// Save inserts or updates a batch of assignments.
func (r *AssignmentRepository) Save(ctx context.Context, assignments []model.ShiftAssignment) error {
	for i := range assignments {
		if err := r.upsert(ctx, &assignments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *AssignmentRepository) upsert(ctx context.Context, a *model.ShiftAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shift_assignments (
			id, employee_id, shift_code, date, source, cross_team, springer, pinned,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			shift_code = EXCLUDED.shift_code,
			source = EXCLUDED.source,
			cross_team = EXCLUDED.cross_team,
			springer = EXCLUDED.springer,
			pinned = EXCLUDED.pinned,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`, a.ID, a.EmployeeID, a.ShiftCode, a.Date, a.Source, a.CrossTeam, a.Springer, a.Pinned,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving assignment for %s on %s: %w", a.EmployeeID, a.Date, err)
	}
	return nil
}
