package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/TimUx/Dienstplan-sub000/pkg/calendar"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/scheduler"
)

// PlanningRepository loads everything one planning run needs. It implements
// scheduler.Loader.
type PlanningRepository struct {
	db DB
}

// NewPlanningRepository creates the planning loader.
func NewPlanningRepository(db DB) *PlanningRepository {
	return &PlanningRepository{db: db}
}

// Load fetches the full configuration plus the absences, committed
// assignments and locks overlapping the window.
func (r *PlanningRepository) Load(ctx context.Context, window *calendar.Window) (*scheduler.PlanningData, error) {
	data := &scheduler.PlanningData{}
	var err error

	if data.Employees, err = r.loadEmployees(ctx); err != nil {
		return nil, err
	}
	if data.Teams, err = r.loadTeams(ctx); err != nil {
		return nil, err
	}
	if data.RotationGroups, err = r.loadRotationGroups(ctx); err != nil {
		return nil, err
	}
	if data.ShiftTypes, err = r.loadShiftTypes(ctx); err != nil {
		return nil, err
	}
	if data.Absences, err = r.loadAbsences(ctx, window); err != nil {
		return nil, err
	}
	if data.Committed, err = r.loadAssignments(ctx, window); err != nil {
		return nil, err
	}
	if data.Locks, err = r.loadLocks(ctx, window); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *PlanningRepository) loadEmployees(ctx context.Context) ([]*model.Employee, error) {
	query := `
		SELECT id, name, personnel_number, team_id, is_springer, duties, active,
			created_at, updated_at
		FROM employees
		WHERE deleted_at IS NULL
		ORDER BY personnel_number
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading employees: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(s Scanner) (*model.Employee, error) {
	var e model.Employee
	var duties pq.StringArray
	if err := s.Scan(&e.ID, &e.Name, &e.PersonnelNumber, &e.TeamID,
		&e.IsSpringer, &duties, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning employee: %w", err)
	}
	e.Duties = duties
	return &e, nil
}

func (r *PlanningRepository) loadTeams(ctx context.Context) ([]*model.Team, error) {
	query := `
		SELECT id, name, rotation_group_id, rotation_offset, created_at, updated_at
		FROM teams
		WHERE deleted_at IS NULL
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	defer rows.Close()

	var teams []*model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.RotationGroupID, &t.RotationOffset,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

func (r *PlanningRepository) loadRotationGroups(ctx context.Context) ([]*model.RotationGroup, error) {
	query := `
		SELECT id, name, sequence, created_at, updated_at
		FROM rotation_groups
		WHERE deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading rotation groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.RotationGroup
	for rows.Next() {
		var g model.RotationGroup
		var sequence pq.StringArray
		if err := rows.Scan(&g.ID, &g.Name, &sequence, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning rotation group: %w", err)
		}
		g.Sequence = sequence
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *PlanningRepository) loadShiftTypes(ctx context.Context) ([]*model.ShiftType, error) {
	query := `
		SELECT id, code, name, start_time, end_time, duration_min, weekly_hours,
			min_weekday, max_weekday, min_weekend, max_weekend,
			max_consecutive_days, active_weekdays, required_duty, is_night,
			created_at, updated_at
		FROM shift_types
		WHERE deleted_at IS NULL
		ORDER BY code
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading shift types: %w", err)
	}
	defer rows.Close()

	var shiftTypes []*model.ShiftType
	for rows.Next() {
		st, err := scanShiftType(rows)
		if err != nil {
			return nil, err
		}
		shiftTypes = append(shiftTypes, st)
	}
	return shiftTypes, rows.Err()
}

func scanShiftType(s Scanner) (*model.ShiftType, error) {
	var st model.ShiftType
	var weekdays pq.Int64Array
	if err := s.Scan(&st.ID, &st.Code, &st.Name, &st.StartTime, &st.EndTime,
		&st.DurationMin, &st.WeeklyHours,
		&st.MinWeekday, &st.MaxWeekday, &st.MinWeekend, &st.MaxWeekend,
		&st.MaxConsecutiveDays, &weekdays, &st.RequiredDuty, &st.IsNight,
		&st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning shift type: %w", err)
	}
	for _, wd := range weekdays {
		st.ActiveWeekdays = append(st.ActiveWeekdays, time.Weekday(wd))
	}
	return &st, nil
}

func (r *PlanningRepository) loadAbsences(ctx context.Context, window *calendar.Window) ([]*model.Absence, error) {
	query := `
		SELECT id, employee_id, category, start_date, end_date, created_at, updated_at
		FROM absences
		WHERE deleted_at IS NULL AND start_date <= $2 AND end_date >= $1
	`
	rows, err := r.db.QueryContext(ctx, query, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("loading absences: %w", err)
	}
	defer rows.Close()

	var absences []*model.Absence
	for rows.Next() {
		var a model.Absence
		var category string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &category, &a.StartDate, &a.EndDate,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning absence: %w", err)
		}
		a.Category = model.ParseAbsenceCategory(category)
		absences = append(absences, &a)
	}
	return absences, rows.Err()
}

func (r *PlanningRepository) loadAssignments(ctx context.Context, window *calendar.Window) ([]*model.ShiftAssignment, error) {
	query := `
		SELECT id, employee_id, shift_code, date, source, cross_team, springer, pinned,
			created_at, updated_at
		FROM shift_assignments
		WHERE deleted_at IS NULL AND date BETWEEN $1 AND $2
		ORDER BY date, employee_id
	`
	rows, err := r.db.QueryContext(ctx, query, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*model.ShiftAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanAssignment(s Scanner) (*model.ShiftAssignment, error) {
	var a model.ShiftAssignment
	if err := s.Scan(&a.ID, &a.EmployeeID, &a.ShiftCode, &a.Date, &a.Source,
		&a.CrossTeam, &a.Springer, &a.Pinned, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning assignment: %w", err)
	}
	return &a, nil
}

func (r *PlanningRepository) loadLocks(ctx context.Context, window *calendar.Window) (model.LockSet, error) {
	var locks model.LockSet

	weekKeys := make(map[calendar.WeekKey]bool)
	for _, week := range window.Weeks {
		weekKeys[week.Key] = true
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, year, week, shift_code, source FROM team_week_locks
	`)
	if err != nil {
		return locks, fmt.Errorf("loading team week locks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l model.TeamWeekLock
		if err := rows.Scan(&l.TeamID, &l.Year, &l.Week, &l.ShiftCode, &l.Source); err != nil {
			return locks, fmt.Errorf("scanning team week lock: %w", err)
		}
		if weekKeys[calendar.WeekKey{Year: l.Year, Week: l.Week}] {
			locks.TeamWeeks = append(locks.TeamWeeks, l)
		}
	}
	if err := rows.Err(); err != nil {
		return locks, err
	}

	wRows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, date, working, source FROM weekend_locks
		WHERE date BETWEEN $1 AND $2
	`, window.Start, window.End)
	if err != nil {
		return locks, fmt.Errorf("loading weekend locks: %w", err)
	}
	defer wRows.Close()
	for wRows.Next() {
		var l model.WeekendLock
		if err := wRows.Scan(&l.EmployeeID, &l.Date, &l.Working, &l.Source); err != nil {
			return locks, fmt.Errorf("scanning weekend lock: %w", err)
		}
		locks.Weekends = append(locks.Weekends, l)
	}
	if err := wRows.Err(); err != nil {
		return locks, err
	}

	eRows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, date, shift_code, cross_team, source FROM employee_date_locks
		WHERE date BETWEEN $1 AND $2
	`, window.Start, window.End)
	if err != nil {
		return locks, fmt.Errorf("loading employee date locks: %w", err)
	}
	defer eRows.Close()
	for eRows.Next() {
		var l model.EmployeeDateLock
		if err := eRows.Scan(&l.EmployeeID, &l.Date, &l.ShiftCode, &l.CrossTeam, &l.Source); err != nil {
			return locks, fmt.Errorf("scanning employee date lock: %w", err)
		}
		locks.EmployeeDates = append(locks.EmployeeDates, l)
	}
	if err := eRows.Err(); err != nil {
		return locks, err
	}

	sRows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, year, week, duty, on_duty, source FROM special_duty_locks
	`)
	if err != nil {
		return locks, fmt.Errorf("loading special duty locks: %w", err)
	}
	defer sRows.Close()
	for sRows.Next() {
		var l model.SpecialDutyLock
		if err := sRows.Scan(&l.EmployeeID, &l.Year, &l.Week, &l.Duty, &l.OnDuty, &l.Source); err != nil {
			return locks, fmt.Errorf("scanning special duty lock: %w", err)
		}
		if weekKeys[calendar.WeekKey{Year: l.Year, Week: l.Week}] {
			locks.SpecialDuties = append(locks.SpecialDuties, l)
		}
	}
	return locks, sRows.Err()
}
