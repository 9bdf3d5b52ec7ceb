package model

import "github.com/google/uuid"

// LockSource distinguishes dispatcher overrides from continuity replays of a
// previous solve.
type LockSource string

const (
	LockManual     LockSource = "manual"
	LockContinuity LockSource = "continuity"
)

// TeamWeekLock forces a team's anchor shift for one ISO week.
type TeamWeekLock struct {
	TeamID    uuid.UUID  `json:"team_id" db:"team_id"`
	Year      int        `json:"year" db:"year"`
	Week      int        `json:"week" db:"week"`
	ShiftCode string     `json:"shift_code" db:"shift_code"`
	Source    LockSource `json:"source" db:"source"`
}

// WeekendLock forces an employee's working status on one weekend date.
type WeekendLock struct {
	EmployeeID uuid.UUID  `json:"employee_id" db:"employee_id"`
	Date       string     `json:"date" db:"date"`
	Working    bool       `json:"working" db:"working"`
	Source     LockSource `json:"source" db:"source"`
}

// EmployeeDateLock forces an exact shift for an employee on one date. This is
// how assignments committed by a previous run are replayed into a new one.
type EmployeeDateLock struct {
	EmployeeID uuid.UUID  `json:"employee_id" db:"employee_id"`
	Date       string     `json:"date" db:"date"`
	ShiftCode  string     `json:"shift_code" db:"shift_code"`
	CrossTeam  bool       `json:"cross_team" db:"cross_team"`
	Source     LockSource `json:"source" db:"source"`
}

// SpecialDutyLock forces an employee on or off a special duty for one week.
// On duty means the employee works the own-team anchor on every active
// weekday of that week and takes no cross-team work.
type SpecialDutyLock struct {
	EmployeeID uuid.UUID  `json:"employee_id" db:"employee_id"`
	Year       int        `json:"year" db:"year"`
	Week       int        `json:"week" db:"week"`
	Duty       string     `json:"duty" db:"duty"`
	OnDuty     bool       `json:"on_duty" db:"on_duty"`
	Source     LockSource `json:"source" db:"source"`
}

// LockSet bundles every lock flavor fed into one planning run.
type LockSet struct {
	TeamWeeks     []TeamWeekLock     `json:"team_weeks,omitempty"`
	Weekends      []WeekendLock      `json:"weekends,omitempty"`
	EmployeeDates []EmployeeDateLock `json:"employee_dates,omitempty"`
	SpecialDuties []SpecialDutyLock  `json:"special_duties,omitempty"`
}
