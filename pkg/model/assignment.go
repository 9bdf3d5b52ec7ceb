package model

import "github.com/google/uuid"

// AssignmentSource records who produced an assignment.
type AssignmentSource string

const (
	SourceSystem AssignmentSource = "system"
	SourceManual AssignmentSource = "manual"
)

// ShiftAssignment is one employee working one shift on one date. It is the
// engine's primary output and, once persisted, the input that keeps adjacent
// planning runs consistent.
type ShiftAssignment struct {
	BaseModel
	EmployeeID uuid.UUID        `json:"employee_id" db:"employee_id"`
	ShiftCode  string           `json:"shift_code" db:"shift_code"`
	Date       string           `json:"date" db:"date"`
	Source     AssignmentSource `json:"source" db:"source"`

	// CrossTeam marks work on a shift other than the own team's anchor.
	CrossTeam bool `json:"cross_team" db:"cross_team"`
	// Springer marks a substitute assignment made by the fallback engine.
	Springer bool `json:"springer" db:"springer"`
	// Pinned assignments must not be altered by future planning runs.
	Pinned bool `json:"pinned" db:"pinned"`
}

// DayStatus is the normalized per-employee per-day outcome of a solve.
type DayStatus struct {
	Date      string           `json:"date"`
	ShiftCode string           `json:"shift_code,omitempty"` // empty when off or absent
	Absence   *AbsenceCategory `json:"absence,omitempty"`
	CrossTeam bool             `json:"cross_team,omitempty"`
}

// Working reports whether the day carries a shift.
func (d DayStatus) Working() bool { return d.ShiftCode != "" }

// Off reports whether the employee neither works nor is absent.
func (d DayStatus) Off() bool { return d.ShiftCode == "" && d.Absence == nil }

// Schedule maps employees to their day-by-day status for the planned window.
type Schedule map[uuid.UUID][]DayStatus

// StatusOn returns the employee's status for a date, if present.
func (s Schedule) StatusOn(empID uuid.UUID, date string) (DayStatus, bool) {
	for _, d := range s[empID] {
		if d.Date == date {
			return d, true
		}
	}
	return DayStatus{}, false
}
