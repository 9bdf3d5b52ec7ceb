package model

import "github.com/google/uuid"

// AbsenceCategory is the closed set of absence kinds. Raw codes are resolved
// to this enum once at load time.
type AbsenceCategory string

const (
	AbsenceLeave    AbsenceCategory = "leave"
	AbsenceSick     AbsenceCategory = "sick"
	AbsenceTraining AbsenceCategory = "training"
)

// ParseAbsenceCategory maps a stored code to the enum. Unknown codes are
// treated as leave, the most restrictive interpretation for planning.
func ParseAbsenceCategory(code string) AbsenceCategory {
	switch code {
	case "sick", "krank":
		return AbsenceSick
	case "training", "lehrgang":
		return AbsenceTraining
	default:
		return AbsenceLeave
	}
}

// Absence blocks an employee for an inclusive date range. Absences are always
// authoritative: no assignment may exist on a covered day.
type Absence struct {
	BaseModel
	EmployeeID uuid.UUID       `json:"employee_id" db:"employee_id"`
	Category   AbsenceCategory `json:"category" db:"category"`
	StartDate  string          `json:"start_date" db:"start_date"`
	EndDate    string          `json:"end_date" db:"end_date"`
}

// Covers reports whether the absence includes the given date.
func (a *Absence) Covers(date string) bool {
	return date >= a.StartDate && date <= a.EndDate
}

// CreditsTarget reports whether absent days still count toward the
// employee's hour target. Training does; no shift is worked but the time is
// credited.
func (a *Absence) CreditsTarget() bool {
	return a.Category == AbsenceTraining
}

// Range returns the absence as a DateRange.
func (a *Absence) Range() DateRange {
	return DateRange{StartDate: a.StartDate, EndDate: a.EndDate}
}
