package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftType configures one recurring shift. Loaded once per planning run;
// edits take effect on the next run.
type ShiftType struct {
	BaseModel
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	StartTime   string `json:"start_time" db:"start_time"` // HH:MM
	EndTime     string `json:"end_time" db:"end_time"`     // HH:MM
	DurationMin int    `json:"duration_min" db:"duration_min"`

	// WeeklyHours is the baseline used for proportional hour targets.
	WeeklyHours float64 `json:"weekly_hours" db:"weekly_hours"`

	MinWeekday int `json:"min_weekday" db:"min_weekday"`
	MaxWeekday int `json:"max_weekday" db:"max_weekday"`
	MinWeekend int `json:"min_weekend" db:"min_weekend"`
	MaxWeekend int `json:"max_weekend" db:"max_weekend"`

	MaxConsecutiveDays int `json:"max_consecutive_days" db:"max_consecutive_days"`

	// ActiveWeekdays lists the weekdays the shift runs on. Empty means all.
	ActiveWeekdays []time.Weekday `json:"active_weekdays,omitempty" db:"active_weekdays"`

	// RequiredDuty names a qualification an employee must hold to work this
	// shift. Empty means unrestricted.
	RequiredDuty string `json:"required_duty,omitempty" db:"required_duty"`

	IsNight bool `json:"is_night" db:"is_night"`
}

// RunsOn reports whether the shift runs on the given weekday.
func (s *ShiftType) RunsOn(wd time.Weekday) bool {
	if len(s.ActiveWeekdays) == 0 {
		return true
	}
	for _, d := range s.ActiveWeekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// MinStaff returns the staffing minimum for the given date class.
func (s *ShiftType) MinStaff(weekend bool) int {
	if weekend {
		return s.MinWeekend
	}
	return s.MinWeekday
}

// MaxStaff returns the staffing maximum for the given date class.
func (s *ShiftType) MaxStaff(weekend bool) int {
	if weekend {
		return s.MaxWeekend
	}
	return s.MaxWeekday
}

// DurationHours returns the shift length in hours.
func (s *ShiftType) DurationHours() float64 {
	return float64(s.DurationMin) / 60.0
}

// StartMinute returns the shift start as minutes after midnight.
func (s *ShiftType) StartMinute() int { return parseClock(s.StartTime) }

// EndMinute returns the shift end as minutes after midnight. Shifts crossing
// midnight report an end past 24h so rest-time math stays monotonic.
func (s *ShiftType) EndMinute() int {
	start, end := parseClock(s.StartTime), parseClock(s.EndTime)
	if end <= start {
		end += 24 * 60
	}
	return end
}

// RestHoursBefore returns the rest gap in hours between this shift ending on
// one day and next starting on the following day.
func (s *ShiftType) RestHoursBefore(next *ShiftType) float64 {
	gap := (24*60 + next.StartMinute()) - s.EndMinute()
	return float64(gap) / 60.0
}

func parseClock(hhmm string) int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// DefaultRotation is the standard three-shift cycle used when a team has no
// custom rotation group.
var DefaultRotation = []string{"F", "N", "S"}

// RotationGroup is an ordered cycle of shift codes a team steps through week
// by week.
type RotationGroup struct {
	BaseModel
	Name     string   `json:"name" db:"name"`
	Sequence []string `json:"sequence" db:"sequence"`
}

// AnchorAt returns the shift code at the given ISO week for a team with the
// given offset. The rotation is a pure function of the ISO week number, which
// keeps it continuous across independently solved periods.
func AnchorAt(sequence []string, isoWeek, offset int) string {
	if len(sequence) == 0 {
		sequence = DefaultRotation
	}
	idx := (isoWeek + offset) % len(sequence)
	if idx < 0 {
		idx += len(sequence)
	}
	return sequence[idx]
}

// NextInRotation returns the code following c in the sequence.
func NextInRotation(sequence []string, c string) string {
	if len(sequence) == 0 {
		sequence = DefaultRotation
	}
	for i, code := range sequence {
		if code == c {
			return sequence[(i+1)%len(sequence)]
		}
	}
	return ""
}

// RotationFor resolves the sequence for a team, falling back to the default.
func RotationFor(team *Team, groups map[uuid.UUID]*RotationGroup) []string {
	if team != nil && team.RotationGroupID != nil {
		if g, ok := groups[*team.RotationGroupID]; ok && len(g.Sequence) > 0 {
			return g.Sequence
		}
	}
	return DefaultRotation
}
