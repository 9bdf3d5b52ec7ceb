package model

import "github.com/google/uuid"

// Employee is an HR master data record. The engine only ever reads it.
type Employee struct {
	BaseModel
	Name            string     `json:"name" db:"name"`
	PersonnelNumber string     `json:"personnel_number" db:"personnel_number"`
	TeamID          *uuid.UUID `json:"team_id,omitempty" db:"team_id"`
	IsSpringer      bool       `json:"is_springer" db:"is_springer"`
	Duties          []string   `json:"duties,omitempty" db:"duties"`
	Active          bool       `json:"active" db:"active"`
}

// IsActive reports whether the employee takes part in planning.
func (e *Employee) IsActive() bool { return e.Active }

// HasTeam reports whether the employee belongs to a team.
func (e *Employee) HasTeam() bool { return e.TeamID != nil }

// HasDuty reports whether the employee is qualified for the named duty.
func (e *Employee) HasDuty(duty string) bool {
	for _, d := range e.Duties {
		if d == duty {
			return true
		}
	}
	return false
}

// Team groups employees that rotate through anchor shifts together.
type Team struct {
	BaseModel
	Name            string     `json:"name" db:"name"`
	RotationGroupID *uuid.UUID `json:"rotation_group_id,omitempty" db:"rotation_group_id"`
	// RotationOffset shifts the team's position in the rotation cycle so that
	// teams sharing one sequence do not all work the same anchor shift.
	RotationOffset int `json:"rotation_offset" db:"rotation_offset"`
}
