package scheduler

// Weights is the soft-constraint penalty ladder. The tiers are separated by
// orders of magnitude so a rule in one tier is essentially never sacrificed
// to satisfy a rule in a lower tier. The relative ORDER is the contract;
// the absolute values are tuning defaults.
//
// All penalties are per occurrence unless noted. Negative terms are rewards.
type Weights struct {
	// Tier 1: a shift type interrupted by one or two days of another type
	// and then resumed (A-B-A, A-B-B-A).
	SandwichPattern int64 `yaml:"sandwich_pattern"`

	// Tier 2: a single isolated day of one shift type surrounded by another.
	IsolatedShift int64 `yaml:"isolated_shift"`

	// Tier 3: less than the minimum rest between two shifts on adjacent
	// days. The reduced value applies to the unavoidable transition from a
	// cross-team weekend shift into a Monday anchor start.
	RestViolation       int64 `yaml:"rest_violation"`
	RestBoundaryReduced int64 `yaml:"rest_boundary_reduced"`

	// Tier 4: an employee's week-to-week shift transition skips a step of
	// the rotation sequence.
	RotationAdherence int64 `yaml:"rotation_adherence"`

	// Tier 5: a block of consecutive working weekdays shorter than the
	// configured minimum.
	MinBlockLength int64 `yaml:"min_block_length"`

	// Tier 6: per day above the soft consecutive-working-days preference
	// (layered under the hard cap).
	SoftConsecutiveCap int64 `yaml:"soft_consecutive_cap"`

	// Tiers 7-9.
	ShiftHopping     int64 `yaml:"shift_hopping"`      // type change on adjacent days
	StaffingOrdering int64 `yaml:"staffing_ordering"`  // high-capacity underfilled while low-capacity overfilled
	SpillPreference  int64 `yaml:"spill_preference"`   // surcharge per capacity step on cross-team low-capacity work

	// Tier 10: per MINUTE of shortfall against the dynamic per-employee
	// hour target.
	TargetShortfallPerMin int64 `yaml:"target_shortfall_per_min"`

	// Tiers 11-13.
	DistinctShiftTypes  int64 `yaml:"distinct_shift_types"`  // per extra type within one week
	TeamTogetherNight   int64 `yaml:"team_together_night"`   // member pulled away in a night-anchor week
	TeamTogetherWeekend int64 `yaml:"team_together_weekend"` // per missing member on a partially worked weekend day

	// Year-wide fairness tie-break, scaled by the accumulator bias.
	FairnessBias int64 `yaml:"fairness_bias"`

	// Tiers 14-18 (lowest).
	GapFillReward      int64 `yaml:"gap_fill_reward"`      // reward per weekday assignment
	CrossTeamPenalty   int64 `yaml:"cross_team_penalty"`   // prefer own team
	WeekendOverstaff   int64 `yaml:"weekend_overstaff"`    // base; grows later in the period
	HighCapacityReward int64 `yaml:"high_capacity_reward"` // reward per capacity step
	WeekdayOverstaff   int64 `yaml:"weekday_overstaff"`
}

// DefaultWeights returns the tuned default ladder.
func DefaultWeights() Weights {
	return Weights{
		SandwichPattern:       5_000_000,
		IsolatedShift:         2_000_000,
		RestViolation:         1_000_000,
		RestBoundaryReduced:     200_000,
		RotationAdherence:       500_000,
		MinBlockLength:          300_000,
		SoftConsecutiveCap:      250_000,
		ShiftHopping:             50_000,
		StaffingOrdering:         40_000,
		SpillPreference:          30_000,
		TargetShortfallPerMin:       400,
		DistinctShiftTypes:       10_000,
		TeamTogetherNight:         8_000,
		TeamTogetherWeekend:       8_000,
		FairnessBias:              5_000,
		GapFillReward:             2_000,
		CrossTeamPenalty:          1_500,
		WeekendOverstaff:          1_000,
		HighCapacityReward:          500,
		WeekdayOverstaff:            200,
	}
}

// TargetShortfallPerHour is the effective tier-10 weight per hour, used when
// comparing tiers.
func (w Weights) TargetShortfallPerHour() int64 {
	return w.TargetShortfallPerMin * 60
}

// Ladder returns the tier weights in contract order, highest first. Used by
// tests to assert the ordering survives retuning.
func (w Weights) Ladder() []int64 {
	return []int64{
		w.SandwichPattern,
		w.IsolatedShift,
		w.RestViolation,
		w.RotationAdherence,
		w.MinBlockLength,
		w.SoftConsecutiveCap,
		w.ShiftHopping,
		w.StaffingOrdering,
		w.SpillPreference,
		w.TargetShortfallPerHour(),
		w.DistinctShiftTypes,
		w.TeamTogetherNight,
		w.GapFillReward,
		w.CrossTeamPenalty,
		w.WeekendOverstaff,
		w.HighCapacityReward,
		w.WeekdayOverstaff,
	}
}
