package scheduler

import "testing"

// The tier order is the contract: retuning absolute values is fine as long as
// no rule can outweigh a rule from a higher tier.
func TestDefaultWeights_LadderStrictlyDecreasing(t *testing.T) {
	ladder := DefaultWeights().Ladder()
	for i := 1; i < len(ladder); i++ {
		if ladder[i] >= ladder[i-1] {
			t.Errorf("ladder[%d] = %d is not below ladder[%d] = %d",
				i, ladder[i], i-1, ladder[i-1])
		}
	}
}

func TestDefaultWeights_AllPositive(t *testing.T) {
	for i, v := range DefaultWeights().Ladder() {
		if v <= 0 {
			t.Errorf("ladder[%d] = %d, expected positive", i, v)
		}
	}
}

func TestWeights_ReducedRestBelowFull(t *testing.T) {
	w := DefaultWeights()
	if w.RestBoundaryReduced >= w.RestViolation {
		t.Errorf("reduced rest weight %d should stay below the full weight %d",
			w.RestBoundaryReduced, w.RestViolation)
	}
	if w.RestBoundaryReduced <= 0 {
		t.Error("reduced rest weight must still penalize")
	}
}

func TestWeights_ShortfallScalesPerMinute(t *testing.T) {
	w := DefaultWeights()
	if w.TargetShortfallPerHour() != w.TargetShortfallPerMin*60 {
		t.Error("per-hour weight must be 60x the per-minute weight")
	}
}
