package stats

import (
	"math"
	"sort"
)

// Metrics summarizes how evenly load is spread across employees.
type Metrics struct {
	WorkloadGini    float64 `json:"workload_gini"` // 0 = perfectly even, 1 = all on one employee
	NightShiftGini  float64 `json:"night_shift_gini"`
	WeekendGini     float64 `json:"weekend_gini"`
	AvgHours        float64 `json:"avg_hours"`
	MaxHours        float64 `json:"max_hours"`
	MinHours        float64 `json:"min_hours"`
	OverallFairness float64 `json:"overall_fairness"` // 0-100
}

// AnalyzeTotals computes distribution metrics over per-employee totals.
func AnalyzeTotals(totals []Totals) Metrics {
	if len(totals) == 0 {
		return Metrics{OverallFairness: 100}
	}

	hours := make([]float64, len(totals))
	nights := make([]float64, len(totals))
	weekends := make([]float64, len(totals))
	for i, t := range totals {
		hours[i] = t.WorkedHours
		nights[i] = float64(t.NightShifts)
		weekends[i] = float64(t.WeekendShifts)
	}

	avg := mean(hours)
	maxH, minH := bounds(hours)

	m := Metrics{
		WorkloadGini:   gini(hours),
		NightShiftGini: gini(nights),
		WeekendGini:    gini(weekends),
		AvgHours:       avg,
		MaxHours:       maxH,
		MinHours:       minH,
	}

	const (
		workloadWeight = 0.5
		nightWeight    = 0.25
		weekendWeight  = 0.25
	)
	score := workloadWeight*(1-m.WorkloadGini)*100 +
		nightWeight*(1-m.NightShiftGini)*100 +
		weekendWeight*(1-m.WeekendGini)*100
	m.OverallFairness = math.Max(0, math.Min(100, score))
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func bounds(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
