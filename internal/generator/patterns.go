package generator

import (
	"sort"
	"time"
)

// Demand multipliers by time of day. Commuter rush hours get the configured
// peak factor, late night is quiet.
const (
	nightFactor   = 0.25
	normalFactor  = 1.0
	weekendFactor = 1.2
)

func isRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 19)
}

func isNight(hour int) bool {
	return hour >= 23 || hour <= 4
}

func isWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// hourWeights returns cumulative demand weights for the 24 hours of a day.
func hourWeights(peakFactor float64, weekend bool) []float64 {
	cumulative := make([]float64, 24)
	total := 0.0
	for hour := 0; hour < 24; hour++ {
		w := normalFactor
		switch {
		case isRushHour(hour) && !weekend:
			w = peakFactor
		case isNight(hour) && weekend:
			w = nightFactor * weekendFactor * 2
		case isNight(hour):
			w = nightFactor
		}
		total += w
		cumulative[hour] = total
	}
	return cumulative
}

// zoneWeights gives zone i a popularity of 1/(i+1) and returns the
// cumulative weights.
func zoneWeights(n int) []float64 {
	cumulative := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		total += 1 / float64(i+1)
		cumulative[i] = total
	}
	return cumulative
}

// pick maps u in [0,1) onto an index of cumulative.
func pick(cumulative []float64, u float64) int {
	target := u * cumulative[len(cumulative)-1]
	i := sort.SearchFloat64s(cumulative, target)
	if i < len(cumulative) && cumulative[i] == target {
		i++
	}
	if i >= len(cumulative) {
		i = len(cumulative) - 1
	}
	return i
}
