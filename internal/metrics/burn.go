package metrics

import "sort"

// burnRates maps an activity to kcal burned per minute for a 70 kg reference
// body. This table is the single source of truth for expenditure estimates;
// handlers must not carry their own copies.
var burnRates = map[string]float64{
	"walking":    4.0,
	"running":    10.0,
	"cycling":    8.0,
	"swimming":   9.0,
	"hiking":     6.5,
	"yoga":       3.0,
	"pilates":    3.5,
	"strength":   6.0,
	"hiit":       12.0,
	"rowing":     8.5,
	"dancing":    5.5,
	"basketball": 7.5,
	"football":   8.0,
	"tennis":     7.0,
}

// defaultBurnRate is used for activities not in the table.
const defaultBurnRate = 5.0

const referenceWeightKg = 70.0

// BurnedCalories estimates kcal burned for an activity, scaled by the user's
// body weight relative to the 70 kg reference. A non-positive weight falls
// back to the reference weight.
func BurnedCalories(activity string, minutes int, weightKg float64) float64 {
	if minutes <= 0 {
		return 0
	}
	rate, ok := burnRates[activity]
	if !ok {
		rate = defaultBurnRate
	}
	if weightKg <= 0 {
		weightKg = referenceWeightKg
	}
	return rate * float64(minutes) * weightKg / referenceWeightKg
}

// Activities returns the known activity names, sorted.
func Activities() []string {
	names := make([]string, 0, len(burnRates))
	for name := range burnRates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
