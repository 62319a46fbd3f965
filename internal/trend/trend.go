// Package trend classifies the direction of a numeric series by comparing
// its two most recent observations. This deliberately matches the app's
// displayed behavior: no smoothing, no regression.
package trend

// Direction is the classified trend of a series.
type Direction string

const (
	Increasing   Direction = "increasing"
	Decreasing   Direction = "decreasing"
	Stagnant     Direction = "stagnant"
	Insufficient Direction = "insufficient_data"
)

// Observation is a single dated measurement. Series passed to Classify must
// be sorted newest first; ties on date are broken by insertion order (the
// stores return date DESC, id DESC, so the later-inserted record is newest).
type Observation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Classify compares observations[0] against observations[1]. Fewer than two
// observations is not an error; the caller renders it as "not enough data".
func Classify(observations []Observation) Direction {
	if len(observations) < 2 {
		return Insufficient
	}
	newer, older := observations[0].Value, observations[1].Value
	switch {
	case newer < older:
		return Decreasing
	case newer > older:
		return Increasing
	default:
		return Stagnant
	}
}

// Delta returns newest minus previous, or 0 when there are fewer than two
// observations.
func Delta(observations []Observation) float64 {
	if len(observations) < 2 {
		return 0
	}
	return observations[0].Value - observations[1].Value
}
