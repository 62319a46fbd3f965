package metrics

import (
	"time"

	"github.com/perivale/fitquest/internal/model"
)

// CalorieStatus describes whether a day ended above or below expenditure.
type CalorieStatus string

const (
	StatusSurplus CalorieStatus = "surplus"
	StatusDeficit CalorieStatus = "deficit"
)

const dateLayout = "2006-01-02"

// DaySummary holds a single day's aggregated intake and expenditure.
type DaySummary struct {
	Date        string        `json:"date"`
	CaloriesIn  float64       `json:"calories_in"`
	CaloriesOut float64       `json:"calories_out"`
	Net         float64       `json:"net_calories"`
	Status      CalorieStatus `json:"status"`
}

// DayTotals is one bucket of a weekly series.
type DayTotals struct {
	Date        string  `json:"date"`
	CaloriesIn  float64 `json:"calories_in"`
	CaloriesOut float64 `json:"calories_out"`
}

// Macros holds average grams per day over a trailing window.
type Macros struct {
	Protein float64 `json:"protein_g"`
	Fat     float64 `json:"fat_g"`
	Carbs   float64 `json:"carbs_g"`
}

// Daily sums intake and expenditure for the calendar date of day.
// A tie between intake and expenditure counts as a deficit.
func Daily(foods []model.FoodEntry, exercises []model.ExerciseEntry, day time.Time) DaySummary {
	date := day.Format(dateLayout)

	s := DaySummary{Date: date}
	for _, f := range foods {
		if f.Date == date {
			s.CaloriesIn += f.Calories
		}
	}
	for _, e := range exercises {
		if e.Date == date {
			s.CaloriesOut += e.CaloriesBurned
		}
	}
	s.Net = s.CaloriesIn - s.CaloriesOut
	if s.CaloriesIn > s.CaloriesOut {
		s.Status = StatusSurplus
	} else {
		s.Status = StatusDeficit
	}
	return s
}

// WeeklySeries returns per-day totals for the 7 calendar dates ending at
// today, oldest first. Days without entries are zero-filled, so the result
// always has exactly 7 elements.
func WeeklySeries(foods []model.FoodEntry, exercises []model.ExerciseEntry, today time.Time) []DayTotals {
	series := make([]DayTotals, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i-6).Format(dateLayout)
		series[i] = DayTotals{Date: date}
		index[date] = i
	}

	for _, f := range foods {
		if i, ok := index[f.Date]; ok {
			series[i].CaloriesIn += f.Calories
		}
	}
	for _, e := range exercises {
		if i, ok := index[e.Date]; ok {
			series[i].CaloriesOut += e.CaloriesBurned
		}
	}
	return series
}

// MacroAverages sums protein, fat, and carbs over the 7 calendar dates ending
// at today and divides by 7. A window with no entries yields all zeros rather
// than NaN.
func MacroAverages(foods []model.FoodEntry, today time.Time) Macros {
	window := make(map[string]bool, 7)
	for i := 0; i < 7; i++ {
		window[today.AddDate(0, 0, -i).Format(dateLayout)] = true
	}

	var m Macros
	any := false
	for _, f := range foods {
		if !window[f.Date] {
			continue
		}
		any = true
		m.Protein += f.Protein
		m.Fat += f.Fat
		m.Carbs += f.Carbs
	}
	if !any {
		return Macros{}
	}
	m.Protein /= 7
	m.Fat /= 7
	m.Carbs /= 7
	return m
}
