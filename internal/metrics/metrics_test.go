package metrics

import (
	"testing"
	"time"

	"github.com/perivale/fitquest/internal/model"
)

var day = time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

func food(date string, calories, protein, fat, carbs float64) model.FoodEntry {
	return model.FoodEntry{Date: date, Calories: calories, Protein: protein, Fat: fat, Carbs: carbs}
}

func exercise(date string, burned float64) model.ExerciseEntry {
	return model.ExerciseEntry{Date: date, CaloriesBurned: burned}
}

func TestDailySurplus(t *testing.T) {
	foods := []model.FoodEntry{
		food("2024-01-08", 300, 0, 0, 0),
		food("2024-01-08", 500, 0, 0, 0),
		food("2024-01-07", 900, 0, 0, 0), // different day, ignored
	}
	exercises := []model.ExerciseEntry{
		exercise("2024-01-08", 200),
	}

	s := Daily(foods, exercises, day)
	if s.CaloriesIn != 800 {
		t.Errorf("calories in = %v, want 800", s.CaloriesIn)
	}
	if s.CaloriesOut != 200 {
		t.Errorf("calories out = %v, want 200", s.CaloriesOut)
	}
	if s.Net != 600 {
		t.Errorf("net = %v, want 600", s.Net)
	}
	if s.Status != StatusSurplus {
		t.Errorf("status = %q, want surplus", s.Status)
	}
}

func TestDailyTieIsDeficit(t *testing.T) {
	foods := []model.FoodEntry{food("2024-01-08", 200, 0, 0, 0)}
	exercises := []model.ExerciseEntry{exercise("2024-01-08", 200)}

	s := Daily(foods, exercises, day)
	if s.Net != 0 {
		t.Errorf("net = %v, want 0", s.Net)
	}
	if s.Status != StatusDeficit {
		t.Errorf("status = %q, want deficit on tie", s.Status)
	}
}

func TestDailyEmpty(t *testing.T) {
	s := Daily(nil, nil, day)
	if s.CaloriesIn != 0 || s.CaloriesOut != 0 || s.Net != 0 {
		t.Errorf("expected zeroed summary, got %+v", s)
	}
	if s.Status != StatusDeficit {
		t.Errorf("status = %q, want deficit", s.Status)
	}
}

func TestWeeklySeriesAlwaysSevenDays(t *testing.T) {
	series := WeeklySeries(nil, nil, day)
	if len(series) != 7 {
		t.Fatalf("len = %d, want 7", len(series))
	}
	if series[0].Date != "2024-01-02" {
		t.Errorf("first date = %q, want 2024-01-02", series[0].Date)
	}
	if series[6].Date != "2024-01-08" {
		t.Errorf("last date = %q, want 2024-01-08", series[6].Date)
	}
	for i, d := range series {
		if d.CaloriesIn != 0 || d.CaloriesOut != 0 {
			t.Errorf("series[%d] not zero-filled: %+v", i, d)
		}
	}
}

func TestWeeklySeriesBuckets(t *testing.T) {
	foods := []model.FoodEntry{
		food("2024-01-02", 400, 0, 0, 0),
		food("2024-01-08", 700, 0, 0, 0),
		food("2024-01-08", 100, 0, 0, 0),
		food("2024-01-01", 999, 0, 0, 0), // outside window
		food("2024-01-09", 999, 0, 0, 0), // future, outside window
	}
	exercises := []model.ExerciseEntry{
		exercise("2024-01-05", 250),
	}

	series := WeeklySeries(foods, exercises, day)
	if series[0].CaloriesIn != 400 {
		t.Errorf("oldest day in = %v, want 400", series[0].CaloriesIn)
	}
	if series[6].CaloriesIn != 800 {
		t.Errorf("today in = %v, want 800", series[6].CaloriesIn)
	}
	if series[3].CaloriesOut != 250 {
		t.Errorf("2024-01-05 out = %v, want 250", series[3].CaloriesOut)
	}
	var totalIn float64
	for _, d := range series {
		totalIn += d.CaloriesIn
	}
	if totalIn != 1200 {
		t.Errorf("total in = %v, want 1200", totalIn)
	}
}

func TestMacroAverages(t *testing.T) {
	foods := []model.FoodEntry{
		food("2024-01-08", 0, 70, 14, 140),
		food("2024-01-05", 0, 70, 14, 140),
		food("2023-12-25", 0, 500, 500, 500), // outside window
	}

	m := MacroAverages(foods, day)
	if m.Protein != 20 {
		t.Errorf("protein = %v, want 20", m.Protein)
	}
	if m.Fat != 4 {
		t.Errorf("fat = %v, want 4", m.Fat)
	}
	if m.Carbs != 40 {
		t.Errorf("carbs = %v, want 40", m.Carbs)
	}
}

func TestMacroAveragesNoEntries(t *testing.T) {
	m := MacroAverages(nil, day)
	if m.Protein != 0 || m.Fat != 0 || m.Carbs != 0 {
		t.Errorf("expected zero macros, got %+v", m)
	}

	// Entries exist but all outside the window.
	m = MacroAverages([]model.FoodEntry{food("2023-06-01", 0, 99, 99, 99)}, day)
	if m != (Macros{}) {
		t.Errorf("expected zero macros, got %+v", m)
	}
}

func TestBurnedCalories(t *testing.T) {
	tests := []struct {
		activity string
		minutes  int
		weightKg float64
		want     float64
	}{
		{"running", 30, 70, 300},
		{"running", 30, 0, 300},    // no weight -> reference weight
		{"walking", 60, 70, 240},
		{"running", 30, 105, 450},  // scaled by 1.5
		{"juggling", 10, 70, 50},   // unknown activity -> default rate
		{"running", 0, 70, 0},
		{"running", -5, 70, 0},
	}
	for _, tt := range tests {
		got := BurnedCalories(tt.activity, tt.minutes, tt.weightKg)
		if got != tt.want {
			t.Errorf("BurnedCalories(%q, %d, %v) = %v, want %v", tt.activity, tt.minutes, tt.weightKg, got, tt.want)
		}
	}
}
