package mission

import (
	"time"

	"github.com/perivale/fitquest/internal/model"
)

// Metric keys name the user action that advances a mission. Logging handlers
// report deltas against these keys; the template title stays the stable
// identifier clients route on.
const (
	MetricMeals           = "meals_logged"
	MetricExerciseMinutes = "exercise_minutes"
	MetricWeighIns        = "weigh_ins"
	MetricWorkouts        = "workouts"
	MetricDeficitDays     = "deficit_days"
	MetricLogDays         = "log_days"
)

// Template is the static definition a mission instance is stamped from.
type Template struct {
	Title       string
	Description string
	Period      string
	Metric      string
	Points      int
	Target      int
}

// dailyTemplates and weeklyTemplates are the canonical mission sets. All
// callers reference these; no handler carries its own copy.
var dailyTemplates = []Template{
	{
		Title:       "Three Square Meals",
		Description: "Log breakfast, lunch and dinner today",
		Period:      model.PeriodDaily,
		Metric:      MetricMeals,
		Points:      10,
		Target:      3,
	},
	{
		Title:       "Get Moving",
		Description: "Log 30 minutes of exercise today",
		Period:      model.PeriodDaily,
		Metric:      MetricExerciseMinutes,
		Points:      15,
		Target:      30,
	},
	{
		Title:       "Step on the Scale",
		Description: "Record your weight today",
		Period:      model.PeriodDaily,
		Metric:      MetricWeighIns,
		Points:      5,
		Target:      1,
	},
}

var weeklyTemplates = []Template{
	{
		Title:       "Five Workouts",
		Description: "Log five exercise sessions this week",
		Period:      model.PeriodWeekly,
		Metric:      MetricWorkouts,
		Points:      50,
		Target:      5,
	},
	{
		Title:       "Deficit Streak",
		Description: "Finish four days in a calorie deficit this week",
		Period:      model.PeriodWeekly,
		Metric:      MetricDeficitDays,
		Points:      60,
		Target:      4,
	},
	{
		Title:       "Perfect Week",
		Description: "Log food every day this week",
		Period:      model.PeriodWeekly,
		Metric:      MetricLogDays,
		Points:      40,
		Target:      7,
	},
}

// TemplatesFor returns the template set for a period. Special missions are
// created individually, never generated, so the special set is empty.
func TemplatesFor(period string) []Template {
	switch period {
	case model.PeriodDaily:
		return dailyTemplates
	case model.PeriodWeekly:
		return weeklyTemplates
	default:
		return nil
	}
}

// PeriodStart returns the beginning of the period containing now: midnight
// for daily, Monday midnight for weekly. Windows are computed in UTC so the
// renewal scheduler and request handlers agree on period boundaries no matter
// the host timezone.
func PeriodStart(period string, now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if period != model.PeriodWeekly {
		return day
	}
	weekday := int(day.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday)
}

// PeriodDuration returns the lifetime of a generated mission.
func PeriodDuration(period string) time.Duration {
	if period == model.PeriodWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}
