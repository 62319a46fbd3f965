package model

import "time"

// Meal type constants. These are the only values accepted by the API and
// stored in food_entries.meal_type.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
	MealDrink     = "drink"
)

// ValidMealType reports whether s is one of the recognized meal types.
func ValidMealType(s string) bool {
	switch s {
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealDrink:
		return true
	}
	return false
}

type FoodEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	MealType  string    `json:"meal_type"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein_g"`
	Fat       float64   `json:"fat_g"`
	Carbs     float64   `json:"carbs_g"`
	Fiber     float64   `json:"fiber_g"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
