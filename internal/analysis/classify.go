package analysis

import (
	"strings"

	"github.com/perivale/fitquest/internal/model"
)

// ClassifyMealType guesses the meal type for a food name without calling the
// completion API. It performs case-insensitive matching: exact match first,
// then substring match, then a time-of-day fallback using hour (0-23).
func ClassifyMealType(name string, hour int) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n != "" {
		if mt, ok := exactMatch[n]; ok {
			return mt
		}
		for _, entry := range substringMatches {
			if strings.Contains(n, entry.keyword) {
				return entry.mealType
			}
		}
	}
	return mealTypeForHour(hour)
}

func mealTypeForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return model.MealBreakfast
	case hour >= 11 && hour < 15:
		return model.MealLunch
	case hour >= 17 && hour < 22:
		return model.MealDinner
	default:
		return model.MealSnack
	}
}

var exactMatch = map[string]string{
	// Breakfast staples
	"porridge":       model.MealBreakfast,
	"oatmeal":        model.MealBreakfast,
	"muesli":         model.MealBreakfast,
	"granola":        model.MealBreakfast,
	"cereal":         model.MealBreakfast,
	"croissant":      model.MealBreakfast,
	"bagel":          model.MealBreakfast,
	"pancakes":       model.MealBreakfast,
	"waffles":        model.MealBreakfast,
	"scrambled eggs": model.MealBreakfast,
	"fried eggs":     model.MealBreakfast,
	"omelette":       model.MealBreakfast,
	"omelet":         model.MealBreakfast,
	"toast":          model.MealBreakfast,

	// Typical lunch and dinner dishes
	"sandwich":  model.MealLunch,
	"wrap":      model.MealLunch,
	"salad":     model.MealLunch,
	"soup":      model.MealLunch,
	"burrito":   model.MealLunch,
	"sushi":     model.MealLunch,
	"pizza":     model.MealDinner,
	"pasta":     model.MealDinner,
	"lasagna":   model.MealDinner,
	"risotto":   model.MealDinner,
	"curry":     model.MealDinner,
	"stir fry":  model.MealDinner,
	"steak":     model.MealDinner,
	"roast":     model.MealDinner,
	"casserole": model.MealDinner,
	"stew":      model.MealDinner,

	// Snacks
	"apple":         model.MealSnack,
	"banana":        model.MealSnack,
	"orange":        model.MealSnack,
	"crisps":        model.MealSnack,
	"chips":         model.MealSnack,
	"popcorn":       model.MealSnack,
	"chocolate":     model.MealSnack,
	"cookie":        model.MealSnack,
	"cookies":       model.MealSnack,
	"biscuit":       model.MealSnack,
	"protein bar":   model.MealSnack,
	"granola bar":   model.MealSnack,
	"nuts":          model.MealSnack,
	"almonds":       model.MealSnack,
	"trail mix":     model.MealSnack,
	"yogurt":        model.MealSnack,
	"crackers":      model.MealSnack,
	"rice cakes":    model.MealSnack,
	"fruit":         model.MealSnack,
	"ice cream":     model.MealSnack,
	"energy ball":   model.MealSnack,
	"cheese sticks": model.MealSnack,

	// Drinks
	"coffee":          model.MealDrink,
	"latte":           model.MealDrink,
	"cappuccino":      model.MealDrink,
	"espresso":        model.MealDrink,
	"tea":             model.MealDrink,
	"juice":           model.MealDrink,
	"orange juice":    model.MealDrink,
	"smoothie":        model.MealDrink,
	"milkshake":       model.MealDrink,
	"soda":            model.MealDrink,
	"cola":            model.MealDrink,
	"beer":            model.MealDrink,
	"wine":            model.MealDrink,
	"water":           model.MealDrink,
	"protein shake":   model.MealDrink,
	"hot chocolate":   model.MealDrink,
	"sports drink":    model.MealDrink,
	"energy drink":    model.MealDrink,
	"kombucha":        model.MealDrink,
	"sparkling water": model.MealDrink,
}

// substringMatches are checked in order; longer, more specific keywords come
// first so "protein shake" wins over "shake".
var substringMatches = []struct {
	keyword  string
	mealType string
}{
	{"protein shake", model.MealDrink},
	{"protein bar", model.MealSnack},
	{"granola bar", model.MealSnack},
	{"breakfast", model.MealBreakfast},
	{"porridge", model.MealBreakfast},
	{"cereal", model.MealBreakfast},
	{"pancake", model.MealBreakfast},
	{"omelet", model.MealBreakfast},
	{"sandwich", model.MealLunch},
	{"salad", model.MealLunch},
	{"soup", model.MealLunch},
	{"pizza", model.MealDinner},
	{"pasta", model.MealDinner},
	{"curry", model.MealDinner},
	{"steak", model.MealDinner},
	{"roast", model.MealDinner},
	{"burger", model.MealDinner},
	{"smoothie", model.MealDrink},
	{"juice", model.MealDrink},
	{"coffee", model.MealDrink},
	{"latte", model.MealDrink},
	{"shake", model.MealDrink},
	{"beer", model.MealDrink},
	{"wine", model.MealDrink},
	{"chocolate", model.MealSnack},
	{"cookie", model.MealSnack},
	{"biscuit", model.MealSnack},
	{"crisp", model.MealSnack},
	{"chip", model.MealSnack},
	{"yogurt", model.MealSnack},
	{"yoghurt", model.MealSnack},
}
