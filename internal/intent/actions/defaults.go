package actions

import (
	"strings"

	"github.com/samber/lo"
)

// Allowed values. Matching is case-insensitive; the canonical spelling
// listed here is what gets stored.
var (
	ScheduleCategories = []string{"Work", "Personal", "Health", "Fitness", "Social", "Errands", "Other"}
	Recurrences        = []string{"daily", "weekly", "monthly", "weekdays"}
	TransactionTypes   = []string{"income", "expense"}
	ExpenseCategories  = []string{"Food", "Transport", "Housing", "Utilities", "Entertainment", "Shopping", "Health", "Education", "Other"}
	IncomeCategories   = []string{"Salary", "Freelance", "Investment", "Gift", "Other"}
	WorkoutTypes       = []string{"cardio", "strength", "flexibility", "sports", "other"}
	MealTypes          = []string{"breakfast", "lunch", "dinner", "snack"}
	GoalTypes          = []string{"workouts", "calories", "protein", "savings", "spending", "sleep"}
	GoalPeriods        = []string{"daily", "weekly", "monthly"}
)

// UnknownIntentReply is the message carried by an Unknown action when the
// caller supplied none.
const UnknownIntentReply = "Sorry, I couldn't understand that request"

// Defaults is the single table of fallback values applied by the add-style
// builders. Edit builders never consult it.
var Defaults = struct {
	ScheduleTitle       string
	ScheduleStart       string
	ScheduleEnd         string
	ScheduleCategory    string
	TransactionType     string
	TransactionCategory string
	FoodPurchase        string
	WorkoutTitle        string
	WorkoutType         string
	WorkoutDuration     float64
	FoodQuantity        float64
	FoodUnit            string
	SleepHours          float64
	GoalType            string
	GoalPeriod          string
	GoalTarget          float64
}{
	ScheduleTitle:       "Event",
	ScheduleStart:       "09:00",
	ScheduleEnd:         "10:00",
	ScheduleCategory:    "Other",
	TransactionType:     "expense",
	TransactionCategory: "Other",
	FoodPurchase:        "Food",
	WorkoutTitle:        "Workout",
	WorkoutType:         "cardio",
	WorkoutDuration:     30,
	FoodQuantity:        100,
	FoodUnit:            "g",
	SleepHours:          0,
	GoalType:            "workouts",
	GoalPeriod:          "weekly",
	GoalTarget:          0,
}

// oneOf returns the canonical spelling of raw if it is in allowed.
func oneOf(allowed []string, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	return lo.Find(allowed, func(v string) bool { return strings.EqualFold(v, raw) })
}

// oneOfOr clamps raw to allowed, falling back to def.
func oneOfOr(allowed []string, raw, def string) string {
	if v, ok := oneOf(allowed, raw); ok {
		return v
	}
	return def
}

func categoriesFor(txType string) []string {
	if txType == "income" {
		return IncomeCategories
	}
	return ExpenseCategories
}

// isFoodPurchase reports whether an uncategorized expense description is
// short enough to be taken as the name of something eaten or drunk.
func isFoodPurchase(description string, maxChars int) bool {
	d := strings.TrimSpace(description)
	return d != "" && len([]rune(d)) < maxChars && !strings.ContainsAny(d, " \t")
}
