package actions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/intent/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnricher returns a fixed breakdown and records every query.
type fakeEnricher struct {
	mu      sync.Mutex
	queries []nutrition.Query
}

func (f *fakeEnricher) Enrich(_ context.Context, q nutrition.Query) nutrition.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return nutrition.Result{
		Name:     nutrition.DisplayName(q.Name),
		Calories: 130,
		Protein:  2.7,
		Carbs:    28.2,
		Fat:      0.3,
		Source:   nutrition.SourceCatalog,
	}
}

var testCtx = Context{Today: "2026-10-15", UserID: "user-1", Lang: "en"}

func setupBuilder(t *testing.T) (*Builder, *fakeEnricher) {
	enricher := &fakeEnricher{}
	return NewBuilder(BuilderConfig{}, enricher, logger.NewTestLogger(t)), enricher
}

func build(t *testing.T, b *Builder, c Context, intent Intent, args Args) Action {
	t.Helper()
	a, err := b.Build(context.Background(), c, intent, args)
	require.NoError(t, err)
	require.Equal(t, intent, a.Intent())
	return a
}

func TestBuild_AddTransactionCategory(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want AddTransaction
	}{
		{
			name: "short single word expense is food",
			args: Args{"amount": "5", "description": "Coke"},
			want: AddTransaction{Type: "expense", Amount: 5, Category: "Food", Description: "Coke", Date: "2026-10-15"},
		},
		{
			name: "description with a space stays other",
			args: Args{"amount": 5.0, "description": "Diet Coke"},
			want: AddTransaction{Type: "expense", Amount: 5, Category: "Other", Description: "Diet Coke", Date: "2026-10-15"},
		},
		{
			name: "thirty characters is not short",
			args: Args{"amount": 1.0, "description": "abcdefghijabcdefghijabcdefghij"},
			want: AddTransaction{Type: "expense", Amount: 1, Category: "Other", Description: "abcdefghijabcdefghijabcdefghij", Date: "2026-10-15"},
		},
		{
			name: "twenty nine characters is short",
			args: Args{"amount": 1.0, "description": "abcdefghijabcdefghijabcdefghi"},
			want: AddTransaction{Type: "expense", Amount: 1, Category: "Food", Description: "abcdefghijabcdefghijabcdefghi", Date: "2026-10-15"},
		},
		{
			name: "explicit category wins over promotion",
			args: Args{"amount": 12.0, "description": "Uber", "category": "transport"},
			want: AddTransaction{Type: "expense", Amount: 12, Category: "Transport", Description: "Uber", Date: "2026-10-15"},
		},
		{
			name: "unknown category clamps to other",
			args: Args{"amount": 12.0, "description": "Tickets", "category": "concerts"},
			want: AddTransaction{Type: "expense", Amount: 12, Category: "Other", Description: "Tickets", Date: "2026-10-15"},
		},
		{
			name: "invalid type defaults to expense",
			args: Args{"type": "refund", "amount": 3.0, "description": "Gum"},
			want: AddTransaction{Type: "expense", Amount: 3, Category: "Food", Description: "Gum", Date: "2026-10-15"},
		},
		{
			name: "income is never promoted to food",
			args: Args{"type": "Income", "amount": 900.0, "description": "Paycheck"},
			want: AddTransaction{Type: "income", Amount: 900, Category: "Other", Description: "Paycheck", Date: "2026-10-15"},
		},
		{
			name: "income category from the income set",
			args: Args{"type": "income", "amount": 900.0, "category": "salary", "date": "yesterday"},
			want: AddTransaction{Type: "income", Amount: 900, Category: "Salary", Date: "2026-10-14"},
		},
	}

	b, _ := setupBuilder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := build(t, b, testCtx, IntentAddTransaction, tt.args)
			assert.Equal(t, &tt.want, a)
		})
	}
}

func TestBuild_FoodPromotionThresholdIsConfigurable(t *testing.T) {
	b := NewBuilder(BuilderConfig{FoodDescriptionMaxChars: 5}, &fakeEnricher{}, logger.NewNoOpLogger())

	a := build(t, b, testCtx, IntentAddTransaction, Args{"amount": 4.0, "description": "Coffee"})
	assert.Equal(t, "Other", a.(*AddTransaction).Category)

	a = build(t, b, testCtx, IntentAddTransaction, Args{"amount": 4.0, "description": "Tea"})
	assert.Equal(t, "Food", a.(*AddTransaction).Category)
}

func TestBuild_AddScheduleDefaults(t *testing.T) {
	b, _ := setupBuilder(t)

	a := build(t, b, testCtx, IntentAddSchedule, Args{
		"items": []interface{}{
			map[string]interface{}{"title": "Dentist", "category": "Meeting", "recurrence": "yearly"},
			map[string]interface{}{"title": "Standup", "date": "tomorrow", "startTime": "8:30", "endTime": "8:45", "category": "work", "recurrence": "Weekdays"},
			"not an object",
		},
	})

	assert.Equal(t, &AddSchedule{Items: []ScheduleItem{
		{Title: "Dentist", Date: "2026-10-15", StartTime: "09:00", EndTime: "10:00", Category: "Other"},
		{Title: "Standup", Date: "2026-10-16", StartTime: "08:30", EndTime: "08:45", Category: "Work", Recurrence: "weekdays"},
	}}, a)
}

func TestBuild_AddScheduleFlatForm(t *testing.T) {
	b, _ := setupBuilder(t)

	a := build(t, b, testCtx, IntentAddSchedule, Args{"title": "Gym", "startTime": "25:00"})

	assert.Equal(t, &AddSchedule{Items: []ScheduleItem{
		{Title: "Gym", Date: "2026-10-15", StartTime: "09:00", EndTime: "10:00", Category: "Other"},
	}}, a)
}

func TestBuild_AddScheduleConvertsToUTC(t *testing.T) {
	b, _ := setupBuilder(t)
	c := testCtx
	c.Timezone = "America/New_York"

	a := build(t, b, c, IntentAddSchedule, Args{"items": []interface{}{
		map[string]interface{}{"title": "Late call", "startTime": "21:00", "endTime": "22:30"},
	}})

	items := a.(*AddSchedule).Items
	require.Len(t, items, 1)
	assert.Equal(t, "2026-10-16", items[0].Date)
	assert.Equal(t, "01:00", items[0].StartTime)
	assert.Equal(t, "02:30", items[0].EndTime)
	assert.Empty(t, items[0].EndDate)

	c.Timezone = "Mars/Olympus_Mons"
	a = build(t, b, c, IntentAddSchedule, Args{"title": "Late call", "startTime": "21:00"})
	assert.Equal(t, "21:00", a.(*AddSchedule).Items[0].StartTime)
	assert.Equal(t, "2026-10-15", a.(*AddSchedule).Items[0].Date)
}

func TestBuild_ScheduleEndCrossingUTCMidnight(t *testing.T) {
	b, _ := setupBuilder(t)
	c := testCtx
	c.Timezone = "America/Los_Angeles"

	a := build(t, b, c, IntentAddSchedule, Args{"title": "Standup", "startTime": "16:00", "endTime": "17:00"})

	item := a.(*AddSchedule).Items[0]
	assert.Equal(t, "2026-10-15", item.Date)
	assert.Equal(t, "23:00", item.StartTime)
	assert.Equal(t, "00:00", item.EndTime)
	assert.Equal(t, "2026-10-16", item.EndDate)

	a = build(t, b, c, IntentEditSchedule, Args{"title": "Standup", "date": "2026-10-15", "startTime": "16:00", "endTime": "17:00"})

	edit := a.(*EditSchedule)
	require.NotNil(t, edit.Changes.Date)
	assert.Equal(t, "2026-10-15", *edit.Changes.Date)
	require.NotNil(t, edit.Changes.EndDate)
	assert.Equal(t, "2026-10-16", *edit.Changes.EndDate)
}

func TestBuild_AddWorkout(t *testing.T) {
	b, _ := setupBuilder(t)

	a := build(t, b, testCtx, IntentAddWorkout, Args{})
	w := a.(*AddWorkout)
	assert.Equal(t, "Workout", w.Title)
	assert.Equal(t, "cardio", w.Type)
	assert.Equal(t, 30.0, w.Duration)
	assert.Equal(t, "2026-10-15", w.Date)
	assert.Empty(t, w.Exercises)

	a = build(t, b, testCtx, IntentAddWorkout, Args{
		"title":    "Leg day",
		"type":     "Strength",
		"duration": -10.0,
		"exercises": []interface{}{
			map[string]interface{}{"name": "Squat", "sets": "-2", "reps": 10.0, "weight": 60.0},
			map[string]interface{}{"name": "  ", "sets": 3.0},
			map[string]interface{}{"sets": 3.0},
		},
	})
	w = a.(*AddWorkout)
	weight := 60.0
	assert.Equal(t, "strength", w.Type)
	assert.Equal(t, 30.0, w.Duration)
	assert.Equal(t, []Exercise{{Name: "Squat", Sets: 0, Reps: 10, Weight: &weight}}, w.Exercises)
}

func TestBuild_AddFood(t *testing.T) {
	b, enricher := setupBuilder(t)

	a := build(t, b, testCtx, IntentAddFood, Args{"food": "raw rice", "quantity": 0.0, "mealType": "Lunch"})

	assert.Equal(t, &AddFood{
		Food:      "Uncooked Rice",
		Quantity:  100,
		Unit:      "g",
		MealType:  "lunch",
		Date:      "2026-10-15",
		Nutrition: Nutrition{Calories: 130, Protein: 2.7, Carbs: 28.2, Fat: 0.3},
		Source:    "catalog",
	}, a)
	require.Len(t, enricher.queries, 1)
	assert.Equal(t, nutrition.Query{Name: "raw rice", Quantity: 100, Unit: "g", PreferUncooked: true}, enricher.queries[0])
}

func TestBuild_AddFoodPreference(t *testing.T) {
	b, enricher := setupBuilder(t)

	build(t, b, testCtx, IntentAddFood, Args{"food": "Chicken", "quantity": "2", "unit": "Cup", "mealType": "brunch"})
	build(t, b, testCtx, IntentAddFood, Args{"food": "Chicken", "raw": true})

	require.Len(t, enricher.queries, 2)
	assert.Equal(t, nutrition.Query{Name: "Chicken", Quantity: 2, Unit: "cup"}, enricher.queries[0])
	assert.True(t, enricher.queries[1].PreferUncooked)
}

func TestBuild_LogSleep(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want LogSleep
	}{
		{"negative hours", Args{"hours": -3.0}, LogSleep{Date: "2026-10-15", SleepHours: 0}},
		{"string hours rounded", Args{"hours": "7.46", "wakeTime": "6:30"}, LogSleep{Date: "2026-10-15", SleepHours: 7.5, WakeTime: "06:30"}},
		{"sleepHours alias", Args{"sleepHours": 8.0, "date": "ayer"}, LogSleep{Date: "2026-10-14", SleepHours: 8}},
		{"bad wake time omitted", Args{"hours": 6.0, "wakeTime": "6am"}, LogSleep{Date: "2026-10-15", SleepHours: 6}},
	}

	b, _ := setupBuilder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, &tt.want, build(t, b, testCtx, IntentLogSleep, tt.args))
		})
	}
}

func TestBuild_AddGoal(t *testing.T) {
	b, _ := setupBuilder(t)

	assert.Equal(t,
		&AddGoal{Title: "Weekly workouts goal", Type: "workouts", Target: 0, Period: "weekly"},
		build(t, b, testCtx, IntentAddGoal, Args{"type": "marathons", "target": -1.0}))

	assert.Equal(t,
		&AddGoal{Title: "Daily sleep goal", Type: "sleep", Target: 8, Period: "daily"},
		build(t, b, testCtx, IntentAddGoal, Args{"type": "SLEEP", "period": "Daily", "target": "8"}))
}

func TestBuild_EditTransactionIsSparse(t *testing.T) {
	b, _ := setupBuilder(t)

	a := build(t, b, testCtx, IntentEditTransaction, Args{
		"description": "coffee",
		"amount":      "4",
		"type":        "refund",
		"category":    "food",
	})

	edit := a.(*EditTransaction)
	assert.Equal(t, "coffee", edit.Description)
	assert.Empty(t, edit.TransactionID)

	changes, err := json.Marshal(edit.Changes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 4, "category": "Food"}`, string(changes))
}

func TestBuild_EditScheduleTimeWithoutDate(t *testing.T) {
	b, _ := setupBuilder(t)
	c := testCtx
	c.Timezone = "America/New_York"

	a := build(t, b, c, IntentEditSchedule, Args{"title": "dentist", "startTime": "9:00", "recurrence": "yearly"})

	edit := a.(*EditSchedule)
	require.NotNil(t, edit.Changes.StartTime)
	assert.Equal(t, "13:00", *edit.Changes.StartTime)
	assert.Nil(t, edit.Changes.Date)
	assert.Nil(t, edit.Changes.EndTime)
	assert.Nil(t, edit.Changes.Recurrence)
}

func TestBuild_EditFoodReenrichesOnFullPortion(t *testing.T) {
	b, enricher := setupBuilder(t)

	a := build(t, b, testCtx, IntentEditFood, Args{"food": "rice", "quantity": 200.0, "unit": "G"})
	edit := a.(*EditFood)
	require.Len(t, enricher.queries, 1)
	assert.Equal(t, nutrition.Query{Name: "rice", Quantity: 200, Unit: "g"}, enricher.queries[0])
	require.NotNil(t, edit.Changes.Calories)
	assert.Equal(t, 130.0, *edit.Changes.Calories)
	assert.Nil(t, edit.Changes.Food)

	a = build(t, b, testCtx, IntentEditFood, Args{"foodEntryId": "f-1", "mealType": "dinner"})
	edit = a.(*EditFood)
	assert.Len(t, enricher.queries, 1)
	assert.Nil(t, edit.Changes.Calories)
	assert.Equal(t, "dinner", *edit.Changes.MealType)
}

func TestBuild_EditFoodPartialPortionLeavesNutritionUnset(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{name: "quantity only", args: Args{"food": "milk", "quantity": 2.0}},
		{name: "unit only", args: Args{"food": "milk", "unit": "cup"}},
		{name: "new food only", args: Args{"food": "milk", "newFood": "oat milk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, enricher := setupBuilder(t)

			edit := build(t, b, testCtx, IntentEditFood, tt.args).(*EditFood)

			assert.Empty(t, enricher.queries)
			assert.Nil(t, edit.Changes.Calories)
			assert.Nil(t, edit.Changes.Protein)
			assert.Nil(t, edit.Changes.Carbs)
			assert.Nil(t, edit.Changes.Fat)
			if _, ok := tt.args["unit"]; !ok {
				assert.Nil(t, edit.Changes.Unit)
			}
			if _, ok := tt.args["quantity"]; !ok {
				assert.Nil(t, edit.Changes.Quantity)
			}
		})
	}
}

func TestBuild_DeleteHints(t *testing.T) {
	b, _ := setupBuilder(t)

	assert.Equal(t, &DeleteCheckIn{Date: "2026-10-14"}, build(t, b, testCtx, IntentDeleteCheckIn, Args{"date": "yesterday"}))
	assert.Equal(t, &DeleteTransaction{TransactionID: "tx-1"}, build(t, b, testCtx, IntentDeleteTransaction, Args{"transactionId": "tx-1"}))
	assert.Equal(t, &DeleteFood{Food: "rice"}, build(t, b, testCtx, IntentDeleteFood, Args{"food": " rice "}))
}

func TestBuild_Unknown(t *testing.T) {
	b, _ := setupBuilder(t)

	assert.Equal(t, &Unknown{Message: UnknownIntentReply}, build(t, b, testCtx, IntentUnknown, nil))
	assert.Equal(t, &Unknown{Message: "Try again"}, build(t, b, testCtx, IntentUnknown, Args{"message": "Try again"}))

	_, err := b.Build(context.Background(), testCtx, Intent("book_flight"), Args{})
	assert.True(t, errors.Is(err, ErrUnsupportedIntent))
}
