// Package tools declares the function-call catalog offered to the language
// model and validates the directives it returns against the same schemas.
package tools

import (
	"bme-workers/internal/common/validation"
	"bme-workers/internal/intent/actions"
)

// Directive is one untrusted function call returned by the model.
type Directive struct {
	Name string
	Args map[string]interface{}
}

// Tool is one callable intent. Parameters drives both the model-facing
// declaration and argument validation.
type Tool struct {
	Intent      actions.Intent
	Description string
	Parameters  validation.JSONSchema
}

func str(desc string) validation.Property {
	return validation.Property{Type: "string", Description: desc}
}

func num(desc string) validation.Property {
	return validation.Property{Type: "number", Description: desc}
}

func nonNegative(desc string) validation.Property {
	return validation.Property{Type: "number", Description: desc, Minimum: validation.Min(0)}
}

func enum(desc string, values []string) validation.Property {
	return validation.Property{Type: "string", Description: desc, Enum: values}
}

func object(required []string, props map[string]validation.Property) validation.JSONSchema {
	return validation.JSONSchema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: true,
	}
}

const (
	dateDesc = "Date as YYYY-MM-DD, or today/tomorrow/yesterday"
	timeDesc = "Local time as HH:MM (24h)"
)

var scheduleItem = validation.Property{
	Type: "object",
	Properties: map[string]validation.Property{
		"title":      str("Event title"),
		"date":       str(dateDesc),
		"startTime":  str(timeDesc),
		"endTime":    str(timeDesc),
		"category":   str("One of Work, Personal, Health, Fitness, Social, Errands, Other"),
		"recurrence": str("daily, weekly, monthly or weekdays"),
		"notes":      str("Free-form notes"),
	},
	Required: []string{"title"},
}

var exercise = validation.Property{
	Type: "object",
	Properties: map[string]validation.Property{
		"name":   str("Exercise name"),
		"sets":   nonNegative("Number of sets"),
		"reps":   nonNegative("Repetitions per set"),
		"weight": nonNegative("Weight used"),
	},
}

// Catalog is the closed tool list, in the order offered to the model.
var Catalog = []Tool{
	{
		Intent:      actions.IntentAddSchedule,
		Description: "Add one or more calendar events or reminders.",
		Parameters: object(nil, map[string]validation.Property{
			"items": {Type: "array", Items: &scheduleItem},
		}),
	},
	{
		Intent:      actions.IntentEditSchedule,
		Description: "Change an existing calendar event, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"scheduleId": str("Event id, when known"),
			"title":      str("Current title, used to find the event"),
			"newTitle":   str("Replacement title"),
			"date":       str(dateDesc),
			"startTime":  str(timeDesc),
			"endTime":    str(timeDesc),
			"category":   str("New category"),
			"recurrence": str("New recurrence"),
			"notes":      str("New notes"),
		}),
	},
	{
		Intent:      actions.IntentDeleteSchedule,
		Description: "Remove a calendar event, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"scheduleId": str("Event id, when known"),
			"title":      str("Title of the event to remove"),
		}),
	},
	{
		Intent:      actions.IntentAddTransaction,
		Description: "Record money spent or received. Buying food or drink is both add_transaction and add_food.",
		Parameters: object([]string{"amount"}, map[string]validation.Property{
			"type":        enum("income or expense", actions.TransactionTypes),
			"amount":      nonNegative("Amount of money"),
			"category":    str("Expense: Food, Transport, Housing, Utilities, Entertainment, Shopping, Health, Education, Other. Income: Salary, Freelance, Investment, Gift, Other"),
			"description": str("What the money was for, as said by the user"),
			"date":        str(dateDesc),
		}),
	},
	{
		Intent:      actions.IntentEditTransaction,
		Description: "Change an existing transaction, found by id or by description.",
		Parameters: object(nil, map[string]validation.Property{
			"transactionId":  str("Transaction id, when known"),
			"description":    str("Current description, used to find the transaction"),
			"newDescription": str("Replacement description"),
			"type":           enum("income or expense", actions.TransactionTypes),
			"amount":         nonNegative("New amount"),
			"category":       str("New category"),
			"date":           str(dateDesc),
		}),
	},
	{
		Intent:      actions.IntentDeleteTransaction,
		Description: "Remove a transaction, found by id or by description.",
		Parameters: object(nil, map[string]validation.Property{
			"transactionId": str("Transaction id, when known"),
			"description":   str("Description of the transaction to remove"),
		}),
	},
	{
		Intent:      actions.IntentAddWorkout,
		Description: "Log a workout session.",
		Parameters: object(nil, map[string]validation.Property{
			"title":     str("Workout title"),
			"type":      enum("cardio, strength, flexibility, sports or other", actions.WorkoutTypes),
			"duration":  nonNegative("Duration in minutes"),
			"date":      str(dateDesc),
			"exercises": {Type: "array", Items: &exercise},
			"notes":     str("Free-form notes"),
		}),
	},
	{
		Intent:      actions.IntentEditWorkout,
		Description: "Change a logged workout, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"workoutId": str("Workout id, when known"),
			"title":     str("Current title, used to find the workout"),
			"newTitle":  str("Replacement title"),
			"type":      enum("cardio, strength, flexibility, sports or other", actions.WorkoutTypes),
			"duration":  nonNegative("New duration in minutes"),
			"date":      str(dateDesc),
			"notes":     str("New notes"),
		}),
	},
	{
		Intent:      actions.IntentDeleteWorkout,
		Description: "Remove a logged workout, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"workoutId": str("Workout id, when known"),
			"title":     str("Title of the workout to remove"),
		}),
	},
	{
		Intent:      actions.IntentAddFood,
		Description: "Log something eaten or drunk.",
		Parameters: object([]string{"food"}, map[string]validation.Property{
			"food":     str("Food or drink, as named by the user"),
			"quantity": num("Amount eaten"),
			"unit":     str("g, kg, oz, lb, ml, l, cup, tbsp, tsp, slice or serving"),
			"mealType": str("breakfast, lunch, dinner or snack"),
			"date":     str(dateDesc),
			"raw":      {Type: "boolean", Description: "True when the user said the food was raw/uncooked"},
		}),
	},
	{
		Intent:      actions.IntentEditFood,
		Description: "Change a logged food entry, found by id or by food name.",
		Parameters: object(nil, map[string]validation.Property{
			"foodEntryId": str("Food entry id, when known"),
			"food":        str("Current food name, used to find the entry"),
			"newFood":     str("Replacement food name"),
			"quantity":    num("New amount"),
			"unit":        str("New unit"),
			"mealType":    str("breakfast, lunch, dinner or snack"),
			"date":        str(dateDesc),
		}),
	},
	{
		Intent:      actions.IntentDeleteFood,
		Description: "Remove a logged food entry, found by id or by food name.",
		Parameters: object(nil, map[string]validation.Property{
			"foodEntryId": str("Food entry id, when known"),
			"food":        str("Name of the food to remove"),
		}),
	},
	{
		Intent:      actions.IntentLogSleep,
		Description: "Record last night's sleep in the daily check-in.",
		Parameters: object(nil, map[string]validation.Property{
			"hours":    num("Hours slept"),
			"date":     str(dateDesc),
			"wakeTime": str(timeDesc),
			"notes":    str("Free-form notes"),
		}),
	},
	{
		Intent:      actions.IntentEditCheckIn,
		Description: "Change a daily check-in, found by id or by date.",
		Parameters: object(nil, map[string]validation.Property{
			"checkInId":  str("Check-in id, when known"),
			"date":       str("Date of the check-in to change"),
			"sleepHours": num("New hours slept"),
			"wakeTime":   str(timeDesc),
			"notes":      str("New notes"),
		}),
	},
	{
		Intent:      actions.IntentDeleteCheckIn,
		Description: "Remove a daily check-in, found by id or by date.",
		Parameters: object(nil, map[string]validation.Property{
			"checkInId": str("Check-in id, when known"),
			"date":      str("Date of the check-in to remove"),
		}),
	},
	{
		Intent:      actions.IntentAddGoal,
		Description: "Create a personal goal.",
		Parameters: object(nil, map[string]validation.Property{
			"title":  str("Goal title"),
			"type":   str("workouts, calories, protein, savings, spending or sleep"),
			"target": num("Target value"),
			"period": str("daily, weekly or monthly"),
		}),
	},
	{
		Intent:      actions.IntentEditGoal,
		Description: "Change a goal, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"goalId":   str("Goal id, when known"),
			"title":    str("Current title, used to find the goal"),
			"newTitle": str("Replacement title"),
			"type":     str("New goal type"),
			"target":   num("New target value"),
			"period":   str("daily, weekly or monthly"),
		}),
	},
	{
		Intent:      actions.IntentDeleteGoal,
		Description: "Remove a goal, found by id or by title.",
		Parameters: object(nil, map[string]validation.Property{
			"goalId": str("Goal id, when known"),
			"title":  str("Title of the goal to remove"),
		}),
	},
}
