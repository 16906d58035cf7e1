package nutrition

import (
	"math"
	"strings"
)

// unitToBase maps a unit to grams (or ml; liquids are taken at density 1).
var unitToBase = map[string]float64{
	// mass
	"g": 1, "gr": 1, "gram": 1, "grams": 1, "gramo": 1, "gramos": 1,
	"kg": 1000, "kilo": 1000, "kilos": 1000, "kilogram": 1000, "kilograms": 1000, "kilogramo": 1000, "kilogramos": 1000,
	"mg": 0.001, "milligram": 0.001, "milligrams": 0.001,
	"oz": 28.35, "ounce": 28.35, "ounces": 28.35, "onza": 28.35, "onzas": 28.35,
	"lb": 453.6, "lbs": 453.6, "pound": 453.6, "pounds": 453.6, "libra": 453.6, "libras": 453.6,

	// volume
	"ml": 1, "milliliter": 1, "milliliters": 1, "mililitro": 1, "mililitros": 1,
	"l": 1000, "liter": 1000, "liters": 1000, "litre": 1000, "litres": 1000, "litro": 1000, "litros": 1000,
	"cl": 10, "dl": 100,
	"fl oz": 29.57, "floz": 29.57, "fluid ounce": 29.57, "fluid ounces": 29.57,

	// informal
	"cup": 240, "cups": 240, "taza": 240, "tazas": 240,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15, "cucharada": 15, "cucharadas": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5, "cucharadita": 5, "cucharaditas": 5,
	"slice": 30, "slices": 30, "rebanada": 30, "rebanadas": 30,
	"serving": 100, "servings": 100, "porcion": 100, "porción": 100, "porciones": 100,
}

// BaseQuantity converts a portion to grams (or ml). An unknown unit yields
// ReferenceQuantity of the base unit regardless of quantity.
func BaseQuantity(quantity float64, unit string) float64 {
	factor, ok := unitToBase[strings.ToLower(strings.TrimSpace(unit))]
	if !ok || quantity <= 0 {
		return ReferenceQuantity
	}
	return quantity * factor
}

// Scale derives portion nutrition from a per-reference record. Calories are
// rounded to an integer, macros to one decimal.
func Scale(rec Record, quantity float64, unit string) Result {
	ref := rec.ReferenceQuantity
	if ref <= 0 {
		ref = ReferenceQuantity
	}
	factor := BaseQuantity(quantity, unit) / ref

	return Result{
		Name:     rec.Name,
		Calories: math.Round(rec.Calories * factor),
		Protein:  round1(rec.Protein * factor),
		Carbs:    round1(rec.Carbs * factor),
		Fat:      round1(rec.Fat * factor),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
