// Package nutrition resolves a free-text food mention plus a portion into
// calories and macros: internal catalog first, then an AI lookup that is
// written back to the catalog, then a zero-valued placeholder.
package nutrition

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReferenceQuantity is the portion (g or ml) every Record is normalized to.
const ReferenceQuantity = 100.0

// Record is one catalog row, per ReferenceQuantity grams (or ml when IsLiquid).
type Record struct {
	ID                string  `json:"id,omitempty"`
	Name              string  `json:"name"`
	Calories          float64 `json:"calories"`
	Protein           float64 `json:"protein"`
	Carbs             float64 `json:"carbs"`
	Fat               float64 `json:"fat"`
	IsLiquid          bool    `json:"isLiquid"`
	ReferenceQuantity float64 `json:"referenceQuantity"`
}

// Query is one enrichment request.
type Query struct {
	Name           string
	Quantity       float64
	Unit           string
	PreferUncooked bool
}

// Source names the cascade step that produced a Result.
type Source string

const (
	SourceCatalog     Source = "catalog"
	SourceReused      Source = "reused"
	SourceAI          Source = "ai"
	SourcePlaceholder Source = "placeholder"
)

// Result is the portion-scaled nutrition for one Query.
type Result struct {
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Source   Source
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	rawWord     = regexp.MustCompile(`(?i)\b(raw|crud[oa])\b`)
	prepWords   = regexp.MustCompile(`(?i)\b(raw|uncooked|cooked|crud[oa]s?|cocid[oa]s?)\b`)
	titleCaser  = cases.Title(language.English, cases.NoLower)
	lowerCaser  = cases.Lower(language.Und)
	trimmedPunc = ",;.-"
)

// NormalizeName is the catalog de-duplication key: lower-cased with
// whitespace collapsed.
func NormalizeName(name string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(lowerCaser.String(name)), " ")
}

// DisplayName title-cases a food name and always shows the uncooked state
// as "uncooked", never "raw".
func DisplayName(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), " ")
	name = rawWord.ReplaceAllString(name, "uncooked")
	return titleCaser.String(name)
}

// searchTerm strips preparation words so "raw chicken" can match
// "Chicken breast, uncooked".
func searchTerm(name string) string {
	core := prepWords.ReplaceAllString(name, " ")
	core = strings.Trim(whitespace.ReplaceAllString(core, " "), " "+trimmedPunc)
	if core == "" {
		return NormalizeName(name)
	}
	return NormalizeName(core)
}
