package parsetranscript

import (
	"bme-workers/internal/common/validation"
	"bme-workers/internal/intent/actions"
)

type Input struct {
	Transcript string `json:"transcript"`
	Lang       string `json:"lang"`
	UserID     string `json:"userId"`
	Today      string `json:"today,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

type Output struct {
	Actions      actions.List `json:"actions"`
	ActionCount  int          `json:"actionCount"`
	FallbackUsed bool         `json:"fallbackUsed"`
}

// InputSchema allows unknown keys since a job carries every process variable.
var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"transcript", "userId"},
	Properties: map[string]validation.Property{
		"transcript": {Type: "string", Description: "Raw utterance"},
		"lang":       {Type: "string", Description: "Language tag, e.g. en or es"},
		"userId":     {Type: "string", Description: "Acting user"},
		"today":      {Type: "string", Description: "Caller's date as YYYY-MM-DD"},
		"timezone":   {Type: "string", Description: "Caller's IANA timezone"},
	},
	AdditionalProperties: true,
}

var OutputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"actions", "actionCount", "fallbackUsed"},
	Properties: map[string]validation.Property{
		"actions":      {Type: "array", Description: "Built actions, each tagged with its intent"},
		"actionCount":  {Type: "integer"},
		"fallbackUsed": {Type: "boolean", Description: "True when the fallback classifier produced the actions"},
	},
}

var inputValidator = validation.MustCompile(InputSchema)
