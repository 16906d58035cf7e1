package executeactions

import (
	"bme-workers/internal/common/validation"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/executor"
)

type Input struct {
	Actions actions.List `json:"actions"`
	UserID  string       `json:"userId"`
}

type Output struct {
	Results   []executor.Result `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"actions", "userId"},
	Properties: map[string]validation.Property{
		"actions": {Type: "array", Description: "Actions produced by parse-transcript"},
		"userId":  {Type: "string", Description: "Acting user"},
	},
	AdditionalProperties: true,
}

var OutputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"results", "succeeded", "failed"},
	Properties: map[string]validation.Property{
		"results":   {Type: "array", Description: "One {intent, success, message} per action, in order"},
		"succeeded": {Type: "integer"},
		"failed":    {Type: "integer"},
	},
}

var inputValidator = validation.MustCompile(InputSchema)
