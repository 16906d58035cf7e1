package main

import (
	"bme-workers/internal/common/errors"
	"bme-workers/internal/intent/tools"
	"bme-workers/pkg/registry"

	ea "bme-workers/internal/workers/voice/execute-actions"
	pt "bme-workers/internal/workers/voice/parse-transcript"
)

const jobRetries = 3

// activities describes the job types served by worker-manager, derived from
// the worker packages so the registry cannot drift from the code.
func activities() []registry.Activity {
	intents := make([]string, 0, len(tools.Catalog))
	for _, t := range tools.Catalog {
		intents = append(intents, string(t.Intent))
	}

	return []registry.Activity{
		{
			ID:           pt.TaskType,
			DisplayName:  "Parse Transcript",
			Description:  "Turns one transcribed utterance into an ordered list of actions via Gemini function calling, with a heuristic fallback.",
			Category:     "voice",
			Version:      "1.0.0",
			TaskType:     pt.TaskType,
			InputSchema:  pt.InputSchema.AsMap(),
			OutputSchema: pt.OutputSchema.AsMap(),
			ErrorCodes: []string{
				string(errors.ErrCodeInputValidationFailed),
				string(errors.ErrCodeMissingUserID),
				string(errors.ErrCodeIntentParsingFailed),
			},
			Timeout: pt.DefaultConfig().Timeout.String(),
			Retries: jobRetries,
			Tags:    intents,
		},
		{
			ID:           ea.TaskType,
			DisplayName:  "Execute Actions",
			Description:  "Applies a batch of actions to the user's records in order and reports one result per action.",
			Category:     "voice",
			Version:      "1.0.0",
			TaskType:     ea.TaskType,
			InputSchema:  ea.InputSchema.AsMap(),
			OutputSchema: ea.OutputSchema.AsMap(),
			ErrorCodes: []string{
				string(errors.ErrCodeInputValidationFailed),
				string(errors.ErrCodeMissingUserID),
				string(errors.ErrCodeInvalidActionPayload),
			},
			Timeout: ea.DefaultConfig().Timeout.String(),
			Retries: jobRetries,
			Tags:    intents,
		},
	}
}
