// Package llm asks a Gemini model to turn a transcript into function-call
// directives drawn from the tool catalog.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bme-workers/internal/common/metrics"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/tools"

	"google.golang.org/genai"
)

var (
	// ErrNoDirectives means the model answered without a usable function
	// call: nil response, blocked prompt, or zero calls.
	ErrNoDirectives = errors.New("llm: no directives")
	// ErrBlocked is additionally matched when the prompt or the candidate
	// was stopped by a safety filter.
	ErrBlocked = errors.New("llm: blocked")
)

// ContentGenerator is the slice of *genai.Models used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiSource struct {
	models       ContentGenerator
	model        string
	timeout      time.Duration
	declarations []*genai.FunctionDeclaration
}

// NewGeminiSource builds a source; timeout <= 0 leaves the caller's
// deadline in charge.
func NewGeminiSource(models ContentGenerator, model string, timeout time.Duration) *GeminiSource {
	return &GeminiSource{
		models:       models,
		model:        model,
		timeout:      timeout,
		declarations: tools.Declarations(),
	}
}

// Directives sends one request with the whole catalog and function calling
// forced on. There is no retry.
func (g *GeminiSource) Directives(ctx context.Context, transcript string, c actions.Context) ([]tools.Directive, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(transcript, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction(c), genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
			Tools:             []*genai.Tool{{FunctionDeclarations: g.declarations}},
			ToolConfig: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAny,
				},
			},
		},
	)
	metrics.LLMRequestDuration.WithLabelValues("intent").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrNoDirectives)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return nil, fmt.Errorf("%w: %w: prompt %s", ErrNoDirectives, ErrBlocked, fb.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: %w: candidate %s", ErrNoDirectives, ErrBlocked, genai.FinishReasonSafety)
	}

	directives := functionCalls(resp)
	if len(directives) == 0 {
		return nil, fmt.Errorf("%w: no function calls", ErrNoDirectives)
	}
	return directives, nil
}

// functionCalls reads the first candidate's function-call parts.
func functionCalls(resp *genai.GenerateContentResponse) []tools.Directive {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil
	}
	var out []tools.Directive
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.FunctionCall == nil || part.FunctionCall.Name == "" {
			continue
		}
		out = append(out, tools.Directive{Name: part.FunctionCall.Name, Args: part.FunctionCall.Args})
	}
	return out
}

func systemInstruction(c actions.Context) string {
	var b strings.Builder
	b.WriteString("You turn one spoken or typed request into calls to the provided functions. ")
	b.WriteString("Call every function the request needs, in the order the user said them, and never invent values the user did not give.\n")
	fmt.Fprintf(&b, "Today is %s.", c.Today)
	if c.Timezone != "" {
		fmt.Fprintf(&b, " The user's timezone is %s; give dates and times as the user's local wall-clock values.", c.Timezone)
	}
	if c.Lang != "" {
		fmt.Fprintf(&b, " The request is in language %q; keep names and descriptions in that language.", c.Lang)
	}
	b.WriteString(`
Rules:
- Buying food or drink is both add_transaction (the money) and add_food (what was eaten); use the item as the transaction description.
- Use 24-hour HH:MM for times and YYYY-MM-DD, "today", "tomorrow" or "yesterday" for dates.
- Amounts and quantities are plain numbers without currency symbols.
- For edits and deletions, pass the identifying words the user used (title, description, food or date); only pass ids the user said.
- Set raw to true only when the user says the food was raw or uncooked.`)
	return b.String()
}
