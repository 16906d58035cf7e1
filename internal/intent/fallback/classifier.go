// Package fallback decides what a transcript means when the language model
// produced nothing usable.
package fallback

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/diagnostics"
	"bme-workers/internal/intent/nutrition"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Reason records why the fallback ran.
type Reason string

const (
	ReasonLLMError          Reason = "llm_error"
	ReasonBlocked           Reason = "blocked"
	ReasonNoDirectives      Reason = "no_directives"
	ReasonNoValidDirectives Reason = "no_valid_directives"
)

// UnknownIntentMessage is the diagnostic message recorded for every
// transcript the classifier cannot place.
const UnknownIntentMessage = "unknown-intent"

const DefaultMaxChars = 80

var (
	durationPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:h|hr|hrs|hour|hours|min|mins|minute|minutes|hora|horas|minuto|minutos)\b`)
	clockPattern    = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	timeKeywords    = regexp.MustCompile(`\b(?:sleep|sleeping|slept|woke|wake|waking|schedule|scheduled|meeting|appointment|remind|reminder|dormi|dormir|dormido|desperte|despertar|agenda|agendar|reunion|cita)\b`)
)

// Classifier never fails: it yields either a bare food log or an unknown
// action with one diagnostic.
type Classifier struct {
	maxChars int
	sink     diagnostics.Sink
	logger   logger.Logger
}

func New(maxChars int, sink diagnostics.Sink, log logger.Logger) *Classifier {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Classifier{maxChars: maxChars, sink: sink, logger: log}
}

// Classify returns exactly one action for transcript.
func (c *Classifier) Classify(ctx context.Context, transcript string, reason Reason, ac actions.Context) actions.Action {
	text := strings.TrimSpace(transcript)

	if c.looksLikeFood(text) {
		metrics.FallbackUsed.WithLabelValues("food").Inc()
		c.logger.Info("Fallback logged transcript as food", map[string]interface{}{
			"reason": string(reason),
			"userId": ac.UserID,
		})
		return &actions.AddFood{
			Food:     text,
			Quantity: actions.Defaults.FoodQuantity,
			Unit:     actions.Defaults.FoodUnit,
			Date:     ac.Today,
			Source:   string(nutrition.SourcePlaceholder),
		}
	}

	metrics.FallbackUsed.WithLabelValues("unknown").Inc()
	if c.sink != nil {
		c.sink.LogError(ctx, UnknownIntentMessage, map[string]interface{}{
			"transcript": transcript,
			"reason":     string(reason),
			"lang":       ac.Lang,
		}, ac.UserID)
	}
	return &actions.Unknown{Message: actions.UnknownIntentReply}
}

// looksLikeFood is the short, time-free heuristic: non-empty, at most
// maxChars runes, no duration, no H:MM and no sleep or schedule word.
func (c *Classifier) looksLikeFood(text string) bool {
	if text == "" || utf8.RuneCountInString(text) > c.maxChars {
		return false
	}
	folded := Fold(text)
	return !durationPattern.MatchString(folded) &&
		!clockPattern.MatchString(folded) &&
		!timeKeywords.MatchString(folded)
}

// Fold lower-cases s and strips diacritics so "Reunión" matches "reunion".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
