// Package parser turns one transcript into an ordered list of built actions:
// model directives, argument validation, concurrent building, and the
// fallback classifier when nothing usable comes back.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/fallback"
	"bme-workers/internal/intent/llm"
	"bme-workers/internal/intent/timeutil"
	"bme-workers/internal/intent/tools"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DirectiveSource produces untrusted directives for a transcript.
type DirectiveSource interface {
	Directives(ctx context.Context, transcript string, c actions.Context) ([]tools.Directive, error)
}

// Options are the caller-supplied hints. Invalid values are ignored.
type Options struct {
	Today    string
	Timezone string
}

type Output struct {
	Actions      actions.List `json:"actions"`
	FallbackUsed bool         `json:"fallbackUsed"`
}

type Config struct {
	// BuildConcurrency bounds concurrent builders for one transcript.
	BuildConcurrency int
}

type Parser struct {
	config    Config
	source    DirectiveSource
	validator *tools.Validator
	builder   *actions.Builder
	fallback  *fallback.Classifier
	logger    logger.Logger
	now       func() time.Time
}

func New(config Config, source DirectiveSource, validator *tools.Validator, builder *actions.Builder, classifier *fallback.Classifier, log logger.Logger) *Parser {
	if config.BuildConcurrency <= 0 {
		config.BuildConcurrency = 4
	}
	return &Parser{
		config:    config,
		source:    source,
		validator: validator,
		builder:   builder,
		fallback:  classifier,
		logger:    log,
		now:       time.Now,
	}
}

// ParseTranscript never reports upstream failures as errors: a failing,
// blocked or empty model answer goes through the fallback classifier and
// still yields exactly one action.
func (p *Parser) ParseTranscript(ctx context.Context, text, lang, userID string, opts Options) (Output, error) {
	c := p.context(lang, userID, opts)
	log := p.logger.With(map[string]interface{}{"userId": userID, "today": c.Today})

	if strings.TrimSpace(text) == "" || p.source == nil {
		return p.fallBack(ctx, text, fallback.ReasonNoDirectives, c), nil
	}

	directives, err := p.source.Directives(ctx, text, c)
	if err != nil {
		reason := classify(err)
		log.Warn("Language model returned no directives", map[string]interface{}{
			"reason": string(reason),
			"error":  err.Error(),
		})
		return p.fallBack(ctx, text, reason, c), nil
	}

	valid := p.validator.Filter(directives)
	if len(valid) == 0 {
		return p.fallBack(ctx, text, fallback.ReasonNoValidDirectives, c), nil
	}

	built, err := p.build(ctx, c, valid)
	if err != nil {
		return Output{}, err
	}
	if len(built) == 0 {
		return p.fallBack(ctx, text, fallback.ReasonNoValidDirectives, c), nil
	}

	log.Debug("Transcript parsed", map[string]interface{}{
		"directives": len(directives),
		"actions":    len(built),
	})
	return Output{Actions: built}, nil
}

// build runs the builders concurrently and keeps directive order.
func (p *Parser) build(ctx context.Context, c actions.Context, directives []tools.Directive) (actions.List, error) {
	slots := make([]actions.Action, len(directives))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.BuildConcurrency)
	for i, d := range directives {
		g.Go(func() error {
			a, err := p.builder.Build(gctx, c, actions.Intent(d.Name), actions.Args(d.Args))
			if errors.Is(err, actions.ErrUnsupportedIntent) {
				p.logger.Warn("Skipping directive without a builder", map[string]interface{}{"intent": d.Name})
				return nil
			}
			if err != nil {
				return fmt.Errorf("build %s: %w", d.Name, err)
			}
			slots[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.Filter(slots, func(a actions.Action, _ int) bool { return a != nil }), nil
}

func (p *Parser) fallBack(ctx context.Context, text string, reason fallback.Reason, c actions.Context) Output {
	a := p.fallback.Classify(ctx, text, reason, c)
	if food, ok := a.(*actions.AddFood); ok {
		p.builder.EnrichFood(ctx, food, actions.PrefersUncooked(nil, food.Food))
	}
	return Output{Actions: actions.List{a}, FallbackUsed: true}
}

// context resolves today and the timezone, dropping invalid hints.
func (p *Parser) context(lang, userID string, opts Options) actions.Context {
	loc, ok := timeutil.LoadZone(opts.Timezone)
	tz := opts.Timezone
	if !ok {
		loc, tz = nil, ""
	}

	today := strings.TrimSpace(opts.Today)
	if !timeutil.ValidToday(today) {
		today = timeutil.Today(p.now(), loc)
	}

	return actions.Context{Today: today, Timezone: strings.TrimSpace(tz), UserID: userID, Lang: lang}
}

func classify(err error) fallback.Reason {
	switch {
	case errors.Is(err, llm.ErrBlocked):
		return fallback.ReasonBlocked
	case errors.Is(err, llm.ErrNoDirectives):
		return fallback.ReasonNoDirectives
	default:
		return fallback.ReasonLLMError
	}
}
