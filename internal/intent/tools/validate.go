package tools

import (
	"errors"
	"fmt"
	"strings"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
	"bme-workers/internal/common/validation"
	"bme-workers/internal/intent/actions"
)

var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError lists why a directive's arguments were rejected.
type ArgumentError struct {
	Intent   actions.Intent
	Messages []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Intent, strings.Join(e.Messages, "; "))
}

// Validator checks directives against the catalog. Compiled once, safe for
// concurrent use.
type Validator struct {
	tools  map[actions.Intent]compiledTool
	logger logger.Logger
}

type compiledTool struct {
	tool      Tool
	validator *validation.Validator
}

func NewValidator(log logger.Logger) *Validator {
	tools := make(map[actions.Intent]compiledTool, len(Catalog))
	for _, t := range Catalog {
		tools[t.Intent] = compiledTool{tool: t, validator: validation.MustCompile(t.Parameters)}
	}
	return &Validator{tools: tools, logger: log}
}

// Validate coerces string-wrapped numbers and enum casing, then checks the
// schema. The returned directive carries the coerced arguments.
func (v *Validator) Validate(d Directive) (Directive, error) {
	ct, ok := v.tools[actions.Intent(d.Name)]
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownTool, d.Name)
	}

	args := coerceObject(d.Args, ct.tool.Parameters.Properties)
	if args == nil {
		args = map[string]interface{}{}
	}

	result := ct.validator.Validate(args)
	if !result.Valid {
		return d, &ArgumentError{Intent: ct.tool.Intent, Messages: result.GetErrorMessages()}
	}
	return Directive{Name: d.Name, Args: args}, nil
}

// Filter keeps the valid directives in order. Rejected ones are logged at
// warn level and counted; they never affect the others.
func (v *Validator) Filter(directives []Directive) []Directive {
	out := make([]Directive, 0, len(directives))
	for _, d := range directives {
		valid, err := v.Validate(d)
		if err != nil {
			metrics.DirectivesDropped.WithLabelValues(d.Name).Inc()
			fields := map[string]interface{}{"intent": d.Name, "error": err.Error()}
			var argErr *ArgumentError
			if errors.As(err, &argErr) {
				fields["violations"] = argErr.Messages
			}
			v.logger.Warn("dropping invalid directive", fields)
			continue
		}
		out = append(out, valid)
	}
	return out
}

// coerceObject returns a copy of args with schema-guided coercions applied.
func coerceObject(args map[string]interface{}, props map[string]validation.Property) map[string]interface{} {
	if args == nil {
		return nil
	}
	out := make(map[string]interface{}, len(args))
	for key, value := range args {
		if prop, ok := props[key]; ok {
			out[key] = coerceValue(value, prop)
		} else {
			out[key] = value
		}
	}
	return out
}

func coerceValue(value interface{}, prop validation.Property) interface{} {
	switch prop.Type {
	case "number", "integer":
		if s, ok := value.(string); ok {
			if f, ok := actions.ParseNumber(s); ok {
				return f
			}
		}
	case "string":
		if s, ok := value.(string); ok && len(prop.Enum) > 0 {
			return strings.ToLower(strings.TrimSpace(s))
		}
	case "boolean":
		if s, ok := value.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "yes":
				return true
			case "false", "no":
				return false
			}
		}
	case "array":
		if items, ok := value.([]interface{}); ok && prop.Items != nil {
			out := make([]interface{}, len(items))
			for i, item := range items {
				out[i] = coerceValue(item, *prop.Items)
			}
			return out
		}
	case "object":
		if m, ok := value.(map[string]interface{}); ok {
			return coerceObject(m, prop.Properties)
		}
	}
	return value
}
