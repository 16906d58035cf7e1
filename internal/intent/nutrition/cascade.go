package nutrition

import (
	"context"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
)

// Catalog is the shared nutrition table.
type Catalog interface {
	// FindByNameFuzzy returns the closest case-insensitive substring match,
	// or nil when nothing matches.
	FindByNameFuzzy(ctx context.Context, name string, preferUncooked bool) (*Record, error)
	FindByNormalizedName(ctx context.Context, normalized string) (*Record, error)
	// InsertIfAbsent stores rec under normalized unless a row already owns
	// that key, and returns the stored row either way.
	InsertIfAbsent(ctx context.Context, normalized string, rec Record) (*Record, error)
}

// AILookup estimates nutrition for a food the catalog doesn't know. A nil
// record with a nil error means the model didn't recognize the food.
type AILookup interface {
	Lookup(ctx context.Context, name string) (*Record, error)
}

// Cascade implements the catalog → AI → placeholder fallback. The AI step
// is skipped when ai is nil.
type Cascade struct {
	catalog Catalog
	ai      AILookup
	logger  logger.Logger
}

func NewCascade(catalog Catalog, ai AILookup, log logger.Logger) *Cascade {
	return &Cascade{catalog: catalog, ai: ai, logger: log}
}

// Enrich never fails: every error degrades to the next step.
func (c *Cascade) Enrich(ctx context.Context, q Query) Result {
	display := DisplayName(q.Name)

	rec, source := c.resolve(ctx, q)
	if rec == nil {
		metrics.NutritionLookups.WithLabelValues(string(SourcePlaceholder)).Inc()
		return Result{Name: display, Source: SourcePlaceholder}
	}

	metrics.NutritionLookups.WithLabelValues(string(source)).Inc()
	res := Scale(*rec, q.Quantity, q.Unit)
	res.Name = display
	res.Source = source
	return res
}

func (c *Cascade) resolve(ctx context.Context, q Query) (*Record, Source) {
	term := searchTerm(q.Name)
	if term == "" {
		return nil, SourcePlaceholder
	}

	rec, err := c.catalog.FindByNameFuzzy(ctx, term, q.PreferUncooked)
	if err != nil {
		c.logger.Warn("catalog lookup failed", map[string]interface{}{"food": q.Name, "error": err})
	} else if rec != nil {
		return rec, SourceCatalog
	}

	if c.ai == nil {
		return nil, SourcePlaceholder
	}

	normalized := NormalizeName(q.Name)
	if existing, err := c.catalog.FindByNormalizedName(ctx, normalized); err != nil {
		c.logger.Warn("catalog lookup by normalized name failed", map[string]interface{}{"food": normalized, "error": err})
	} else if existing != nil {
		return existing, SourceReused
	}

	estimated, err := c.ai.Lookup(ctx, q.Name)
	if err != nil {
		c.logger.Warn("AI nutrition lookup failed", map[string]interface{}{"food": q.Name, "error": err})
		return nil, SourcePlaceholder
	}
	if estimated == nil {
		return nil, SourcePlaceholder
	}
	if estimated.ReferenceQuantity <= 0 {
		estimated.ReferenceQuantity = ReferenceQuantity
	}

	stored, err := c.catalog.InsertIfAbsent(ctx, normalized, *estimated)
	if err != nil {
		c.logger.Warn("catalog insert failed, using unsaved estimate", map[string]interface{}{"food": normalized, "error": err})
		return estimated, SourceAI
	}
	return stored, SourceAI
}
