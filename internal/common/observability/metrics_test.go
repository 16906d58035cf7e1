package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{ warnings int }

func (l *nopLogger) Warn(string, map[string]interface{}) { l.warnings++ }

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	var o *Observability

	ctx, span := o.StartSpan(context.Background(), "noop")
	span.End()

	assert.NotNil(t, ctx)
	o.RecordJobProcessed(ctx, "parse-transcript", "completed")
	o.RecordJobDuration(ctx, "parse-transcript", time.Millisecond, "completed")
}

func TestObservability_New_WithoutJaeger(t *testing.T) {
	log := &nopLogger{}
	o := New("bme-test", "", log)
	defer o.Shutdown()

	ctx, span := o.StartSpan(context.Background(), "parse")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	o.RecordJobProcessed(ctx, "execute-actions", "completed")
	assert.Equal(t, 0, log.warnings)
}
