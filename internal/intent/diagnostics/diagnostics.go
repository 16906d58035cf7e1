// Package diagnostics records pipeline diagnostics (unknown intents,
// dropped directives) without ever blocking or failing the pipeline.
package diagnostics

import (
	"context"
	"sync"
	"time"

	"bme-workers/internal/common/logger"

	"github.com/google/uuid"
)

// Sink accepts one diagnostic. LogError returns immediately.
type Sink interface {
	LogError(ctx context.Context, message string, details map[string]interface{}, userID string)
}

// Entry is one stored diagnostic.
type Entry struct {
	ID        string                 `json:"id"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	UserID    string                 `json:"userId,omitempty"`
	Timestamp time.Time              `json:"@timestamp"`
}

// Writer persists an entry to one backend.
type Writer interface {
	Write(ctx context.Context, e Entry) error
}

const defaultTimeout = 5 * time.Second

// Dispatcher fans each diagnostic out to every writer on its own goroutine.
// Writes run on a context detached from the caller's cancellation and
// bounded by timeout; failures are only logged.
type Dispatcher struct {
	writers []Writer
	timeout time.Duration
	logger  logger.Logger
	wg      sync.WaitGroup
	now     func() time.Time
}

func NewDispatcher(log logger.Logger, timeout time.Duration, writers ...Writer) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		writers: writers,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

func (d *Dispatcher) LogError(ctx context.Context, message string, details map[string]interface{}, userID string) {
	entry := Entry{
		ID:        uuid.NewString(),
		Message:   message,
		Details:   details,
		UserID:    userID,
		Timestamp: d.now().UTC(),
	}

	if len(d.writers) == 0 {
		d.logger.Warn("Diagnostic recorded without a writer", map[string]interface{}{
			"message": message,
			"userId":  userID,
		})
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, w := range d.writers {
		d.wg.Add(1)
		go func(w Writer) {
			defer d.wg.Done()
			writeCtx, cancel := context.WithTimeout(detached, d.timeout)
			defer cancel()

			if err := w.Write(writeCtx, entry); err != nil {
				d.logger.Warn("Failed to write diagnostic", map[string]interface{}{
					"error":        err,
					"diagnosticId": entry.ID,
					"message":      message,
				})
			}
		}(w)
	}
}

// Wait blocks until every write dispatched so far has finished. Used on
// shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
