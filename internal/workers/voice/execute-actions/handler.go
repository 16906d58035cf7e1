package executeactions

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"bme-workers/internal/common/errors"
	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
	"bme-workers/internal/common/observability"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/executor"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "execute-actions"

// BatchExecutor is satisfied by *executor.Executor.
type BatchExecutor interface {
	Execute(ctx context.Context, batch []actions.Action, userID string) []executor.Result
}

type Handler struct {
	config       *Config
	executor     BatchExecutor
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, exec BatchExecutor, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		executor:     exec,
		obs:          obs,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.GetKey()))
	defer span.End()

	h.logger.Info("Executing actions", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		span.RecordError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		h.record(ctx, start, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output := h.Execute(ctx, input)
	h.completeJob(ctx, client, job, output)

	status := "completed"
	if output.Failed > 0 {
		status = "partial"
	}
	h.record(ctx, start, status)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// Execute applies the batch. Per-action failures are reported in the
// results and never fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	results := h.executor.Execute(ctx, input.Actions, input.UserID)

	output := &Output{Results: results}
	for _, r := range results {
		if r.Success {
			output.Succeeded++
		} else {
			output.Failed++
		}
	}

	h.logger.Info("Actions executed", map[string]interface{}{
		"userId":    input.UserID,
		"succeeded": output.Succeeded,
		"failed":    output.Failed,
	})
	return output
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}

	result := inputValidator.Validate(variables)
	if !result.Valid {
		return nil, errors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var raw struct {
		Actions json.RawMessage `json:"actions"`
		UserID  string          `json:"userId"`
	}
	if err := json.Unmarshal([]byte(job.GetVariables()), &raw); err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}

	input := Input{UserID: strings.TrimSpace(raw.UserID)}
	if input.UserID == "" {
		return nil, errors.NewMissingUserIDError()
	}
	if err := json.Unmarshal(raw.Actions, &input.Actions); err != nil {
		return nil, errors.NewInvalidActionPayloadError(err)
	}

	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}
