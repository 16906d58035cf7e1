package parsetranscript

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"bme-workers/internal/common/errors"
	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
	"bme-workers/internal/common/observability"
	"bme-workers/internal/intent/parser"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "parse-transcript"

// TranscriptParser is satisfied by *parser.Parser.
type TranscriptParser interface {
	ParseTranscript(ctx context.Context, text, lang, userID string, opts parser.Options) (parser.Output, error)
}

type Handler struct {
	config       *Config
	parser       TranscriptParser
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, p TranscriptParser, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		parser:       p,
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

	h.logger.Info("Processing transcript", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		if output, err = h.Execute(ctx, input); err == nil {
			h.completeJob(ctx, client, job, output)
			h.record(ctx, start, "completed")
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			return
		}
	}

	span.RecordError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.record(ctx, start, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// Execute runs the parser. Upstream model failures never surface here;
// an error means the pipeline itself broke.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out, err := h.parser.ParseTranscript(ctx, input.Transcript, input.Lang, input.UserID, parser.Options{
		Today:    input.Today,
		Timezone: input.Timezone,
	})
	if err != nil {
		return nil, errors.NewIntentParsingFailedError(err).WithMetadata("userId", input.UserID)
	}

	h.logger.Info("Transcript parsed", map[string]interface{}{
		"userId":       input.UserID,
		"actionCount":  len(out.Actions),
		"fallbackUsed": out.FallbackUsed,
	})

	return &Output{
		Actions:      out.Actions,
		ActionCount:  len(out.Actions),
		FallbackUsed: out.FallbackUsed,
	}, nil
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

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return nil, errors.NewMissingUserIDError()
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
