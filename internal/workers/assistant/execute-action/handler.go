// internal/workers/assistant/execute-action/handler.go
package executeaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"assistant-workers/internal/common/aws"
	commonerrors "assistant-workers/internal/common/errors"
	commonhttp "assistant-workers/internal/common/http"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

const TaskType = "execute-action"

// ProgressKeyPrefix is where per-job progress checkpoints live in Redis.
const ProgressKeyPrefix = "progress:"

type actionFunc func(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error)

// inputSchema is checked against the raw job variables before dispatch:
// an executor invocation without an action or a tenant is a modelling
// error in the process, not something a flow should guess around.
var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"action":      {Type: "object"},
		"tenantId":    {Type: "string", MinLength: intPtr(1)},
		"workspaceId": {Type: "string"},
	},
	Required:             []string{"action", "tenantId"},
	AdditionalProperties: true,
}

func intPtr(v int) *int { return &v }

type Handler struct {
	config       *Config
	db           *sql.DB
	redisClient  *redis.Client
	sesClient    emailSender
	client       *commonhttp.Client
	dispatch     map[models.ActionType]actionFunc
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the dispatch table. The table and the confirmation
// policy in models are defined over the same ActionType constants;
// TestDispatchTableMatchesConfirmationPolicy keeps them aligned.
func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, sesClient *aws.SESClient, log logger.Logger) *Handler {
	h := &Handler{
		config:       config,
		db:           db,
		redisClient:  redisClient,
		client:       commonhttp.NewClient(config.Timeout),
		errorHandler: commonerrors.NewErrorHandler(log),
		logger:       log.With(map[string]interface{}{"taskType": TaskType}),
	}
	// A nil *SESClient must stay a nil interface for the notify guard.
	if sesClient != nil {
		h.sesClient = sesClient
	}
	h.dispatch = map[models.ActionType]actionFunc{
		models.ActionUploadMetrics:      h.executeImport,
		models.ActionCreatePlanningCard: h.executeCreatePlanningCard,
		models.ActionUploadToLibrary:    h.executeUploadToLibrary,
		models.ActionUploadToReferences: h.executeUploadToReferences,
		models.ActionCreateContent:      h.executeCreateContent,
	}
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var rawVars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &rawVars); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, fmt.Errorf("unparseable input: %w", err))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INTERNAL_ERROR").Inc()
		return
	}

	if result := validation.ValidateInput(rawVars, inputSchema); !result.Valid {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			fmt.Errorf("invalid executor input: %s (%s)", result.Errors[0].Field, result.Errors[0].Code))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INTERNAL_ERROR").Inc()
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, fmt.Errorf("unparseable input: %w", err))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INTERNAL_ERROR").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	progress := h.newProgressTracker(job.Key)
	result, err := h.Execute(ctx, &input, progress)
	if err != nil {
		code := "INTERNAL_ERROR"
		if stdErr, ok := err.(*commonerrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		metrics.ExecutionsCompleted.WithLabelValues(string(input.Action.Action.Type), "error").Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	outcome := "rejected"
	if result.Success {
		outcome = "success"
	}
	metrics.ExecutionsCompleted.WithLabelValues(string(input.Action.Action.Type), outcome).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	h.completeJob(client, job, &Output{Result: *result})
}

// Execute dispatches on the action type. Precondition and infrastructure
// failures surface as errors and fail the job; business rejections and
// unsupported types come back as {Success: false, Message} so the caller
// can always render something.
func (h *Handler) Execute(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	actionType := input.Action.Action.Type

	fn, ok := h.dispatch[actionType]
	if !ok {
		h.logger.Warn("unsupported action", map[string]interface{}{
			"errorCode":  string(commonerrors.ErrCodeUnsupportedAction),
			"actionType": string(actionType),
		})
		return &models.ExecutionResult{
			Success: false,
			Message: fmt.Sprintf("unsupported action: %s", actionType),
		}, nil
	}

	result, err := fn(ctx, input, progress)
	if err != nil {
		if _, ok := err.(*commonerrors.StandardError); ok {
			return nil, err
		}
		// Unexpected errors degrade to a rendered failure instead of a
		// job failure.
		h.logger.Error("action execution failed", map[string]interface{}{
			"actionType": string(actionType),
			"error":      err.Error(),
		})
		return &models.ExecutionResult{
			Success: false,
			Message: "execution failed",
		}, nil
	}
	return result, nil
}

// ==========================
// Progress Checkpoints
// ==========================

// progressTracker writes monotonic percentage checkpoints under
// progress:<jobKey>. Out-of-order reports are dropped, never rolled back.
type progressTracker struct {
	redisClient *redis.Client
	key         string
	ttl         time.Duration
	logger      logger.Logger
	last        int
}

func (h *Handler) newProgressTracker(jobKey int64) *progressTracker {
	return &progressTracker{
		redisClient: h.redisClient,
		key:         ProgressKeyPrefix + strconv.FormatInt(jobKey, 10),
		ttl:         h.config.ProgressTTL,
		logger:      h.logger,
	}
}

func (p *progressTracker) Report(ctx context.Context, percent int) {
	if percent <= p.last {
		return
	}
	p.last = percent

	if err := p.redisClient.Set(ctx, p.key, strconv.Itoa(percent), p.ttl).Err(); err != nil {
		p.logger.Warn("failed to write progress", map[string]interface{}{
			"key":   p.key,
			"error": err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
