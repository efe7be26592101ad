// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler handles job errors with standardized error handling.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError normalizes any error, logs it, and either fails the job
// with retries (transient errors) or throws a BPMN error (terminal ones).
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": bpmnErr.Code,
		"error":     stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	retries := GetRetryCount(stdErr.Code)
	if retries > 0 && job.Retries > 0 {
		h.failJobWithRetries(ctx, client, job, bpmnErr, retries)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, maxRetries int) {
	retriesToUse := maxRetries
	if job.Retries > 0 && int(job.Retries) < maxRetries {
		retriesToUse = int(job.Retries)
	}

	vars := bpmnErr.ToErrorVariables()
	varsJSON, _ := json.Marshal(vars)

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retriesToUse)).
		ErrorMessage(bpmnErr.Message)

	if len(vars) > 0 {
		if varsJSONStr := string(varsJSON); varsJSONStr != "null" {
			cmdWithVars, err := cmd.VariablesFromString(varsJSONStr)
			if err == nil {
				_, _ = cmdWithVars.Send(ctx)
				return
			}
		}
	}

	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message).
		Send(ctx)
}
