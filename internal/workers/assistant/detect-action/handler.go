// internal/workers/assistant/detect-action/handler.go
package detectaction

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
)

const TaskType = "detect-action"

type Handler struct {
	config   *Config
	patterns *PatternLibrary
	strategy *Strategy
	client   *http.Client
	logger   logger.Logger
}

// NewHandler wires the pattern tables into a two-stage strategy: the local
// pattern stage first, the remote classifier only below the threshold.
func NewHandler(config *Config, patterns *PatternLibrary, log logger.Logger) *Handler {
	h := &Handler{
		config:   config,
		patterns: patterns,
		client:   &http.Client{Timeout: config.Timeout},
		logger:   log.With(map[string]interface{}{"taskType": TaskType}),
	}
	h.strategy = &Strategy{
		Primary: func(_ context.Context, input *Input) models.DetectedAction {
			return h.classifyPatterns(input)
		},
		Fallback:  h.classifyRemote,
		Threshold: config.EscalationThreshold,
		Merge:     PreferMoreConfident,
	}
	return h
}

// Handle never fails the job: detection is total, and malformed input
// degrades to general_chat like any other unmatchable message.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unparseable input, degrading to general_chat", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		input = Input{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.Execute(ctx, &input)
	h.completeJob(client, job, output)
}

// Execute runs the full two-stage classification. It always returns a value.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	action, stage, err := h.strategy.Classify(ctx, input)
	if err != nil {
		// Remote escalation failed; the pattern result stands.
		metrics.ClassifierEscalations.WithLabelValues("degraded").Inc()
		h.logger.Warn("remote classification failed, keeping pattern result", map[string]interface{}{
			"error":      err.Error(),
			"actionType": string(action.Type),
		})
	}

	metrics.ActionsDetected.WithLabelValues(string(action.Type), string(stage)).Inc()

	h.logger.Info("action detected", map[string]interface{}{
		"actionType":           string(action.Type),
		"stage":                string(stage),
		"confidence":           action.Confidence,
		"requiresConfirmation": action.RequiresConfirmation,
		"paramCount":           len(action.Params),
	})

	return &Output{Action: action}
}

// classifyPatterns is the synchronous, CPU-only pattern stage.
func (h *Handler) classifyPatterns(input *Input) models.DetectedAction {
	// File evidence outweighs text evidence.
	if file, ok := h.patterns.HasTabularAttachment(input.Files); ok {
		return h.detected(models.ActionUploadMetrics, 0.9, map[string]string{
			"fileName": file.Name,
		})
	}

	if url, ok := h.patterns.FindURL(input.Message); ok {
		if h.patterns.MatchesReferenceUpload(input.Message) {
			return h.detected(models.ActionUploadToReferences, 0.85, map[string]string{"url": url})
		}
		if h.patterns.MatchesLibraryUpload(input.Message) {
			return h.detected(models.ActionUploadToLibrary, 0.85, map[string]string{"url": url})
		}
		// A URL with no explicit destination is only worth inspecting.
		return h.detected(models.ActionAnalyzeURL, 0.7, map[string]string{"url": url})
	}

	if actionType, ok := h.patterns.MatchAction(input.Message); ok {
		return h.detected(actionType, 0.8, h.patterns.ExtractParams(input.Message))
	}

	// "No action" is itself a fully confident classification.
	return h.detected(models.ActionGeneralChat, 1.0, map[string]string{})
}

func (h *Handler) detected(t models.ActionType, confidence float64, params map[string]string) models.DetectedAction {
	return models.DetectedAction{
		Type:                 t,
		Confidence:           confidence,
		Params:               params,
		RequiresConfirmation: models.RequiresConfirmation(t),
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
