// internal/workers/assistant/execute-action/content.go
package executeaction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"
)

// executeCreateContent calls the remote generation service and hands the
// text back without persisting anything.
func (h *Handler) executeCreateContent(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	params := input.Action.Action.Params

	idea := params["idea"]
	if idea == "" {
		idea = params["description"]
	}
	if idea == "" {
		return &models.ExecutionResult{Success: false, Message: "no content idea provided"}, nil
	}
	progress.Report(ctx, 20)

	body, _ := json.Marshal(map[string]string{
		"idea":   idea,
		"format": params["format"],
	})

	req, err := http.NewRequestWithContext(ctx, "POST", h.config.GeneratorURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, commonerrors.NewContentGenerationFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, commonerrors.NewContentGenerationFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.NewContentGenerationFailedError(fmt.Errorf("generator status %d", resp.StatusCode))
	}

	var generated generatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, commonerrors.NewContentGenerationFailedError(fmt.Errorf("decode generator response: %w", err))
	}
	progress.Report(ctx, 100)

	return &models.ExecutionResult{
		Success: true,
		Message: "content generated",
		Data: map[string]interface{}{
			"content": generated.Content,
			"format":  params["format"],
		},
	}, nil
}
