// internal/workers/assistant/detect-action/remote.go
package detectaction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"assistant-workers/internal/models"
)

var (
	ErrClassifierFailed  = errors.New("CLASSIFIER_FAILED")
	ErrClassifierTimeout = errors.New("CLASSIFIER_TIMEOUT")
)

// remoteResponseSchema is the loose contract with the remote classifier:
// only actionType and confidence are required, and anything extra is
// tolerated.
const remoteResponseSchema = `{
	"type": "object",
	"properties": {
		"actionType": {
			"type": "string",
			"enum": ["general_chat", "upload_metrics", "create_planning_card", "upload_to_library", "upload_to_references", "analyze_url", "create_content"]
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"extractedParams": {"type": "object"},
		"requiresConfirmation": {"type": "boolean"}
	},
	"required": ["actionType", "confidence"]
}`

// classifyRemote sends the message plus attachment metadata (name/type only,
// never content) to the remote classifier and maps its answer onto a
// DetectedAction. requiresConfirmation from the wire is discarded; the
// type-level policy decides.
func (h *Handler) classifyRemote(ctx context.Context, input *Input) (models.DetectedAction, error) {
	var zero models.DetectedAction

	fileMetadata := make([]map[string]string, 0, len(input.Files))
	for _, f := range input.Files {
		fileMetadata = append(fileMetadata, map[string]string{
			"name": f.Name,
			"type": f.Type,
		})
	}

	requestBody := map[string]interface{}{
		"message":      input.Message,
		"fileMetadata": fileMetadata,
	}
	if input.Context != nil {
		requestBody["context"] = input.Context
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ErrClassifierTimeout
			}
		}

		// A fresh request per attempt: the body reader is consumed by
		// each send.
		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/detect-action", bytes.NewBuffer(body))
		if err != nil {
			return zero, fmt.Errorf("%w: %v", ErrClassifierFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return zero, ErrClassifierTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return zero, fmt.Errorf("%w: %v", ErrClassifierFailed, lastErr)
	}
	if resp == nil {
		return zero, fmt.Errorf("%w: no successful response after retries", ErrClassifierFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%w: read body: %v", ErrClassifierFailed, err)
	}

	if err := validateRemoteResponse(raw); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrClassifierFailed, err)
	}

	var apiResponse remoteResponse
	if err := json.Unmarshal(raw, &apiResponse); err != nil {
		return zero, fmt.Errorf("%w: decode error: %v", ErrClassifierFailed, err)
	}

	actionType := models.ActionType(apiResponse.ActionType)
	confidence := apiResponse.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	params := apiResponse.ExtractedParams
	if params == nil {
		params = map[string]string{}
	}

	return models.DetectedAction{
		Type:                 actionType,
		Confidence:           confidence,
		Params:               params,
		RequiresConfirmation: models.RequiresConfirmation(actionType),
	}, nil
}

func validateRemoteResponse(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(remoteResponseSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %v", err)
	}
	if !result.Valid() {
		return fmt.Errorf("invalid classifier response: %v", result.Errors())
	}
	return nil
}
