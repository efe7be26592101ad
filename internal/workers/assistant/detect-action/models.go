// internal/workers/assistant/detect-action/models.go
package detectaction

import "assistant-workers/internal/models"

type Input struct {
	Message string                `json:"message"`
	Files   []models.FileMetadata `json:"files"`
	Context *RequestContext       `json:"context"`
}

type RequestContext struct {
	TenantID       string `json:"tenantId"`
	CurrentSurface string `json:"currentSurface"`
}

type Output struct {
	Action models.DetectedAction `json:"action"`
}

// remoteResponse is the loosely validated shape returned by the remote
// classifier. requiresConfirmation is accepted but ignored: the policy is
// recomputed from the type so confidence can never influence it.
type remoteResponse struct {
	ActionType           string            `json:"actionType"`
	Confidence           float64           `json:"confidence"`
	ExtractedParams      map[string]string `json:"extractedParams"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
}
