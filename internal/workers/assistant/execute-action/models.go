// internal/workers/assistant/execute-action/models.go
package executeaction

import "assistant-workers/internal/models"

type Input struct {
	Action      models.PendingAction `json:"action"`
	TenantID    string               `json:"tenantId"`
	WorkspaceID string               `json:"workspaceId"`
}

type Output struct {
	Result models.ExecutionResult `json:"result"`
}

// validatorResponse is what the remote import validator answers with.
// A reachable validator that rejects the file is a business outcome, not
// an infrastructure failure.
type validatorResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// generatorResponse is the content generation service's answer.
type generatorResponse struct {
	Content string `json:"content"`
}
