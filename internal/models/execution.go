// internal/models/execution.go
package models

// ExecutionResult is the terminal value of one executor invocation.
// Unsupported actions and precondition failures come back as
// {Success: false, Message} instead of job failures so the caller can
// always render something.
type ExecutionResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
