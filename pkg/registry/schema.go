// pkg/registry/schema.go
package registry

// ActivityRegistry is the machine-readable catalog of worker task types.
// Deployment tooling reads it to know which task types exist, what they
// consume and produce, and which error codes their BPMN boundaries must
// handle.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Tags         []string               `json:"tags"`
}
