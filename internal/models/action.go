// internal/models/action.go
package models

// ActionType is the closed set of intents the assistant can act on.
// Adding a value here requires updating both ConfirmationRequired and the
// execute-action dispatch table; TestDispatchTableMatchesConfirmationPolicy
// guards against the two drifting apart.
type ActionType string

const (
	ActionGeneralChat        ActionType = "general_chat"
	ActionUploadMetrics      ActionType = "upload_metrics"
	ActionCreatePlanningCard ActionType = "create_planning_card"
	ActionUploadToLibrary    ActionType = "upload_to_library"
	ActionUploadToReferences ActionType = "upload_to_references"
	ActionAnalyzeURL         ActionType = "analyze_url"
	ActionCreateContent      ActionType = "create_content"
)

// AllActionTypes lists every ActionType in its canonical enumeration order.
// Pattern matching in detect-action walks this order (minus general_chat).
var AllActionTypes = []ActionType{
	ActionGeneralChat,
	ActionUploadMetrics,
	ActionCreatePlanningCard,
	ActionUploadToLibrary,
	ActionUploadToReferences,
	ActionAnalyzeURL,
	ActionCreateContent,
}

// confirmationRequired is a type-level policy: actions that import data or
// create records always ask the user first, no matter how confident the
// classifier was.
var confirmationRequired = map[ActionType]bool{
	ActionUploadMetrics:      true,
	ActionCreatePlanningCard: true,
	ActionUploadToLibrary:    true,
	ActionUploadToReferences: true,
}

// RequiresConfirmation reports whether actions of the given type must be
// confirmed by the user before execution. It is a pure function of the type,
// never of the detection confidence.
func RequiresConfirmation(t ActionType) bool {
	return confirmationRequired[t]
}

// DetectedAction is the immutable result of intent classification.
type DetectedAction struct {
	Type                 ActionType        `json:"type"`
	Confidence           float64           `json:"confidence"`
	Params               map[string]string `json:"params"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
}

// FileMetadata describes an attachment without carrying its content.
// Only name/type/size ever leave the process during classification.
type FileMetadata struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// PendingAction is a DetectedAction awaiting user confirmation. Preview
// payloads produced at detection time (CSV or URL analysis) are cached in
// Redis and referenced here by id; the executor consumes them exactly once.
type PendingAction struct {
	Action         DetectedAction `json:"action"`
	Files          []FileMetadata `json:"files,omitempty"`
	AnalysisID     string         `json:"analysisId,omitempty"`
	LinkAnalysisID string         `json:"linkAnalysisId,omitempty"`
}
