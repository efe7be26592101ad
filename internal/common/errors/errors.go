// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Classification errors. EMPTY_CSV_FILE is the only case where a
	// classifier fails instead of degrading.
	ErrCodeEmptyCSVFile       ErrorCode = "EMPTY_CSV_FILE"
	ErrCodeDetectionDegraded  ErrorCode = "ACTION_DETECTION_DEGRADED"
	ErrCodeExtractionDegraded ErrorCode = "LINK_EXTRACTION_DEGRADED"

	// Execution errors.
	ErrCodeAnalysisNotFound        ErrorCode = "ANALYSIS_NOT_FOUND"
	ErrCodeImportRejected          ErrorCode = "IMPORT_REJECTED"
	ErrCodeImportValidatorFailed   ErrorCode = "IMPORT_VALIDATOR_FAILED"
	ErrCodeDuplicateImport         ErrorCode = "DUPLICATE_IMPORT"
	ErrCodeNoPlanningColumn        ErrorCode = "NO_PLANNING_COLUMN"
	ErrCodeDatabaseInsertFailed    ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeContentGenerationFailed ErrorCode = "CONTENT_GENERATION_FAILED"
	ErrCodeUnsupportedAction       ErrorCode = "UNSUPPORTED_ACTION"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError maps a StandardError onto its BPMN representation.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many retries a given error code deserves.
// Only transient infrastructure failures are retried; precondition and
// validation failures are terminal.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeCacheUnavailable:
		return 3
	case ErrCodeDatabaseInsertFailed, ErrCodeImportValidatorFailed:
		return 2
	default:
		return 0
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewEmptyCSVFileError creates the non-retryable empty-input classification error.
func NewEmptyCSVFileError(fileName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyCSVFile,
		Message:   "file has no data rows",
		Details:   fmt.Sprintf("fileName: %s", fileName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisNotFoundError signals a confirmation shown without cached data.
func NewAnalysisNotFoundError(analysisID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisNotFound,
		Message:   "no cached analysis for confirmed action",
		Details:   fmt.Sprintf("analysisId: %s", analysisID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportRejectedError wraps a validator rejection of an import.
func NewImportRejectedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportRejected,
		Message:   "import validator rejected the file",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportValidatorFailedError creates a retryable remote validator error.
func NewImportValidatorFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportValidatorFailed,
		Message:   "import validator unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateImportError signals that an identical import already exists.
func NewDuplicateImportError(idempotencyKey string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateImport,
		Message:   "this file was already imported",
		Details:   fmt.Sprintf("idempotencyKey: %s", idempotencyKey),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoPlanningColumnError signals a tenant without a default planning column.
func NewNoPlanningColumnError(tenantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoPlanningColumn,
		Message:   "no planning column configured for this workspace",
		Details:   fmt.Sprintf("tenantId: %s", tenantID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "database insert failed",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContentGenerationFailedError wraps a generation service failure.
func NewContentGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContentGenerationFailed,
		Message:   "content generation service failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedActionError reports a dispatch on a type without a handler.
func NewUnsupportedActionError(actionType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedAction,
		Message:   "unsupported action",
		Details:   fmt.Sprintf("actionType: %s", actionType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "analysis cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
