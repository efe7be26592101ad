// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRetryCount(t *testing.T) {
	// Transient infrastructure failures retry; precondition and
	// validation failures are terminal.
	assert.Equal(t, 3, GetRetryCount(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeCacheUnavailable))
	assert.Equal(t, 2, GetRetryCount(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeImportValidatorFailed))

	for _, code := range []ErrorCode{
		ErrCodeEmptyCSVFile,
		ErrCodeAnalysisNotFound,
		ErrCodeNoPlanningColumn,
		ErrCodeDuplicateImport,
		ErrCodeUnsupportedAction,
	} {
		assert.Equal(t, 0, GetRetryCount(code), "%s", code)
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewImportValidatorFailedError(fmt.Errorf("connection refused"))
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, string(ErrCodeImportValidatorFailed), bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 2, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, bpmnErr.Code, vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
}

func TestNewEmptyCSVFileError(t *testing.T) {
	err := NewEmptyCSVFileError("dados.csv")

	assert.Equal(t, ErrCodeEmptyCSVFile, err.Code)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Details, "dados.csv")
	assert.Contains(t, err.Error(), "EMPTY_CSV_FILE")
}
