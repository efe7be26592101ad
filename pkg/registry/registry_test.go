// pkg/registry/registry_test.go
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"
	analyzecsv "assistant-workers/internal/workers/assistant/analyze-csv"
	analyzeurl "assistant-workers/internal/workers/assistant/analyze-url"
	detectaction "assistant-workers/internal/workers/assistant/detect-action"
	executeaction "assistant-workers/internal/workers/assistant/execute-action"
)

func loadTestRegistry(t *testing.T) *ActivityRegistry {
	reg, err := LoadRegistry("../../configs/registry.json")
	require.NoError(t, err)
	return reg
}

func TestRegistry_CoversAllTaskTypes(t *testing.T) {
	reg := loadTestRegistry(t)

	assert.ElementsMatch(t, []string{
		detectaction.TaskType,
		analyzecsv.TaskType,
		analyzeurl.TaskType,
		executeaction.TaskType,
	}, reg.TaskTypes())
}

func TestRegistry_ActionTypeEnumMatchesModels(t *testing.T) {
	reg := loadTestRegistry(t)

	activity, err := reg.FindByTaskType(detectaction.TaskType)
	require.NoError(t, err)

	action := activity.OutputSchema["properties"].(map[string]interface{})["action"].(map[string]interface{})
	enum := action["properties"].(map[string]interface{})["type"].(map[string]interface{})["enum"].([]interface{})

	var registered []string
	for _, v := range enum {
		registered = append(registered, v.(string))
	}

	var expected []string
	for _, at := range models.AllActionTypes {
		expected = append(expected, string(at))
	}
	assert.Equal(t, expected, registered)
}

func TestRegistry_ClassifierErrorContract(t *testing.T) {
	reg := loadTestRegistry(t)

	// analyze-csv is the only classifier allowed to fail a job, and only
	// with the empty-file code.
	csvActivity, err := reg.FindByTaskType(analyzecsv.TaskType)
	require.NoError(t, err)
	assert.Equal(t, []string{string(commonerrors.ErrCodeEmptyCSVFile)}, csvActivity.ErrorCodes)

	for _, taskType := range []string{detectaction.TaskType, analyzeurl.TaskType} {
		activity, err := reg.FindByTaskType(taskType)
		require.NoError(t, err)
		assert.Empty(t, activity.ErrorCodes, "%s never fails the job", taskType)
	}
}

func TestRegistry_UnknownTaskType(t *testing.T) {
	reg := loadTestRegistry(t)

	_, err := reg.FindByTaskType("send-fax")
	assert.Error(t, err)
}
