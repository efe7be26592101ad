// internal/models/action_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresConfirmation_FixedSet(t *testing.T) {
	confirmable := []ActionType{
		ActionUploadMetrics,
		ActionCreatePlanningCard,
		ActionUploadToLibrary,
		ActionUploadToReferences,
	}
	for _, at := range confirmable {
		assert.True(t, RequiresConfirmation(at), "%s", at)
	}

	for _, at := range []ActionType{ActionGeneralChat, ActionAnalyzeURL, ActionCreateContent} {
		assert.False(t, RequiresConfirmation(at), "%s", at)
	}
}

func TestRequiresConfirmation_UnknownType(t *testing.T) {
	assert.False(t, RequiresConfirmation(ActionType("send_fax")))
}

func TestAllActionTypes_CoversConfirmationTable(t *testing.T) {
	known := make(map[ActionType]bool, len(AllActionTypes))
	for _, at := range AllActionTypes {
		known[at] = true
	}

	for at := range confirmationRequired {
		assert.True(t, known[at], "confirmation table references unknown type %s", at)
	}
}
