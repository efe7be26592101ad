// internal/workers/assistant/detect-action/handler_test.go
package detectaction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		GenAIBaseURL:        "http://localhost:0",
		Timeout:             2 * time.Second,
		MaxRetries:          0,
		EscalationThreshold: 0.8,
	}
}

func newTestHandler(t *testing.T, cfg *Config) *Handler {
	t.Helper()
	return NewHandler(cfg, DefaultPatterns(), logger.NewTestLogger(t))
}

func detect(t *testing.T, h *Handler, input *Input) models.DetectedAction {
	t.Helper()
	out := h.Execute(context.Background(), input)
	require.NotNil(t, out)
	return out.Action
}

// ==========================
// Pattern Stage Tests
// ==========================

func TestExecute_GeneralChatDefault(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	messages := []string{
		"",
		"bom dia!",
		"qual a previsão do tempo?",
		"obrigado pela ajuda",
	}

	// The remote endpoint is unreachable; degradation must keep the
	// pattern result.
	for _, msg := range messages {
		action := detect(t, h, &Input{Message: msg})
		assert.Equal(t, models.ActionGeneralChat, action.Type, "message: %q", msg)
		assert.Equal(t, 1.0, action.Confidence, "message: %q", msg)
		assert.False(t, action.RequiresConfirmation)
	}
}

func TestExecute_DetectionIsTotal(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	inputs := []*Input{
		{},
		{Message: "\x00\xff garbled �"},
		{Message: "https://"},
		{Files: []models.FileMetadata{{}}},
	}

	for _, input := range inputs {
		action := detect(t, h, input)
		assert.GreaterOrEqual(t, action.Confidence, 0.0)
		assert.LessOrEqual(t, action.Confidence, 1.0)
		assert.NotEmpty(t, action.Type)
	}
}

func TestExecute_TabularAttachmentWinsOverText(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "cria um post sobre o lançamento",
		Files:   []models.FileMetadata{{Name: "metricas_marco.csv", Type: "text/csv"}},
	})

	assert.Equal(t, models.ActionUploadMetrics, action.Type)
	assert.Equal(t, 0.9, action.Confidence)
	assert.True(t, action.RequiresConfirmation)
	assert.Equal(t, "metricas_marco.csv", action.Params["fileName"])
}

func TestExecute_ScenarioA_CreateContentWithParams(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "crie um carrossel sobre produtividade para a empresa XYZ em 10/05",
	})

	assert.Equal(t, models.ActionCreateContent, action.Type)
	assert.Equal(t, 0.8, action.Confidence)
	assert.False(t, action.RequiresConfirmation)
	assert.Equal(t, "carousel", action.Params["format"])
	assert.Equal(t, "XYZ", action.Params["client"])
	assert.Equal(t, "10/05", action.Params["date"])
}

func TestExecute_ScenarioB_URLToLibrary(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "salva essa imagem https://instagram.com/p/abc na biblioteca",
	})

	assert.Equal(t, models.ActionUploadToLibrary, action.Type)
	assert.Equal(t, 0.85, action.Confidence)
	assert.True(t, action.RequiresConfirmation)
	assert.Equal(t, "https://instagram.com/p/abc", action.Params["url"])
}

func TestExecute_URLToReferences(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "adiciona https://example.com/post às referências",
	})

	assert.Equal(t, models.ActionUploadToReferences, action.Type)
	assert.Equal(t, 0.85, action.Confidence)
	assert.True(t, action.RequiresConfirmation)
	assert.Equal(t, "https://example.com/post", action.Params["url"])
}

func TestExecute_BareURLIsOnlyWorthInspecting(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "olha isso https://example.com/artigo.",
	})

	assert.Equal(t, models.ActionAnalyzeURL, action.Type)
	assert.Equal(t, 0.7, action.Confidence)
	assert.False(t, action.RequiresConfirmation)
	assert.Equal(t, "https://example.com/artigo", action.Params["url"], "trailing punctuation is trimmed")
}

func TestExecute_PlanningCardPattern(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	action := detect(t, h, &Input{
		Message: "cria uma pauta sobre lançamento para @maria amanhã",
	})

	assert.Equal(t, models.ActionCreatePlanningCard, action.Type)
	assert.Equal(t, 0.8, action.Confidence)
	assert.True(t, action.RequiresConfirmation)
	assert.Equal(t, "maria", action.Params["assignee"])
	assert.Equal(t, "amanhã", action.Params["date"])
}

func TestRequiresConfirmation_DependsOnlyOnType(t *testing.T) {
	h := newTestHandler(t, createTestConfig())

	// Same type reached at two different confidences: via pattern match
	// (0.8) and via file attachment (0.9).
	byPattern := detect(t, h, &Input{Message: "quero importar métricas do instagram"})
	byFile := detect(t, h, &Input{Files: []models.FileMetadata{{Name: "dados.csv"}}})

	require.Equal(t, models.ActionUploadMetrics, byPattern.Type)
	require.Equal(t, models.ActionUploadMetrics, byFile.Type)
	assert.NotEqual(t, byPattern.Confidence, byFile.Confidence)
	assert.Equal(t, byPattern.RequiresConfirmation, byFile.RequiresConfirmation)
}

// ==========================
// Escalation Stage Tests
// ==========================

func TestExecute_EscalatesBelowThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/api/ai/detect-action", r.URL.Path)
		// Attachment metadata only; content must never travel.
		if files, ok := req["fileMetadata"].([]interface{}); ok {
			for _, f := range files {
				meta := f.(map[string]interface{})
				assert.NotContains(t, meta, "content")
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"actionType": "create_content",
			"confidence": 0.92,
			"extractedParams": map[string]string{
				"idea": "post sobre produtividade",
			},
		})
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	// Bare URL gives a 0.7 pattern result, which is below threshold.
	action := detect(t, h, &Input{Message: "veja https://example.com/ideia"})

	assert.Equal(t, models.ActionCreateContent, action.Type)
	assert.Equal(t, 0.92, action.Confidence)
	assert.False(t, action.RequiresConfirmation)
	assert.Equal(t, "post sobre produtividade", action.Params["idea"])
}

func TestExecute_PatternResultStandsWhenRemoteLessConfident(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"actionType": "upload_to_library",
			"confidence": 0.5,
		})
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	action := detect(t, h, &Input{Message: "veja https://example.com/ideia"})

	assert.Equal(t, models.ActionAnalyzeURL, action.Type)
	assert.Equal(t, 0.7, action.Confidence)
}

func TestExecute_RemoteEqualConfidenceKeepsPatternResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"actionType": "create_content",
			"confidence": 0.7,
		})
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	action := detect(t, h, &Input{Message: "veja https://example.com/ideia"})

	// Strictly greater is required for the fallback to win.
	assert.Equal(t, models.ActionAnalyzeURL, action.Type)
}

func TestExecute_RemoteFailureDegradesGracefully(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	action := detect(t, h, &Input{Message: "veja https://example.com/ideia"})

	assert.Equal(t, models.ActionAnalyzeURL, action.Type)
	assert.Equal(t, 0.7, action.Confidence)
}

func TestExecute_InvalidRemoteResponseIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown action type must fail schema validation, not leak
		// into the pipeline.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"actionType": "drop_all_tables",
			"confidence": 0.99,
		})
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	action := detect(t, h, &Input{Message: "veja https://example.com/ideia"})

	assert.Equal(t, models.ActionAnalyzeURL, action.Type)
}

func TestExecute_HighConfidencePatternSkipsRemote(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := createTestConfig()
	cfg.GenAIBaseURL = server.URL
	h := newTestHandler(t, cfg)

	action := detect(t, h, &Input{Message: "crie um post sobre café"})

	assert.Equal(t, models.ActionCreateContent, action.Type)
	assert.Equal(t, 0.8, action.Confidence)
	assert.False(t, called, "0.8 meets the threshold; no escalation expected")
}

// ==========================
// Stage Reporting Tests
// ==========================

func TestClassify_ReportsWinningStage(t *testing.T) {
	pattern := func(confidence float64) func(context.Context, *Input) models.DetectedAction {
		return func(context.Context, *Input) models.DetectedAction {
			return models.DetectedAction{Type: models.ActionAnalyzeURL, Confidence: confidence}
		}
	}
	remote := func(confidence float64, err error) func(context.Context, *Input) (models.DetectedAction, error) {
		return func(context.Context, *Input) (models.DetectedAction, error) {
			return models.DetectedAction{Type: models.ActionCreateContent, Confidence: confidence}, err
		}
	}

	tests := []struct {
		name      string
		strategy  Strategy
		wantStage Stage
		wantErr   bool
	}{
		{
			name:      "confident pattern never escalates",
			strategy:  Strategy{Primary: pattern(0.9), Fallback: remote(0.99, nil)},
			wantStage: StagePattern,
		},
		{
			name:      "remote win is a remote result",
			strategy:  Strategy{Primary: pattern(0.7), Fallback: remote(0.92, nil)},
			wantStage: StageRemote,
		},
		{
			name:      "consulted but losing remote stays a pattern result",
			strategy:  Strategy{Primary: pattern(0.7), Fallback: remote(0.6, nil)},
			wantStage: StagePattern,
		},
		{
			name:      "remote failure keeps the pattern result",
			strategy:  Strategy{Primary: pattern(0.7), Fallback: remote(0, ErrClassifierFailed)},
			wantStage: StagePattern,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.strategy.Threshold = 0.8
			tt.strategy.Merge = PreferMoreConfident

			result, stage, err := tt.strategy.Classify(context.Background(), &Input{})
			assert.Equal(t, tt.wantStage, stage)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if stage == StageRemote {
				assert.Equal(t, models.ActionCreateContent, result.Type)
			} else {
				assert.Equal(t, models.ActionAnalyzeURL, result.Type)
			}
		})
	}
}
