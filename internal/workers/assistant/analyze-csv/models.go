// internal/workers/assistant/analyze-csv/models.go
package analyzecsv

import "assistant-workers/internal/models"

type Input struct {
	FileName string `json:"fileName"`
	// Content is the raw file text; the upload surface inlines it.
	Content string `json:"content"`
}

type Output struct {
	// AnalysisID addresses the cached result (and raw content) in Redis
	// for the executor.
	AnalysisID string                       `json:"analysisId"`
	Analysis   models.TabularAnalysisResult `json:"analysis"`
}
