// internal/workers/assistant/analyze-url/models.go
package analyzeurl

import "assistant-workers/internal/models"

type Input struct {
	URL string `json:"url"`
}

type Output struct {
	// LinkAnalysisID addresses the cached result in Redis for the
	// executor.
	LinkAnalysisID string                    `json:"linkAnalysisId"`
	Analysis       models.LinkAnalysisResult `json:"analysis"`
}

// extractorResponse is the common shape both remote extractors return.
// Every field is optional; absent ones stay empty.
type extractorResponse struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Content      string            `json:"content"`
	ThumbnailURL string            `json:"thumbnailUrl"`
	Author       string            `json:"author"`
	PublishedAt  string            `json:"publishedAt"`
	Metadata     map[string]string `json:"metadata"`
}
