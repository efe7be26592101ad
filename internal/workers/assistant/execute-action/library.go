// internal/workers/assistant/execute-action/library.go
package executeaction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"
	analyzeurl "assistant-workers/internal/workers/assistant/analyze-url"
)

func (h *Handler) executeUploadToLibrary(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	return h.saveLink(ctx, input, progress, "content_library")
}

func (h *Handler) executeUploadToReferences(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	return h.saveLink(ctx, input, progress, "reference_library")
}

// saveLink is the shared insert path for both link destinations. The
// cached LinkAnalysisResult is preferred over raw params; params only
// fill the gaps when the analysis expired or was never made.
func (h *Handler) saveLink(ctx context.Context, input *Input, progress *progressTracker, table string) (*models.ExecutionResult, error) {
	params := input.Action.Action.Params

	analysis := h.loadLinkAnalysis(ctx, input.Action.LinkAnalysisID)
	if analysis == nil {
		analysis = &models.LinkAnalysisResult{
			Type:  models.LinkArticle,
			URL:   params["url"],
			Title: params["title"],
		}
	}
	if analysis.URL == "" {
		return &models.ExecutionResult{Success: false, Message: "no url to save"}, nil
	}
	progress.Report(ctx, 40)

	itemID := uuid.New().String()
	_, err := h.db.ExecContext(ctx,
		fmt.Sprintf(
			`INSERT INTO %s
			 (id, tenant_id, workspace_id, url, title, description, link_type, thumbnail_url, author, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
			table,
		),
		itemID,
		input.TenantID,
		input.WorkspaceID,
		analysis.URL,
		nullable(analysis.Title),
		nullable(analysis.Description),
		string(analysis.Type),
		nullable(analysis.ThumbnailURL),
		nullable(analysis.Author),
	)
	if err != nil {
		return nil, commonerrors.NewDatabaseInsertFailedError(table, err)
	}
	progress.Report(ctx, 100)

	return &models.ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("link saved to %s", table),
		Data: map[string]interface{}{
			"itemId": itemID,
			"url":    analysis.URL,
			"title":  analysis.Title,
		},
	}, nil
}

// loadLinkAnalysis is best-effort: any miss or decode problem falls back
// to params, so it returns nil instead of an error.
func (h *Handler) loadLinkAnalysis(ctx context.Context, linkAnalysisID string) *models.LinkAnalysisResult {
	if linkAnalysisID == "" {
		return nil
	}

	payload, err := h.redisClient.Get(ctx, analyzeurl.CacheKeyAnalysis+linkAnalysisID).Result()
	if err != nil {
		h.logger.Warn("link analysis not in cache, using params", map[string]interface{}{
			"linkAnalysisId": linkAnalysisID,
		})
		return nil
	}

	var analysis models.LinkAnalysisResult
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil
	}
	return &analysis
}
