// internal/workers/assistant/execute-action/import.go
package executeaction

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"
	analyzecsv "assistant-workers/internal/workers/assistant/analyze-csv"
)

// emailSender is the slice of the SES client the import flow needs;
// tests substitute a capture.
type emailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// executeImport runs the confirmed metrics import: load the cached
// analysis, dedupe, validate remotely, write the immutable audit row.
// The audit insert happens before success is acknowledged; the unique
// idempotency key makes a retry after a partial failure converge instead
// of importing twice.
func (h *Handler) executeImport(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	analysisID := input.Action.AnalysisID

	analysis, content, err := h.loadAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	progress.Report(ctx, 20)

	fileName := importFileName(input)
	idempotencyKey := computeIdempotencyKey(input.TenantID, fileName, analysis.Platform)

	duplicate, err := h.importExists(ctx, idempotencyKey)
	if err != nil {
		return nil, commonerrors.NewDatabaseInsertFailedError("metric_imports", err)
	}
	if duplicate {
		h.logger.Warn("duplicate import skipped", map[string]interface{}{
			"errorCode":      string(commonerrors.ErrCodeDuplicateImport),
			"idempotencyKey": idempotencyKey,
		})
		return &models.ExecutionResult{
			Success: false,
			Message: "this file was already imported",
			Data:    map[string]interface{}{"idempotencyKey": idempotencyKey},
		}, nil
	}
	progress.Report(ctx, 40)

	if rejection, err := h.validateImport(ctx, fileName, analysis.Platform, content); err != nil {
		return nil, err
	} else if rejection != "" {
		h.logger.Warn("import rejected", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeImportRejected),
			"fileName":  fileName,
			"reason":    rejection,
		})
		return &models.ExecutionResult{Success: false, Message: rejection}, nil
	}
	progress.Report(ctx, 80)

	importID, err := h.insertImportRecord(ctx, input, analysis, fileName, idempotencyKey)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// A previous attempt got the row in before failing; the
			// import already happened under the same idempotency key.
			importID = h.lookupImportID(ctx, idempotencyKey)
			h.logger.Info("import record already present, converging", map[string]interface{}{
				"idempotencyKey": idempotencyKey,
				"importId":       importID,
			})
		} else {
			return nil, commonerrors.NewDatabaseInsertFailedError("metric_imports", err)
		}
	}

	h.notifyImport(ctx, input, analysis, fileName)
	progress.Report(ctx, 100)

	data := map[string]interface{}{
		"platform":       string(analysis.Platform),
		"rowCount":       analysis.Preview.TotalRows,
		"idempotencyKey": idempotencyKey,
	}
	if importID != "" {
		data["importId"] = importID
	}

	return &models.ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("imported %d rows from %s", analysis.Preview.TotalRows, fileName),
		Data:    data,
	}, nil
}

// lookupImportID resolves the id of the audit row a racing attempt already
// inserted. Best-effort: the import itself succeeded either way.
func (h *Handler) lookupImportID(ctx context.Context, idempotencyKey string) string {
	var importID string
	err := h.db.QueryRowContext(ctx,
		"SELECT id FROM metric_imports WHERE idempotency_key = $1",
		idempotencyKey,
	).Scan(&importID)
	if err != nil {
		h.logger.Warn("failed to resolve existing import id", map[string]interface{}{
			"idempotencyKey": idempotencyKey,
			"error":          err.Error(),
		})
		return ""
	}
	return importID
}

// loadAnalysis reads the cached classification and raw content written by
// analyze-csv. A confirmed import without both is a hard failure; the
// remote validator is never contacted in that case.
func (h *Handler) loadAnalysis(ctx context.Context, analysisID string) (*models.TabularAnalysisResult, string, error) {
	if analysisID == "" {
		return nil, "", commonerrors.NewAnalysisNotFoundError("")
	}

	payload, err := h.redisClient.Get(ctx, analyzecsv.CacheKeyAnalysis+analysisID).Result()
	if err == redis.Nil {
		return nil, "", commonerrors.NewAnalysisNotFoundError(analysisID)
	}
	if err != nil {
		return nil, "", commonerrors.NewCacheUnavailableError(err)
	}

	var analysis models.TabularAnalysisResult
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, "", commonerrors.NewAnalysisNotFoundError(analysisID)
	}

	content, err := h.redisClient.Get(ctx, analyzecsv.CacheKeyContent+analysisID).Result()
	if err == redis.Nil {
		return nil, "", commonerrors.NewAnalysisNotFoundError(analysisID)
	}
	if err != nil {
		return nil, "", commonerrors.NewCacheUnavailableError(err)
	}

	return &analysis, content, nil
}

func importFileName(input *Input) string {
	if len(input.Action.Files) > 0 {
		return input.Action.Files[0].Name
	}
	return input.Action.Action.Params["fileName"]
}

func computeIdempotencyKey(tenantID, fileName string, platform models.PlatformType) string {
	sum := sha256.Sum256([]byte(tenantID + "|" + fileName + "|" + string(platform)))
	return hex.EncodeToString(sum[:])
}

func (h *Handler) importExists(ctx context.Context, idempotencyKey string) (bool, error) {
	var exists bool
	err := h.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM metric_imports WHERE idempotency_key = $1)",
		idempotencyKey,
	).Scan(&exists)
	return exists, err
}

// validateImport posts the raw file to the remote validator. It returns a
// non-empty rejection reason when the validator refuses the file, and an
// error only when the validator itself is unreachable.
func (h *Handler) validateImport(ctx context.Context, fileName string, platform models.PlatformType, content string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"fileName": fileName,
		"platform": string(platform),
		"content":  content,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", h.config.ImportValidatorURL, bytes.NewBuffer(body))
	if err != nil {
		return "", commonerrors.NewImportValidatorFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", commonerrors.NewImportValidatorFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", commonerrors.NewImportValidatorFailedError(fmt.Errorf("validator status %d", resp.StatusCode))
	}

	var verdict validatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return "", commonerrors.NewImportValidatorFailedError(fmt.Errorf("decode validator response: %w", err))
	}

	if !verdict.Accepted {
		reason := verdict.Reason
		if reason == "" {
			reason = "import validator rejected the file"
		}
		return reason, nil
	}
	return "", nil
}

func (h *Handler) insertImportRecord(ctx context.Context, input *Input, analysis *models.TabularAnalysisResult, fileName, idempotencyKey string) (string, error) {
	importID := uuid.New().String()

	var dateStart, dateEnd string
	if analysis.Preview.DateRange != nil {
		dateStart = analysis.Preview.DateRange.Start
		dateEnd = analysis.Preview.DateRange.End
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO metric_imports
		 (id, tenant_id, workspace_id, platform, file_name, row_count, columns, date_start, date_end, idempotency_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
		importID,
		input.TenantID,
		input.WorkspaceID,
		string(analysis.Platform),
		fileName,
		analysis.Preview.TotalRows,
		strings.Join(analysis.Preview.Columns, ","),
		dateStart,
		dateEnd,
		idempotencyKey,
	)
	if err != nil {
		return "", err
	}
	return importID, nil
}

// notifyImport sends the summary email. Notification is best-effort: a
// failure here never fails the import.
func (h *Handler) notifyImport(ctx context.Context, input *Input, analysis *models.TabularAnalysisResult, fileName string) {
	if h.sesClient == nil || h.config.NotifyEmail == "" {
		return
	}

	subject := fmt.Sprintf("Metrics imported: %s", fileName)
	bodyText := fmt.Sprintf(
		"Imported %d rows from %s (%s) for tenant %s.",
		analysis.Preview.TotalRows, fileName, analysis.Platform, input.TenantID,
	)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(h.config.FromEmail),
		Destination: &types.Destination{ToAddresses: []string{h.config.NotifyEmail}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(bodyText)}},
		},
	})
	if err != nil {
		h.logger.Warn("import notification failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
