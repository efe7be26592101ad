// internal/workers/assistant/analyze-csv/handler.go
package analyzecsv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const TaskType = "analyze-csv"

// Redis key prefixes shared with execute-action.
const (
	CacheKeyAnalysis = "analysis:csv:"
	CacheKeyContent  = "analysis:csv:content:"
)

type Handler struct {
	config      *Config
	keywords    *KeywordTable
	redisClient *redis.Client
	logger      logger.Logger
}

func NewHandler(config *Config, keywords *KeywordTable, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		keywords:    keywords,
		redisClient: redisClient,
		logger:      log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		// The empty-input error is the one classification failure callers
		// must see as actionable instead of a degraded result.
		h.failJob(client, job, string(commonerrors.ErrCodeEmptyCSVFile), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// Execute analyzes the file and caches the result plus the raw content for
// the executor under the returned analysis id.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	analysis, err := h.Analyze(input.FileName, input.Content)
	if err != nil {
		return nil, err
	}

	analysisID := uuid.New().String()
	payload, _ := json.Marshal(analysis)
	if err := h.redisClient.Set(ctx, CacheKeyAnalysis+analysisID, payload, h.config.CacheTTL).Err(); err != nil {
		return nil, commonerrors.NewCacheUnavailableError(err)
	}
	if err := h.redisClient.Set(ctx, CacheKeyContent+analysisID, input.Content, h.config.CacheTTL).Err(); err != nil {
		return nil, commonerrors.NewCacheUnavailableError(err)
	}

	h.logger.Info("csv analyzed", map[string]interface{}{
		"analysisId": analysisID,
		"fileName":   input.FileName,
		"platform":   string(analysis.Platform),
		"confidence": analysis.Confidence,
		"totalRows":  analysis.Preview.TotalRows,
	})

	return &Output{AnalysisID: analysisID, Analysis: *analysis}, nil
}

// Analyze is the pure classification core: filename short-circuit first,
// then header scoring with a saturating confidence curve.
func (h *Handler) Analyze(fileName, content string) (*models.TabularAnalysisResult, error) {
	lines := splitLines(content)
	if len(lines) < 2 {
		return nil, commonerrors.NewEmptyCSVFileError(fileName)
	}

	columns := parseLine(lines[0])
	dataLines := lines[1:]

	sampleCount := len(dataLines)
	if sampleCount > h.config.MaxSampleRows {
		sampleCount = h.config.MaxSampleRows
	}
	sampleData := make([]map[string]string, 0, sampleCount)
	for _, line := range dataLines[:sampleCount] {
		fields := parseLine(line)
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		sampleData = append(sampleData, row)
	}

	platform, confidence := h.classify(fileName, columns)

	preview := models.TabularPreview{
		TotalRows:       len(dataLines),
		Columns:         columns,
		SampleData:      sampleData,
		MetricsDetected: h.metricsIn(platform, columns),
		DateRange:       h.sampleDateRange(columns, sampleData),
	}

	return &models.TabularAnalysisResult{
		Platform:   platform,
		Confidence: confidence,
		Preview:    preview,
	}, nil
}

func (h *Handler) classify(fileName string, columns []string) (models.PlatformType, float64) {
	lowerName := strings.ToLower(fileName)
	for _, platform := range models.PlatformPriority {
		for _, token := range h.keywords.filenameTokens[platform] {
			if strings.Contains(lowerName, token) {
				return platform, 0.9
			}
		}
	}

	best := models.PlatformUnknown
	bestScore := 0
	for _, platform := range models.PlatformPriority {
		score := len(h.metricsIn(platform, columns))
		// Strict greater-than keeps the first platform in priority
		// order on ties.
		if score > bestScore {
			best = platform
			bestScore = score
		}
	}

	if bestScore == 0 {
		return models.PlatformUnknown, 0.3
	}

	confidence := 0.5 + 0.1*float64(bestScore)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best, confidence
}

// metricsIn returns the platform keywords present among the headers,
// case-insensitive substring match.
func (h *Handler) metricsIn(platform models.PlatformType, columns []string) []string {
	lowered := make([]string, len(columns))
	for i, col := range columns {
		lowered[i] = strings.ToLower(col)
	}

	found := []string{}
	for _, keyword := range h.keywords.metricKeywords[platform] {
		for _, col := range lowered {
			if strings.Contains(col, keyword) {
				found = append(found, keyword)
				break
			}
		}
	}
	return found
}

// sampleDateRange reports the first and last date values among the sampled
// rows. It is a sample range, not a scan of the whole file.
func (h *Handler) sampleDateRange(columns []string, sampleData []map[string]string) *models.DateRange {
	dateCol := ""
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, marker := range h.keywords.dateHeaders {
			if strings.Contains(lower, marker) {
				dateCol = col
				break
			}
		}
		if dateCol != "" {
			break
		}
	}
	if dateCol == "" || len(sampleData) == 0 {
		return nil
	}

	return &models.DateRange{
		Start: sampleData[0][dateCol],
		End:   sampleData[len(sampleData)-1][dateCol],
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, message string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": errorCode,
		"error":     message,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(errorCode + ": " + message).
		Send(context.Background())
}
