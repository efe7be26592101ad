// internal/workers/assistant/analyze-url/handler.go
package analyzeurl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const TaskType = "analyze-url"

// CacheKeyAnalysis is shared with execute-action.
const CacheKeyAnalysis = "analysis:url:"

// Category detection by fixed substring priority: video hosts first, then
// social networks, then newsletter platforms, else article.
var (
	videoDomains      = []string{"youtube.com", "youtu.be", "vimeo.com"}
	socialDomains     = []string{"instagram.com", "tiktok.com", "twitter.com", "x.com", "linkedin.com", "facebook.com"}
	newsletterDomains = []string{"substack.com", "beehiiv.com", "mailchimp.com"}

	youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{6,11})`)
)

type Handler struct {
	config      *Config
	client      *http.Client
	redisClient *redis.Client
	logger      logger.Logger
}

func NewHandler(config *Config, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		client:      &http.Client{Timeout: config.Timeout},
		redisClient: redisClient,
		logger:      log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle never fails the job: extractor failures degrade to a minimal
// result so callers can always render something.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unparseable input", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		input = Input{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.Execute(ctx, &input)
	h.completeJob(client, job, output)
}

// Execute classifies and extracts the URL, caching the result for the
// executor. It always returns a value.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	analysis := h.Analyze(ctx, input.URL)

	linkAnalysisID := uuid.New().String()
	payload, _ := json.Marshal(analysis)
	if err := h.redisClient.Set(ctx, CacheKeyAnalysis+linkAnalysisID, payload, h.config.CacheTTL).Err(); err != nil {
		// Cache loss only costs the executor its preview; still report
		// the analysis.
		h.logger.Warn("failed to cache link analysis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	h.logger.Info("url analyzed", map[string]interface{}{
		"linkAnalysisId": linkAnalysisID,
		"category":       string(analysis.Type),
		"degraded":       analysis.Metadata["degraded"],
	})

	return &Output{LinkAnalysisID: linkAnalysisID, Analysis: analysis}
}

// Analyze never returns an error: remote failures synthesize a degraded
// result with at least a type and a hostname title.
func (h *Handler) Analyze(ctx context.Context, rawURL string) models.LinkAnalysisResult {
	category := Categorize(rawURL)

	extractorURL := h.config.ContentExtractorURL
	if category == models.LinkYouTube {
		extractorURL = h.config.VideoExtractorURL
	}

	extracted, err := h.extract(ctx, extractorURL, rawURL)
	if err != nil {
		h.logger.Warn("extractor failed, degrading", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeExtractionDegraded),
			"category":  string(category),
			"error":     err.Error(),
		})
		return h.degraded(category, rawURL)
	}

	result := models.LinkAnalysisResult{
		Type:         category,
		URL:          rawURL,
		Title:        extracted.Title,
		Description:  extracted.Description,
		Content:      extracted.Content,
		ThumbnailURL: extracted.ThumbnailURL,
		Author:       extracted.Author,
		PublishedAt:  extracted.PublishedAt,
		Metadata:     extracted.Metadata,
	}
	if result.Title == "" {
		result.Title = hostnameOf(rawURL)
	}
	if result.ThumbnailURL == "" && category == models.LinkYouTube {
		result.ThumbnailURL = youtubeThumbnail(rawURL)
	}
	return result
}

// Categorize maps a URL onto its link category by substring priority.
func Categorize(rawURL string) models.LinkCategory {
	lower := strings.ToLower(rawURL)
	for _, domain := range videoDomains {
		if strings.Contains(lower, domain) {
			return models.LinkYouTube
		}
	}
	for _, domain := range socialDomains {
		if strings.Contains(lower, domain) {
			return models.LinkSocial
		}
	}
	for _, domain := range newsletterDomains {
		if strings.Contains(lower, domain) {
			return models.LinkNewsletter
		}
	}
	return models.LinkArticle
}

func (h *Handler) extract(ctx context.Context, extractorURL, rawURL string) (*extractorResponse, error) {
	if extractorURL == "" {
		return nil, fmt.Errorf("no extractor configured")
	}

	body, _ := json.Marshal(map[string]string{"url": rawURL})
	req, err := http.NewRequestWithContext(ctx, "POST", extractorURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor status %d", resp.StatusCode)
	}

	var extracted extractorResponse
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}
	return &extracted, nil
}

// degraded synthesizes the minimal always-available result: hostname as
// title and, for video links, the predictable ID-based thumbnail.
func (h *Handler) degraded(category models.LinkCategory, rawURL string) models.LinkAnalysisResult {
	result := models.LinkAnalysisResult{
		Type:     category,
		URL:      rawURL,
		Title:    hostnameOf(rawURL),
		Metadata: map[string]string{"degraded": "true"},
	}
	if category == models.LinkYouTube {
		result.ThumbnailURL = youtubeThumbnail(rawURL)
	}
	return result
}

func hostnameOf(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	return rawURL
}

func youtubeThumbnail(rawURL string) string {
	m := youtubeIDPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", m[1])
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
