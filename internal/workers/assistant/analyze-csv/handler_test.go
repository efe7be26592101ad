// internal/workers/assistant/analyze-csv/handler_test.go
package analyzecsv

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:       2 * time.Second,
		CacheTTL:      time.Minute,
		MaxSampleRows: 5,
	}
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), DefaultKeywords(), setupRedis(t), logger.NewTestLogger(t))
}

// ==========================
// Classification Tests
// ==========================

func TestAnalyze_ScenarioC_FilenameShortCircuit(t *testing.T) {
	h := newTestHandler(t)

	// The header score would also favor instagram, but the filename wins
	// and pins confidence at 0.9.
	analysis, err := h.Analyze("relatorio_instagram_marco.csv", "date,reach,likes\n01/03,1200,300\n02/03,1500,410")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformInstagram, analysis.Platform)
	assert.Equal(t, 0.9, analysis.Confidence)
}

func TestAnalyze_FilenameBeatsContradictingHeaders(t *testing.T) {
	h := newTestHandler(t)

	analysis, err := h.Analyze("youtube_export.csv", "date,reach,likes\n01/03,1200,300")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformYouTube, analysis.Platform)
	assert.Equal(t, 0.9, analysis.Confidence)
}

func TestAnalyze_ScenarioD_HeaderScoring(t *testing.T) {
	h := newTestHandler(t)

	analysis, err := h.Analyze("dados.csv", "watch_time,subscribers,ctr\n120,4,0.05\n98,2,0.04")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformYouTube, analysis.Platform)
	// Three keyword matches: min(0.5 + 0.3, 0.95).
	assert.InDelta(t, 0.8, analysis.Confidence, 1e-9)
	assert.ElementsMatch(t, []string{"watch_time", "subscribers", "ctr"}, analysis.Preview.MetricsDetected)
}

func TestAnalyze_UnknownPlatform(t *testing.T) {
	h := newTestHandler(t)

	analysis, err := h.Analyze("dados.csv", "foo,bar,baz\n1,2,3")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformUnknown, analysis.Platform)
	assert.Equal(t, 0.3, analysis.Confidence)
	assert.Empty(t, analysis.Preview.MetricsDetected)
}

func TestAnalyze_ConfidenceMonotonicAndCapped(t *testing.T) {
	h := newTestHandler(t)

	headerSets := []string{
		"watch_time,a,b",
		"watch_time,subscribers,b",
		"watch_time,subscribers,ctr",
		"watch_time,subscribers,ctr,views",
		"watch_time,subscribers,ctr,views,average_view_duration",
		"watch_time,subscribers,ctr,views,average_view_duration,inscritos",
	}

	prev := 0.0
	for _, headers := range headerSets {
		analysis, err := h.Analyze("dados.csv", headers+"\n1,2,3,4,5,6")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, analysis.Confidence, prev, "headers: %s", headers)
		assert.LessOrEqual(t, analysis.Confidence, 0.95, "headers: %s", headers)
		prev = analysis.Confidence
	}
}

func TestAnalyze_TieResolvesToPriorityOrder(t *testing.T) {
	h := newTestHandler(t)

	// "likes" (instagram) and "views" (youtube) both score 1; instagram
	// comes first in the priority order.
	analysis, err := h.Analyze("dados.csv", "likes,views\n10,20")
	require.NoError(t, err)

	assert.Equal(t, models.PlatformInstagram, analysis.Platform)
}

// ==========================
// Input Edge Cases
// ==========================

func TestAnalyze_HeaderOnlyFileFails(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Analyze("dados.csv", "date,reach,likes")
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeEmptyCSVFile, stdErr.Code)
}

func TestAnalyze_WhitespaceOnlyFileFails(t *testing.T) {
	h := newTestHandler(t)

	for _, content := range []string{"", "   ", "\n\n\n", " \n \n"} {
		_, err := h.Analyze("dados.csv", content)
		assert.Error(t, err, "content: %q", content)
	}
}

// ==========================
// Parsing Tests
// ==========================

func TestParseLine_QuotedDelimiters(t *testing.T) {
	fields := parseLine(`"Silva, João";1200;"said ""hi"""`)
	assert.Equal(t, []string{"Silva, João", "1200", `said "hi"`}, fields)
}

func TestParseLine_SemicolonSeparated(t *testing.T) {
	fields := parseLine("data;alcance;curtidas")
	assert.Equal(t, []string{"data", "alcance", "curtidas"}, fields)
}

func TestAnalyze_SemicolonFileWithQuotedCommas(t *testing.T) {
	h := newTestHandler(t)

	content := "data;alcance;curtidas\n\"01/03, manhã\";1200;300\n02/03;1500;410"
	analysis, err := h.Analyze("export.csv", content)
	require.NoError(t, err)

	assert.Equal(t, []string{"data", "alcance", "curtidas"}, analysis.Preview.Columns)
	assert.Equal(t, 2, analysis.Preview.TotalRows)
	assert.Equal(t, "01/03, manhã", analysis.Preview.SampleData[0]["data"])
}

// ==========================
// Preview Tests
// ==========================

func TestAnalyze_SampledDateRange(t *testing.T) {
	h := newTestHandler(t)

	content := "date,reach\n01/03,1\n02/03,2\n03/03,3\n04/03,4\n05/03,5\n06/03,6\n07/03,7"
	analysis, err := h.Analyze("dados.csv", content)
	require.NoError(t, err)

	assert.Equal(t, 7, analysis.Preview.TotalRows)
	require.NotNil(t, analysis.Preview.DateRange)
	// The range covers only the five sampled rows, not the whole file.
	assert.Equal(t, "01/03", analysis.Preview.DateRange.Start)
	assert.Equal(t, "05/03", analysis.Preview.DateRange.End)
	assert.Len(t, analysis.Preview.SampleData, 5)
}

func TestAnalyze_NoDateColumn(t *testing.T) {
	h := newTestHandler(t)

	analysis, err := h.Analyze("dados.csv", "reach,likes\n1,2")
	require.NoError(t, err)
	assert.Nil(t, analysis.Preview.DateRange)
}

// ==========================
// Caching Tests
// ==========================

func TestExecute_CachesAnalysisAndContent(t *testing.T) {
	rdb := setupRedis(t)
	h := NewHandler(createTestConfig(), DefaultKeywords(), rdb, logger.NewTestLogger(t))

	content := "date,reach,likes\n01/03,1200,300"
	out, err := h.Execute(context.Background(), &Input{FileName: "relatorio_instagram.csv", Content: content})
	require.NoError(t, err)
	require.NotEmpty(t, out.AnalysisID)

	cached, err := rdb.Get(context.Background(), CacheKeyAnalysis+out.AnalysisID).Result()
	require.NoError(t, err)

	var analysis models.TabularAnalysisResult
	require.NoError(t, json.Unmarshal([]byte(cached), &analysis))
	assert.Equal(t, models.PlatformInstagram, analysis.Platform)

	rawContent, err := rdb.Get(context.Background(), CacheKeyContent+out.AnalysisID).Result()
	require.NoError(t, err)
	assert.Equal(t, content, rawContent)
}
