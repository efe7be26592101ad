// internal/models/tabular.go
package models

// PlatformType identifies the external platform a metrics export came from.
type PlatformType string

const (
	PlatformInstagram  PlatformType = "instagram"
	PlatformYouTube    PlatformType = "youtube"
	PlatformNewsletter PlatformType = "newsletter"
	PlatformTwitter    PlatformType = "twitter"
	PlatformLinkedIn   PlatformType = "linkedin"
	PlatformUnknown    PlatformType = "unknown"
)

// PlatformPriority is the tie-break order for header scoring: when two
// platforms match the same number of headers, the earlier one wins.
var PlatformPriority = []PlatformType{
	PlatformInstagram,
	PlatformYouTube,
	PlatformNewsletter,
	PlatformTwitter,
	PlatformLinkedIn,
}

// DateRange holds the first and last date values seen in the sampled rows.
// It is a sample range over at most five data rows, not a min/max scan of
// the whole file.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TabularPreview summarizes the parsed file for confirmation dialogs.
type TabularPreview struct {
	TotalRows       int                 `json:"totalRows"`
	DateRange       *DateRange          `json:"dateRange,omitempty"`
	Columns         []string            `json:"columns"`
	SampleData      []map[string]string `json:"sampleData"`
	MetricsDetected []string            `json:"metricsDetected"`
}

// TabularAnalysisResult is produced once per analyzed file and read-only
// thereafter.
type TabularAnalysisResult struct {
	Platform   PlatformType   `json:"platform"`
	Confidence float64        `json:"confidence"`
	Preview    TabularPreview `json:"preview"`
}
