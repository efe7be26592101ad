// internal/workers/assistant/analyze-csv/config.go
package analyzecsv

import "time"

type Config struct {
	Timeout time.Duration
	// CacheTTL bounds how long a preview waits for user confirmation.
	CacheTTL time.Duration
	// MaxSampleRows caps how many data rows feed the preview and the
	// sampled date range.
	MaxSampleRows int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		CacheTTL:      24 * time.Hour,
		MaxSampleRows: 5,
	}
}
