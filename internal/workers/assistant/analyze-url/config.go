// internal/workers/assistant/analyze-url/config.go
package analyzeurl

import "time"

type Config struct {
	VideoExtractorURL   string
	ContentExtractorURL string
	Timeout             time.Duration
	CacheTTL            time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		CacheTTL: 24 * time.Hour,
	}
}
