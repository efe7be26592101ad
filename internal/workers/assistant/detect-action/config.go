// internal/workers/assistant/detect-action/config.go
package detectaction

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int

	// EscalationThreshold is the pattern-stage confidence below which the
	// remote classifier is consulted.
	EscalationThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             30 * time.Second,
		MaxRetries:          2,
		EscalationThreshold: 0.8,
	}
}
