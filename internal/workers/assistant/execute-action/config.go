// internal/workers/assistant/execute-action/config.go
package executeaction

import "time"

type Config struct {
	ImportValidatorURL string
	GeneratorURL       string
	Timeout            time.Duration
	ProgressTTL        time.Duration

	// NotifyEmail receives an import summary when SES is wired; empty
	// disables the notification path.
	NotifyEmail string
	FromEmail   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		ProgressTTL: time.Hour,
	}
}
