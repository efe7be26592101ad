// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          App                     `mapstructure:"app"`
	Camunda      Camunda                 `mapstructure:"camunda"`
	Database     Database                `mapstructure:"database"`
	Services     Services                `mapstructure:"services"`
	Integrations Integrations            `mapstructure:"integrations"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      Logging                 `mapstructure:"logging"`
}

type App struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type Camunda struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type Database struct {
	Postgres Postgres `mapstructure:"postgres"`
	Redis    Redis    `mapstructure:"redis"`
}

type Postgres struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p Postgres) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type Redis struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Services holds the endpoints of the remote collaborators: the generative
// classifier/generator, the link extractors and the metrics import validator.
type Services struct {
	GenAI           GenAI      `mapstructure:"genai"`
	Extractors      Extractors `mapstructure:"extractors"`
	ImportValidator Endpoint   `mapstructure:"import_validator"`
}

type GenAI struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type Extractors struct {
	VideoURL   string `mapstructure:"video_url"`
	ContentURL string `mapstructure:"content_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type Endpoint struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type Integrations struct {
	AWS AWS `mapstructure:"aws"`
}

type AWS struct {
	Region string `mapstructure:"region"`
	SES    SES    `mapstructure:"ses"`
}

type SES struct {
	Enabled   bool   `mapstructure:"enabled"`
	FromEmail string `mapstructure:"from_email"`
	// NotifyEmail receives the import summary emails; empty disables
	// the notification path even when SES itself is enabled.
	NotifyEmail string `mapstructure:"notify_email"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
