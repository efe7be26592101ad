// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connection checking and retry logic.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient creates a new Zeebe client with default configuration.
func NewClient(address string) (*Client, error) {
	config := &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true, // configure TLS in production
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
		RetryConfig:            DefaultRetryConfig,
	}
	return NewClientWithConfig(config)
}

// NewClientWithConfig creates a Zeebe client using explicit configuration.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
	}, nil
}

// GetClient returns the raw Zeebe client for job polling.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}
