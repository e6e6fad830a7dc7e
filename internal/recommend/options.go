package recommend

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// clientConfig holds configuration for the Client.
type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zerolog.Logger
}

func defaultClientConfig() clientConfig {
	nop := zerolog.Nop()
	return clientConfig{
		baseURL: "http://localhost:5000",
		timeout: 30 * time.Second,
		logger:  &nop,
	}
}

// ClientOption configures the client.
type ClientOption func(*clientConfig)

// WithBaseURL sets the recommendation service root URL.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithTimeout bounds each exchange so a stalled service cannot hang a search.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout is left untouched.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

func WithLogger(l *zerolog.Logger) ClientOption {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
