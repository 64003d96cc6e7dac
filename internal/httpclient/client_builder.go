package httpclient

import (
	"time"

	"github.com/rs/zerolog"
)

// ClientBuilder builds HTTP clients with a fluent interface
type ClientBuilder struct {
	config ClientConfig
	logger zerolog.Logger
}

// NewClientBuilder creates a new ClientBuilder with default configuration
func NewClientBuilder(logger zerolog.Logger) *ClientBuilder {
	return &ClientBuilder{
		config: DefaultClientConfig(),
		logger: logger,
	}
}

// WithTimeout sets the request timeout
func (b *ClientBuilder) WithTimeout(timeout time.Duration) *ClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithUserAgent sets the User-Agent header
func (b *ClientBuilder) WithUserAgent(userAgent string) *ClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithFollowRedirects sets whether to follow redirects
func (b *ClientBuilder) WithFollowRedirects(follow bool) *ClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithMaxContentSize sets the maximum body size to read in bytes (0 for no limit)
func (b *ClientBuilder) WithMaxContentSize(size int64) *ClientBuilder {
	b.config.MaxContentSize = size
	return b
}

// WithDefaultHeaders sets headers applied to every request
func (b *ClientBuilder) WithDefaultHeaders(headers map[string]string) *ClientBuilder {
	b.config.DefaultHeaders = headers
	return b
}

// WithHTTP2 enables or disables HTTP/2 support
func (b *ClientBuilder) WithHTTP2(enabled bool) *ClientBuilder {
	b.config.EnableHTTP2 = enabled
	return b
}

// Build creates and returns a new Client
func (b *ClientBuilder) Build() (*Client, error) {
	return NewClient(b.config, b.logger)
}
