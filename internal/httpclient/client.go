package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/couponwatch/couponwatch/internal/common"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// ClientConfig holds the knobs for the shared HTTP client.
type ClientConfig struct {
	Timeout         time.Duration
	UserAgent       string
	FollowRedirects bool
	MaxRedirects    int
	MaxContentSize  int64 // bytes; 0 means no limit
	EnableHTTP2     bool
	DefaultHeaders  map[string]string
}

// DefaultClientConfig returns a ClientConfig with sensible defaults for
// scraping public listing pages.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:         30 * time.Second,
		FollowRedirects: true,
		MaxRedirects:    10,
		MaxContentSize:  8 * 1024 * 1024,
		EnableHTTP2:     true,
	}
}

// Response is the fully-read result of a request.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Client wraps net/http.Client with the application defaults: user agent,
// timeout, redirect policy and a body size cap.
type Client struct {
	client *http.Client
	config ClientConfig
	logger zerolog.Logger
}

// NewClient creates a new HTTP client with the given configuration.
func NewClient(config ClientConfig, logger zerolog.Logger) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return common.NewError("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	return &Client{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Get issues a GET request and reads the full body, honoring the configured
// content size cap. Extra headers override client defaults.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP request")
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, value := range c.config.DefaultHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, url)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, c.config.MaxContentSize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read response body from %s", url)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// classifyTransportError maps a transport failure onto the shared error
// sentinels so callers can distinguish timeouts from connectivity problems
// with errors.Is.
func classifyTransportError(err error, url string) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.WrapErrorf(common.ErrTimeout, "request to %s: %v", url, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return common.WrapErrorf(err, "request to %s aborted", url)
	}
	return common.WrapErrorf(common.ErrNetworkFailure, "request to %s: %v", url, err)
}

// IsSuccess reports whether the response carries a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
