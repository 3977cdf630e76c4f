// Package yahoo provides a client for the Yahoo Finance public API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultUserAgent = "Mozilla/5.0"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	cookieURL  string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time

	mu    sync.Mutex
	crumb string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCookieURL sets the URL visited to obtain the session cookie
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock overrides the time source used for statement date ranges
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:   DefaultBaseURL,
		cookieURL: DefaultCookieURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// do performs a rate-limited GET request and returns the response body
func (c *Client) do(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// get performs a GET against an API path and decodes the JSON response
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	if crumb := c.getCrumb(ctx); crumb != "" {
		params.Set("crumb", crumb)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance API request")

	body, status, err := c.do(ctx, reqURL)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		if status == http.StatusUnauthorized {
			c.resetCrumb()
		}
		return &APIError{
			StatusCode: status,
			Message:    truncate(string(body), 200),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getCrumb returns the cached session crumb, fetching one on first use.
// A missing crumb is not fatal: some endpoints answer without it.
func (c *Client) getCrumb(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb
	}

	if c.cookieURL != "" {
		// The cookie endpoint commonly answers 404 while still setting the session cookie
		if _, _, err := c.do(ctx, c.cookieURL); err != nil {
			c.logger.Debug().Err(err).Msg("Yahoo cookie request failed")
		}
	}

	body, status, err := c.do(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil || status != http.StatusOK {
		c.logger.Debug().Err(err).Int("status", status).Msg("Yahoo crumb unavailable")
		return ""
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return ""
	}
	c.crumb = crumb
	return c.crumb
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
