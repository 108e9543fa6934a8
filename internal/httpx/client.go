package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RetryPolicy controls the retry behaviour for transient failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy implements a conservative retry strategy.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

// DefaultTimeout bounds every request issued through a Client.
const DefaultTimeout = 60 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every API request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetryPolicy overrides the default retry configuration.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithHTTPClient overrides the underlying HTTP client, e.g. for tests or
// custom TLS configuration.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client issues authenticated requests against a base URL plus unauthenticated
// transfers against absolute (presigned) URLs. Both share timeout and retry
// configuration.
type Client struct {
	api      *resty.Client
	transfer *resty.Client

	token       string
	timeout     time.Duration
	retryPolicy RetryPolicy
	httpClient  *http.Client
	userAgent   string
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	c := &Client{
		timeout:     DefaultTimeout,
		retryPolicy: DefaultRetryPolicy,
		userAgent:   "hypha-artifact-go",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retryPolicy.MaxRetries < 0 {
		c.retryPolicy.MaxRetries = 0
	}
	if c.retryPolicy.BaseDelay <= 0 {
		c.retryPolicy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if c.retryPolicy.MaxDelay <= 0 {
		c.retryPolicy.MaxDelay = DefaultRetryPolicy.MaxDelay
	}

	c.api = c.newResty().SetBaseURL(strings.TrimRight(baseURL, "/"))
	if c.token != "" {
		c.api.SetAuthToken(c.token)
	}
	// Presigned URLs carry their own credentials; never send the bearer
	// token to the storage backend.
	c.transfer = c.newResty()

	return c, nil
}

func (c *Client) newResty() *resty.Client {
	var rc *resty.Client
	if c.httpClient != nil {
		rc = resty.NewWithClient(c.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(c.timeout).
		SetHeader("User-Agent", c.userAgent).
		SetRetryCount(c.retryPolicy.MaxRetries).
		SetRetryWaitTime(c.retryPolicy.BaseDelay).
		SetRetryMaxWaitTime(c.retryPolicy.MaxDelay).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return Retryable(resp, err)
		})
	return rc
}

// R starts an API request bound to ctx.
func (c *Client) R(ctx context.Context) *resty.Request {
	return c.api.R().SetContext(ctx)
}

// Transfer starts a request against an absolute URL, without auth headers.
func (c *Client) Transfer(ctx context.Context) *resty.Request {
	return c.transfer.R().SetContext(ctx)
}

// Retryable reports whether a response or transport error is transient.
func Retryable(resp *resty.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		(code >= 500 && code <= 599)
}

// CheckResponse converts a non-2xx response into an HTTPError.
func CheckResponse(resp *resty.Response) error {
	if resp == nil {
		return errors.New("httpx: nil response")
	}
	if !resp.IsError() {
		return nil
	}
	return &HTTPError{
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), resp.Body()...),
		Header:     resp.Header().Clone(),
	}
}
