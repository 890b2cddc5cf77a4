package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the versioned base URL of the WIU API.
	DefaultEndpoint = "https://api.wheresitup.com/v4"

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "WIU Go Client/1.0"

	authHeader      = "Auth"
	requestIDHeader = "X-Request-ID"
)

// Client talks to the WIU API. It is safe for concurrent use.
type Client struct {
	http *resty.Client

	// only used when building the default transport
	baseURL    string
	httpClient *http.Client

	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

var _ API = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithTransport uses a pre-built resty client. It must already have a valid
// base URL set; New fails with ErrConfiguration otherwise. The auth and user agent
// headers are installed on it.
func WithTransport(rc *resty.Client) Option {
	return func(c *Client) error {
		if rc == nil {
			return errors.New("nil transport")
		}
		c.http = rc
		return nil
	}
}

// WithBaseURL overrides DefaultEndpoint for the default transport.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.baseURL = baseURL
		return nil
	}
}

// WithHTTPClient sets the net/http client used by the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithLogger attaches a logger. Requests are logged at debug level and error
// responses at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithRateLimit makes every call wait for a token from a bucket refilled at
// rps tokens per second and holding at most burst tokens.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", rps, burst)
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// New creates a Client authenticating with the given client ID and token.
// Both must be non-empty hexadecimal strings.
//
//	c, err := client.New(id, token,
//	    client.WithLogger(logger),
//	    client.WithRateLimit(5, 1),
//	)
func New(id, token string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:   DefaultEndpoint,
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	if c.http == nil {
		if c.httpClient != nil {
			c.http = resty.NewWithClient(c.httpClient)
		} else {
			c.http = resty.New().SetTimeout(30 * time.Second)
		}
		c.http.SetBaseURL(c.baseURL)
	}
	if validate.Var(c.http.BaseURL, "required,url") != nil {
		return nil, ErrConfiguration
	}

	if err := validate.Struct(credentials{ID: id, Token: token}); err != nil {
		return nil, ErrCredentials
	}

	c.http.SetHeaders(map[string]string{
		authHeader:   fmt.Sprintf("Bearer %s %s", id, token),
		"User-Agent": c.userAgent,
	})
	return c, nil
}

// Headers returns a copy of the headers sent with every request.
func (c *Client) Headers() http.Header {
	return c.http.Header.Clone()
}

// Servers returns the edge servers available for testing.
func (c *Client) Servers(ctx context.Context) ([]Server, error) {
	var out struct {
		Sources []Server `json:"sources"`
	}
	if err := c.do(ctx, http.MethodGet, "sources", "sources", nil, &out); err != nil {
		return nil, err
	}
	return out.Sources, nil
}

// Submit validates the request and queues a new job, returning its ID.
//
// uri may omit the scheme, in which case http:// is assumed; only http,
// https and ftp are accepted. servers are kept when they match ^[a-z]+$ and
// tests are reduced to the supported set, in canonical order. Validation
// failures are returned as *ValidationError before any request is made.
func (c *Client) Submit(ctx context.Context, uri string, servers, tests []string, options map[string]any) (string, error) {
	req, err := NewJobRequest(uri, servers, tests, options)
	if err != nil {
		return "", err
	}

	var out struct {
		JobID string `json:"jobID"`
	}
	if err := c.do(ctx, http.MethodPost, "jobs", "jobs", req, &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

// SubmitRaw decodes raw with DecodeJobRequest and submits the result.
func (c *Client) SubmitRaw(ctx context.Context, raw []byte) (string, error) {
	req, err := DecodeJobRequest(raw)
	if err != nil {
		return "", err
	}
	return c.Submit(ctx, req.URI, req.Sources, req.Tests, req.Options)
}

// Retrieve fetches a job by ID. Jobs still running have
// response.in_progress set; callers wanting the final result poll until
// InProgress reports false.
func (c *Client) Retrieve(ctx context.Context, id string) (JobResult, error) {
	if !isHex(id) {
		return nil, invalid(msgBadJobID)
	}

	var out JobResult
	if err := c.do(ctx, http.MethodGet, "jobs/"+id, "jobs/:id", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one API round trip. resource is the path relative to the base
// URL and label its low-cardinality form for metrics. Error statuses become
// *APIError; a missing response is wrapped in ErrTransport.
func (c *Client) do(ctx context.Context, method, resource, label string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: wait for rate limit: %w", ErrTransport, err)
		}
	}

	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID).
		SetHeader("Accept", "application/json")
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, resource)
	elapsed := time.Since(start)
	if err != nil {
		recordRequest(method, label, "error", elapsed)
		c.logger.Warn("wiu: request failed",
			zap.String("method", method),
			zap.String("resource", label),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, resource, err)
	}

	status := resp.StatusCode()
	recordRequest(method, label, strconv.Itoa(status), elapsed)
	c.logger.Debug("wiu: request",
		zap.String("method", method),
		zap.String("resource", label),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	)

	if resp.IsError() {
		apiErr := newAPIError(resp)
		c.logger.Warn("wiu: error response",
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return errors.Wrapf(err, "decode %s response", label)
		}
	}
	return nil
}
