package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

const (
	defaultTimeout = 10 * time.Second
	defaultHeader  = "x-api-key"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// APIKey is sent in Header on every request when non-empty.
	APIKey string
	// Header defaults to "x-api-key".
	Header string
	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration
	// Retries is the number of retries on transport errors.
	Retries int
}

// Client talks to the o2calc REST API.
type Client struct {
	http *resty.Client
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is reports a 400 response as oxygen.ErrInvalidFlowRate; the server only
// answers 400 for a rejected flow rate.
func (e *APIError) Is(target error) bool {
	return e.StatusCode == http.StatusBadRequest && target == oxygen.ErrInvalidFlowRate
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Header == "" {
		opts.Header = defaultHeader
	}

	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		c.SetHeader(opts.Header, opts.APIKey)
	}
	return &Client{http: c}
}

// Estimate asks the server to estimate flow. A rejected flow rate matches
// oxygen.ErrInvalidFlowRate.
func (c *Client) Estimate(ctx context.Context, flow float64) (types.EstimateResponse, error) {
	var out types.EstimateResponse
	err := c.get(ctx, "/api/v1/estimate", map[string]string{
		"flow": strconv.FormatFloat(flow, 'f', -1, 64),
	}, &out)
	return out, err
}

// Reference returns the server's reference table.
func (c *Client) Reference(ctx context.Context) ([]types.ReferenceRow, error) {
	var out []types.ReferenceRow
	err := c.get(ctx, "/api/v1/reference", nil, &out)
	return out, err
}

// Devices returns the device bands.
func (c *Client) Devices(ctx context.Context) ([]types.DeviceBand, error) {
	var out []types.DeviceBand
	err := c.get(ctx, "/api/v1/devices", nil, &out)
	return out, err
}

// History returns the server's recent estimates, newest first.
func (c *Client) History(ctx context.Context) (types.HistoryResponse, error) {
	var out types.HistoryResponse
	err := c.get(ctx, "/api/v1/history", nil, &out)
	return out, err
}

// Health returns the server health payload.
func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	err := c.get(ctx, "/api/v1/health", nil, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	var apiErr types.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("fetch: get %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch: get %s: %w", path, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error})
	}
	return nil
}

// errStatus wraps a non-2xx response without a JSON body.
func errStatus(path string, code int) error {
	return fmt.Errorf("fetch: get %s: %w", path, &APIError{StatusCode: code})
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
