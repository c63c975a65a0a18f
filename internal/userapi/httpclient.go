package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Compile-time interface check.
var _ Service = (*HTTPClient)(nil)

// DefaultBaseURL is the public demo API the client talks to unless
// configured otherwise.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// maxErrorBody caps how much of a failed response body is kept in a
// TransportError.
const maxErrorBody = 512

// HTTPClient implements Service over the REST/JSON user endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL points the client at a different service root.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// WithRateLimit throttles outgoing requests to rps per second with the given
// burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient creates a client for the user service.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client sends requests to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ListUsers fetches GET /users.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// GetUser fetches GET /users/{id}.
func (c *HTTPClient) GetUser(ctx context.Context, id int) (*User, error) {
	var u User
	if err := c.do(ctx, "get user", http.MethodGet, userPath(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser sends POST /users. Any id already on u is dropped so the server
// assigns one.
func (c *HTTPClient) CreateUser(ctx context.Context, u User) (*User, error) {
	u.ID = 0
	var created User
	if err := c.do(ctx, "create user", http.MethodPost, "/users", u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser sends PUT /users/{id}.
func (c *HTTPClient) UpdateUser(ctx context.Context, id int, u User) (*User, error) {
	u.ID = id
	var updated User
	if err := c.do(ctx, "update user", http.MethodPut, userPath(id), u, &updated); err != nil {
		return nil, err
	}
	// Some services echo the body without the id.
	if updated.ID == 0 {
		updated.ID = id
	}
	return &updated, nil
}

// DeleteUser sends DELETE /users/{id}. The response body is ignored.
func (c *HTTPClient) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id int) string {
	return "/users/" + strconv.Itoa(id)
}

// do performs one request/response exchange. Every failure is returned as a
// *TransportError.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any, result any) error {
	url := c.baseURL + path
	fail := func(status int, respBody []byte, err error) error {
		return &TransportError{
			Op:         op,
			Method:     method,
			URL:        url,
			StatusCode: status,
			Body:       truncate(respBody),
			Err:        err,
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(0, nil, fmt.Errorf("rate limit: %w", err))
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, nil, fmt.Errorf("marshal body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fail(0, nil, fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return fail(0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, respBody, nil)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fail(resp.StatusCode, respBody, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}

// TransportError reports a failed exchange with the user service: the
// request never completed, the server answered with a non-2xx status, or the
// response could not be decoded.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int // zero when no response was received
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("userapi: %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("userapi: %s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("userapi: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("userapi: %s: HTTP %d", e.Op, e.StatusCode)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the server answered 404.
func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
