// Package client is used by the web UI handlers to call the shopfront API.
//
// Every call goes through Client.Do, which enforces a per-attempt timeout, retries transient failures
// (network errors, timeouts, 5xx and 429 responses) with a linear backoff and normalises every failure
// into an *ApiError. The typed methods (Login, ListProducts, AddToCart ...) are thin bindings over Do.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nickabs/shopfront/internal/optional"
)

// Client handles communication with the shopfront API
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy
	logger     *slog.Logger

	// wait is used between attempts (replaced in tests)
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures the API client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used to make requests.
// Timeouts are enforced per attempt by the client, so the supplied client should not set its own Timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryPolicy sets the timeout and retry configuration
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithLogger sets the logger used for retry warnings
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		policy:     DefaultRetryPolicy(),
		logger:     slog.Default(),
		wait:       sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API base url used by the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes a single logical request.
type RequestOptions struct {
	// Method defaults to GET
	Method string
	// Headers are merged with the defaults (Content-Type and Accept: application/json).
	// A header named here replaces the default of the same name.
	Headers http.Header
	// Body is encoded as JSON when not nil
	Body any
	// Timeout and Retries override the client's RetryPolicy for this request
	Timeout optional.Value[time.Duration]
	Retries optional.Value[int]
}

// Response is a successful (2xx) API response.
type Response struct {
	StatusCode  int
	Header      http.Header
	ContentType string
	body        []byte
	isJSON      bool
}

// IsJSON reports whether the response content type indicates JSON
func (r *Response) IsJSON() bool {
	return r.isJSON
}

// Text returns the raw response body
func (r *Response) Text() string {
	return string(r.body)
}

// Decode decodes a JSON response body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return newDecodeError(err, r.StatusCode, fmt.Sprintf("decoding into %T", v))
	}
	return nil
}

// Do sends a request to the API endpoint (a path relative to the base url, with or without a leading slash).
//
// The request is attempted at most Retries+1 times. Each attempt has its own Timeout; a failed attempt is
// retried if it was a network failure, a timeout, a 5xx or a 429 response, after waiting
// RetryDelayBase * attempt number. Once the retry budget is spent the last failure is returned.
//
// The returned error is always an *ApiError.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions) (*Response, error) {
	res, apiErr := c.fetchWithRetry(ctx, endpoint, opts)
	if apiErr != nil {
		return nil, apiErr
	}
	return res, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, opts RequestOptions) (*Response, *ApiError) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if _, err := url.ParseRequestURI(target); err != nil {
		return nil, newRequestError(err, "parsing request url")
	}

	var body []byte
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, newRequestError(err, "marshaling request body")
		}
		body = data
	}

	headers := mergeHeaders(opts.Headers)
	timeout := opts.Timeout.Or(c.policy.Timeout)
	retries := max(opts.Retries.Or(c.policy.Retries), 0)

	var lastErr *ApiError

	// 0 <= attempt <= retries, so there are at most retries+1 calls to the API
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.policy.Delay(attempt)

			c.logger.Warn("retrying API request",
				slog.String("component", "ui.client"),
				slog.String("method", method),
				slog.String("endpoint", endpoint),
				slog.Int("attempt", attempt),
				slog.Int("retries", retries),
				slog.Duration("delay", delay),
				slog.Int("status", lastErr.Status),
				slog.String("error", lastErr.Message),
			)

			if err := c.wait(ctx, delay); err != nil {
				break
			}
		}

		res, apiErr := c.attempt(ctx, method, target, headers, body, timeout)
		if apiErr == nil {
			return res, nil
		}

		lastErr = apiErr
		if !shouldRetry(apiErr) || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// attempt makes a single call to the API bounded by timeout.
func (c *Client) attempt(ctx context.Context, method, target string, headers http.Header, body []byte, timeout time.Duration) (*Response, *ApiError) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, target, bodyReader)
	if err != nil {
		return nil, newRequestError(err, "creating request")
	}
	req.Header = headers.Clone()

	// a response that arrives after the deadline is discarded - the timeout has already decided the outcome
	timedOut := func() bool {
		return errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if timedOut() {
			return nil, newTimeoutError(err, timeout.Milliseconds())
		}
		return nil, newNetworkError(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		if timedOut() {
			return nil, newTimeoutError(err, timeout.Milliseconds())
		}
		return nil, newNetworkError(fmt.Errorf("reading response body: %w", err))
	}

	contentType := res.Header.Get("Content-Type")
	isJSON := isJSONContentType(contentType)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, newHTTPError(res.StatusCode, data, isJSON)
	}

	if isJSON && len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		return nil, newDecodeError(errors.New("invalid JSON"), res.StatusCode, "reading response body")
	}

	return &Response{
		StatusCode:  res.StatusCode,
		Header:      res.Header,
		ContentType: contentType,
		body:        data,
		isJSON:      isJSON,
	}, nil
}

func mergeHeaders(supplied http.Header) http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	for name, values := range supplied {
		headers.Del(name)
		for _, v := range values {
			headers.Add(name, v)
		}
	}
	return headers
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// bearer returns the Authorization header for an API access token
func bearer(accessToken string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+accessToken)
	return h
}

// doJSON calls Do and decodes the JSON response into T
func doJSON[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T

	res, err := c.Do(ctx, endpoint, opts)
	if err != nil {
		return out, err
	}

	if !res.IsJSON() {
		return out, newDecodeError(fmt.Errorf("unexpected content type %q", res.ContentType), res.StatusCode, endpoint)
	}

	if err := res.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
