package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "127.0.0.1:8080"
	defaultUserAgent = "hireboard/0.1"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 8 << 20

	// IdempotencyHeader carries the journal entry id of a mutating call so
	// the server can deduplicate retried requests.
	IdempotencyHeader = "Idempotency-Key"
)

// Options configures a Client. Zero values pick the defaults noted per field.
type Options struct {
	// BaseURL is a host:port or a full URL; path, query and fragment are dropped.
	BaseURL string

	// Timeout bounds each attempt (default 30s).
	Timeout time.Duration

	// Retry defaults to DefaultRetryPolicy when nil.
	Retry *RetryPolicy

	// Breaker enables the circuit breaker when non-nil.
	Breaker *BreakerSettings

	// RequestsPerSecond throttles attempts client-side; 0 disables.
	RequestsPerSecond float64

	// Registerer receives the client's collectors. Nil uses a private registry.
	Registerer prometheus.Registerer

	Logger     logrus.FieldLogger
	HTTPClient *http.Client

	// Sleep and Jitter replace the backoff wait and the random draw in tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func(n int64) int64
}

// Client talks to the hiring API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
	policy    RetryPolicy
	breaker   *breaker
	limiter   *rate.Limiter
	metrics   *metrics
	log       logrus.FieldLogger
	sleep     func(ctx context.Context, d time.Duration) error
	jitter    func(n int64) int64
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   base,
		http:      opts.HTTPClient,
		userAgent: defaultUserAgent,
		timeout:   opts.Timeout,
		policy:    DefaultRetryPolicy(),
		log:       opts.Logger,
		sleep:     opts.Sleep,
		jitter:    opts.Jitter,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if opts.Retry != nil {
		c.policy = *opts.Retry
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.log = c.log.WithField("component", "api")
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	c.metrics = newMetrics(opts.Registerer)
	if opts.Breaker != nil {
		c.breaker = newBreaker("api:"+base.Host, *opts.Breaker, c.log, c.metrics)
	}
	return c, nil
}

// Stats returns the call counters.
func (c *Client) Stats() Stats {
	return c.metrics.stats()
}

// Breaker reports the circuit breaker state.
func (c *Client) Breaker() BreakerStatus {
	return c.breaker.status()
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches key to ctx; mutating calls made with the
// returned context send it as the Idempotency-Key header on every attempt.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key attached by WithIdempotencyKey.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

// Invoke performs one logical call: body is JSON-encoded when non-nil, the
// envelope's data is decoded into dest when non-nil. Attempts go through the
// rate limiter, the circuit breaker and the retry policy.
func (c *Client) Invoke(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	key := IdempotencyKey(ctx)
	if key == "" && mutating(method) {
		key = uuid.NewString()
	}

	start := time.Now()
	_, err = c.retry(ctx, method, rel.Path, func(ctx context.Context) error {
		return c.breaker.execute(func() error {
			return c.attempt(ctx, method, rel, payload, key, dest)
		})
	})
	c.metrics.observe(method, err, time.Since(start))
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   rel.Path,
		}).WithError(err).Debug("request failed")
	}
	return err
}

func (c *Client) attempt(ctx context.Context, method string, rel *url.URL, payload []byte, key string, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrAborted, ctxErr)
			}
			return fmt.Errorf("%w: rate limit: %w", ErrAborted, err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, method, rel.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.transportError(ctx, method, rel.Path, err)
	}
	return decodeEnvelope(method, rel.Path, resp.StatusCode, data, dest)
}

// transportError separates a caller abort from a retryable network failure.
func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrAborted, ctxErr)
	}
	return &Error{
		Method:  method,
		Path:    path,
		Timeout: errors.Is(err, context.DeadlineExceeded) || isTimeout(err),
		Err:     err,
	}
}

// envelope is the API's response wrapper: {"success":true,"data":...} or
// {"success":false,"error":"code","message":"text"}.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(method, path string, status int, data []byte, dest any) error {
	trimmed := bytes.TrimSpace(data)

	if status >= 400 {
		var env envelope
		_ = json.Unmarshal(trimmed, &env)
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Method: method, Path: path, Status: status, Code: env.Error, Message: msg}
	}
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' {
		// A bare array or scalar cannot be an envelope.
		return decodeData(method, path, status, trimmed, dest)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return &Error{Method: method, Path: path, Status: status, Message: "decode response", Err: err}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return &Error{Method: method, Path: path, Status: status, Code: env.Error, Message: msg}
	}
	if dest == nil {
		return nil
	}

	raw := env.Data
	if env.Success == nil && len(raw) == 0 {
		// Not enveloped.
		raw = trimmed
	}
	return decodeData(method, path, status, raw, dest)
}

func decodeData(method, path string, status int, raw []byte, dest any) error {
	if dest == nil || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &Error{Method: method, Path: path, Status: status, Message: "decode response", Err: err}
	}
	return nil
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func isAborted(err error) bool     { return errors.Is(err, ErrAborted) }
func isCircuitOpen(err error) bool { return errors.Is(err, ErrCircuitOpen) }

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
