// Package groq talks to the Groq OpenAI-compatible API for speech-to-text
// and chat-based translation.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"video-translator/domain/speech"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible endpoint root
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTimeout bounds each remote call
	DefaultTimeout = 120 * time.Second

	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryMaxDelay  = 60 * time.Second
)

// Config captures the runtime settings required to talk to Groq.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries is the number of extra attempts for requests the service
	// rejected with 429 before processing. Zero disables retries.
	MaxRetries int

	// RequestsPerMinute throttles all calls made through this client. Zero is unlimited.
	RequestsPerMinute int
}

// Client wraps the Groq transcription and chat completion APIs.
// A single Client is safe for concurrent use by multiple pipeline workers.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	sleeper    func(context.Context, time.Duration) error
	log        logrus.FieldLogger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithLimiter shares a rate limiter between clients.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient constructs a Groq client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		sleeper:    sleepContext,
		log:        logrus.StandardLogger(),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = NewLimiter(cfg.RequestsPerMinute)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLimiter builds a limiter allowing requestsPerMinute calls with a burst of one.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 1)
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return "http " + strconv.Itoa(e.StatusCode) + ": " + summarize(e.Body)
}

// request is rebuilt for every attempt so the body can be replayed.
type request struct {
	method      string
	path        string
	contentType string
	body        []byte
}

// do sends req and returns the response body. Only 429 responses are retried,
// since the service rejected those before doing any billable work.
func (c *Client) do(ctx context.Context, op string, req request) ([]byte, error) {
	attempts := c.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.send(ctx, req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *httpStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests || attempt == attempts {
			break
		}

		delay := c.retryDelay(statusErr.RetryAfter, attempt)
		c.log.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Rate limited, retrying")
		if err := c.sleeper(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint, err := url.JoinPath(c.cfg.BaseURL, r.path)
	if err != nil {
		return nil, errors.Wrap(err, "build url")
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(callCtx, r.method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "http error (timeout=%s)", c.cfg.Timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
			RetryAfter: retryAfter,
		}
	}
	return respBody, nil
}

// classify maps a transport or status error onto a failure reason.
func classify(err error) speech.Reason {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return speech.ReasonAuth
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return speech.ReasonRateLimited
		case statusErr.StatusCode == http.StatusRequestTimeout, statusErr.StatusCode == http.StatusGatewayTimeout:
			return speech.ReasonTimeout
		default:
			return speech.ReasonRemote
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return speech.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return speech.ReasonTimeout
	}
	return speech.ReasonNetwork
}

func (c *Client) retryDelay(retryAfter time.Duration, attempt int) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, defaultRetryMaxDelay)
	}
	delay := defaultRetryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= defaultRetryMaxDelay {
			return defaultRetryMaxDelay
		}
	}
	return delay
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

// apiError extracts the message of an OpenAI-style error body, if present.
func apiError(body string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return body
}

func summarize(body string) string {
	msg := strings.TrimSpace(apiError(body))
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	return msg
}
