// Package rest talks to a hosted backend exposing a PostgREST-style data
// API under /rest/v1 and a GoTrue-style auth API under /auth/v1.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// errUnreachable marks transport failures (DNS, refused, timeout)
var errUnreachable = errors.New("backend unreachable")

// Options tunes the HTTP side of the backend
type Options struct {
	Table      string        // catalog table, "movies" when empty
	RateLimit  float64       // requests per second, 0 disables limiting
	Timeout    time.Duration // per-request timeout
	HTTPClient *http.Client  // overrides the default client
}

// statusError is a non-2xx answer from the backend
type statusError struct {
	Status int
	Code   string // PostgREST / GoTrue error code, when present
	Msg    string
}

func (e *statusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.Status, e.Code, e.Msg)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Msg)
}

// transport performs JSON requests against the backend. Requests wait on a
// shared limiter so a burst of UI actions cannot flood the service.
type transport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func newTransport(baseURL, apiKey string, opts Options, logger *slog.Logger) *transport {
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
		limiter:    limiter,
		logger:     logger,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	bearer string // falls back to the API key
	prefer string // Prefer header
}

// do sends req and returns the response body for 2xx answers. Other answers
// come back as *statusError; transport failures wrap errUnreachable.
func (t *transport) do(ctx context.Context, req request) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", errUnreachable, err)
	}

	reqURL := t.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	bearer := req.bearer
	if bearer == "" {
		bearer = t.apiKey
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("apikey", t.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	t.logger.Debug("backend request", "method", req.method, "path", req.path)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.Error("backend request failed", "error", err, "method", req.method, "path", req.path)
		return nil, fmt.Errorf("%w: %w", errUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", errUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := parseStatusError(resp.StatusCode, respBody)
		t.logger.Warn("backend request error",
			"status", resp.StatusCode,
			"code", serr.Code,
			"method", req.method,
			"path", req.path,
		)
		return nil, serr
	}

	return respBody, nil
}

// parseStatusError pulls the message out of either error envelope
func parseStatusError(status int, body []byte) *statusError {
	var env errorResponse
	serr := &statusError{Status: status}
	if json.Unmarshal(body, &env) == nil {
		serr.Code = env.code()
		serr.Msg = env.message()
	}
	if serr.Msg == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		serr.Msg = msg
	}
	return serr
}

// asStatus unwraps a *statusError
func asStatus(err error) (*statusError, bool) {
	var serr *statusError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
