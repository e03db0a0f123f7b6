package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/metrics"
	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/pkg/tracing"
)

const (
	DefaultTimeout = 120 * time.Second

	clientHeader = "X-Sitepulse-Client"
	clientName   = "sitepulse-go"

	// upstream error bodies are echoed into messages, keep them short
	maxErrorBody = 512
)

// TokenSource provides the bearer token for upstream calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Version string
	Timeout time.Duration
	// ClientVersion is reported in the client identifying header.
	ClientVersion string
	// HTTPClient is copied, not mutated. A zero Timeout on it gets Timeout.
	HTTPClient *http.Client
}

// Client talks to the upstream health-check and monitors APIs. Every call is
// a single attempt: no retries, no backoff.
type Client struct {
	baseURL       string
	clientVersion string
	httpClient    *http.Client
	tokens        TokenSource
	logger        *slog.Logger
	tracer        *tracing.Tracer
}

func New(opts Options, tokens TokenSource, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.HTTPClient != nil {
		hc := *opts.HTTPClient
		if hc.Timeout <= 0 {
			hc.Timeout = timeout
		}
		httpClient = &hc
	}
	version := strings.Trim(opts.Version, "/")
	if version == "" {
		version = "v1"
	}
	clientVersion := opts.ClientVersion
	if clientVersion == "" {
		clientVersion = "dev"
	}

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/") + "/" + version + "/",
		clientVersion: clientVersion,
		httpClient:    httpClient,
		tokens:        tokens,
		logger:        logger.With("layer", "client", "component", "upstreamClient"),
		tracer:        tracing.NewTracer(tracing.GetTracer("upstream-client")),
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, query)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues one authenticated request and returns the raw JSON body.
// Transport failures, timeouts and non-2xx answers are *errors.RequestError.
// An empty or non-JSON body is errors.ErrMalformedResponse.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	path = strings.TrimLeft(path, "/")

	ctx, span := c.tracer.StartClientSpan(ctx, "upstream "+method)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, body, query)
	if err != nil {
		c.tracer.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(method, metrics.StatusClass(0)).Inc()
		reqErr := &appErr.RequestError{Method: method, Path: path, Err: err}
		c.logger.Error("Upstream request failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		c.tracer.RecordError(span, reqErr)
		return nil, reqErr
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()
	c.tracer.AddUpstreamAttributes(span, method, path, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		reqErr := &appErr.RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
		c.tracer.RecordError(span, reqErr)
		return nil, reqErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &appErr.RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.Status),
		}
		c.logger.Warn("Upstream returned error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("statusCode", resp.StatusCode),
			slog.String("message", reqErr.Message))
		c.tracer.RecordError(span, reqErr)
		return nil, reqErr
	}

	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		err := fmt.Errorf("%w: %s %s", appErr.ErrMalformedResponse, method, path)
		c.logger.Warn("Upstream returned malformed JSON", slog.String("method", method), slog.String("path", path))
		c.tracer.RecordError(span, err)
		return nil, err
	}

	return json.RawMessage(data), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, query url.Values) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErr.NewInternal("encode request body for %s %s: %v", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &appErr.RequestError{Method: method, Path: path, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(clientHeader, clientName+"/"+c.clientVersion)
	req.Header.Set("User-Agent", clientName+"/"+c.clientVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.InjectHTTPHeaders(ctx, req.Header)

	// a missing token is not pre-validated, upstream answers with an auth error
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("Could not read API token, sending unauthenticated request", slog.Any("error", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "Bearer ")
	}
	return req, nil
}

// DecodeEnvelope unwraps a management endpoint response and returns its data.
// Any status other than "success" becomes a *errors.RequestError.
func DecodeEnvelope(method, path string, raw json.RawMessage) (json.RawMessage, error) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", appErr.ErrMalformedResponse, method, path, err)
	}
	if env.Status != "success" {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q", env.Status)
		}
		return nil, &appErr.RequestError{Method: method, Path: path, Message: msg}
	}
	return env.Data, nil
}

func errorMessage(body []byte, fallback string) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}
	return truncate(text, maxErrorBody)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
