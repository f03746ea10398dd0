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

	"salonai/middleware"

	"go.uber.org/zap"
)

// Options configures a DefaultClient.
type Options struct {
	BaseURL   string
	HealthURL string
	// LoginEncoding is "form" (username/password, url-encoded) or "json"
	// ({email, senha}).
	LoginEncoding     string
	Timeout           time.Duration
	MaxRequestsPerMin int
	Tokens            middleware.TokenSource
	Logger            *zap.Logger
	// Transport is the innermost RoundTripper; tests inject one.
	Transport http.RoundTripper
}

// DefaultClient talks to the salon REST backend.
type DefaultClient struct {
	baseURL       string
	healthURL     string
	loginEncoding string
	http          *http.Client
	logger        *zap.Logger
}

var _ Client = (*DefaultClient)(nil)

// NewClient builds a client whose transport attaches request ids and bearer
// tokens, throttles, and logs.
func NewClient(opts Options) *DefaultClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	healthURL := opts.HealthURL
	if healthURL == "" {
		healthURL = originOf(opts.BaseURL) + "/health"
	}
	transport := middleware.Chain(opts.Transport,
		middleware.RequestID(),
		middleware.BearerAuth(opts.Tokens),
		middleware.RateLimit(opts.MaxRequestsPerMin),
		middleware.Logger(logger),
	)
	return &DefaultClient{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		healthURL:     healthURL,
		loginEncoding: opts.LoginEncoding,
		http:          &http.Client{Transport: transport, Timeout: opts.Timeout},
		logger:        logger,
	}
}

// BaseURL returns the API root the client was configured with.
func (c *DefaultClient) BaseURL() string {
	return c.baseURL
}

// Origin returns scheme://host of the API, used to resolve relative asset URLs.
func (c *DefaultClient) Origin() string {
	return originOf(c.baseURL)
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	return u.Scheme + "://" + u.Host
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	header      http.Header
	// absolute overrides baseURL+path.
	absolute string
}

func (c *DefaultClient) do(ctx context.Context, req request, out any) error {
	target := req.absolute
	if target == "" {
		target = c.baseURL + req.path
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", req.method, req.path, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrConnection, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseError(resp.StatusCode, body)
		c.logger.Debug("backend rejected request",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Error()),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

func (c *DefaultClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *DefaultClient) sendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, request{method: method, path: path, query: query, body: body, contentType: "application/json"}, out)
}

// Health pings the backend health endpoint, which lives outside the API root.
func (c *DefaultClient) Health(ctx context.Context) error {
	var out map[string]any
	err := c.do(ctx, request{method: http.MethodGet, path: "/health", absolute: c.healthURL}, &out)
	if err != nil {
		return err
	}
	if status, ok := out["status"].(string); ok && status != "" && status != "ok" && status != "healthy" {
		return errors.New("backend reports status " + status)
	}
	return nil
}
