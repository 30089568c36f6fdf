// Package gateway is the typed REST client for the smart-city backend. It is
// the only code allowed to perform network I/O against that backend.
package gateway

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
)

const (
	// DefaultBaseURL is the backend API root used when none is configured.
	DefaultBaseURL = "http://localhost:5000/api"

	maxResponseBytes = 16 << 20
)

// DefaultEmulatorHosts are host aliases that only resolve inside a mobile
// emulator and must be rewritten before a browser can load them.
var DefaultEmulatorHosts = []string{"10.0.2.2"}

// TokenSource yields the bearer token for a request. An empty token means the
// request is sent without authorization.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) string {
	return f(ctx)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token(context.Context) string {
	return string(t)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string
	// PublicOrigin is the browser-routable origin used to resolve relative
	// image paths. Derived from BaseURL when empty.
	PublicOrigin  string
	EmulatorHosts []string
	HTTPClient    *http.Client
	Tokens        TokenSource
	Logger        *slog.Logger
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	images  *ImageRewriter
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("gateway: base URL %q must be an absolute http(s) URL", base)
	}

	origin := strings.TrimSpace(cfg.PublicOrigin)
	if origin == "" {
		origin = parsed.Scheme + "://" + parsed.Host
	}
	hosts := cfg.EmulatorHosts
	if hosts == nil {
		hosts = DefaultEmulatorHosts
	}
	images, err := NewImageRewriter(origin, hosts)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		images:  images,
		http:    httpClient,
		tokens:  tokens,
		log:     logger,
	}, nil
}

// ImageURL normalizes a single image URL the same way responses are.
func (c *Client) ImageURL(raw string) string {
	return c.images.Normalize(raw)
}

// call describes one backend request.
type call struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

func (c *Client) send(ctx context.Context, rc call) (json.RawMessage, error) {
	target := c.baseURL + "/" + strings.TrimLeft(rc.path, "/")
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, rc.body)
	if err != nil {
		return nil, &Error{Message: err.Error(), cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if rc.contentType != "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	if !rc.anonymous {
		if token := strings.TrimSpace(c.tokens.Token(ctx)); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", "method", rc.method, "path", rc.path, "error", err)
		return nil, &Error{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: err.Error(), cause: err}
	}
	c.log.Debug("backend request",
		"method", rc.method,
		"path", rc.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, error) {
	rc := call{method: method, path: path, query: query}
	if payload != nil {
		body, err := jsonBody(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		rc.body = body
		rc.contentType = "application/json"
	}
	return c.send(ctx, rc)
}

func jsonBody(payload any) (io.Reader, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(encoded), nil
}

// decode unwraps the response envelope, normalizes image fields and decodes
// the payload into target.
func (c *Client) decode(raw json.RawMessage, target any) error {
	payload := Unwrap(raw)
	if len(payload) == 0 {
		return nil
	}
	normalized, err := c.images.RewriteJSON(payload)
	if err != nil {
		return &Error{Status: http.StatusBadGateway, Message: "invalid backend response: " + err.Error(), cause: err}
	}
	if err := json.Unmarshal(normalized, target); err != nil {
		return &Error{Status: http.StatusBadGateway, Message: "invalid backend response: " + err.Error(), cause: err}
	}
	return nil
}

// decodeRaw decodes without unwrapping or rewriting image fields.
func decodeRaw(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return &Error{Status: http.StatusBadGateway, Message: "invalid backend response: " + err.Error(), cause: err}
	}
	return nil
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values, keys ...string) ([]T, error) {
	raw, err := c.sendJSON(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	payload := UnwrapList(raw, keys...)
	items := []T{}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return items, nil
	}
	normalized, err := c.images.RewriteJSON(payload)
	if err != nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "invalid backend response: " + err.Error(), cause: err}
	}
	if err := json.Unmarshal(normalized, &items); err != nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "invalid backend list response: " + err.Error(), cause: err}
	}
	return items, nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	raw, err := c.sendJSON(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var item T
	if err := c.decode(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func errorFromResponse(status int, body []byte) *Error {
	message := extractMessage(body)
	if message == "" {
		message = fmt.Sprintf("request failed with status code %d", status)
	}
	return &Error{Status: status, Message: message}
}

func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "title"} {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	if nested, ok := payload["data"].(map[string]any); ok {
		if value, ok := nested["message"].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
