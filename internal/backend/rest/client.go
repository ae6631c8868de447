// Package rest implements service.Backend over the task backend's JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskcli/internal/notify"
	"taskcli/internal/service"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string

	// Timeout bounds every request, including reading the body.
	Timeout time.Duration

	// Tokens supplies the bearer token for each request. A source that
	// returns an error means "send without Authorization".
	Tokens oauth2.TokenSource

	// UserAgent is sent on every request.
	UserAgent string

	// Transport overrides http.DefaultTransport (for testing).
	Transport http.RoundTripper

	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Response is a completed exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RequestHook runs on every outgoing request before it is sent.
type RequestHook func(*http.Request)

// Client is the single configured HTTP pipeline shared by all resource calls.
// It implements service.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	headers http.Header
	hooks   []RequestHook
	notify  notify.Notifier
	log     *slog.Logger

	mu             sync.Mutex
	onUnauthorized []func()
}

var _ service.Backend = (*Client)(nil)

// New creates a Client. Requests carry the default headers, then pass
// through the bearer and request-id hooks.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: opts.Transport},
		headers: http.Header{},
		notify:  opts.Notifier,
		log:     opts.Logger,
	}
	if c.notify == nil {
		c.notify = notify.Discard
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")
	if opts.UserAgent != "" {
		c.headers.Set("User-Agent", opts.UserAgent)
	}

	if opts.Tokens != nil {
		c.hooks = append(c.hooks, bearerHook(opts.Tokens))
	}
	c.hooks = append(c.hooks, requestIDHook())
	return c
}

// OnUnauthorized registers fn to run whenever a response is a 401.
// The session subscribes here; the client itself never navigates.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// Do sends one request. body, if non-nil, is encoded as JSON; out, if
// non-nil, receives the decoded JSON response. Every failure is classified,
// reported to the notifier and returned as a *service.Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	if body == nil {
		req.Header.Del("Content-Type")
	}
	for _, hook := range c.hooks {
		hook(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.reject(req, transportError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.reject(req, transportError(err))
	}
	c.log.Debug("response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(requestIDHeader),
		"elapsed", time.Since(start),
	)

	if serr := statusError(resp, data); serr != nil {
		return nil, c.reject(req, serr)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.Do(ctx, http.MethodGet, path, nil, out)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	_, err := c.Do(ctx, method, path, body, out)
	return err
}
