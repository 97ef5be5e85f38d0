// Package solr implements the HTTP search client used by worker tasks.
// The client is shared by all concurrent workers; the underlying transport
// is created once on first use.
package solr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const maxBodyReadSize = 1024 * 1024

// Invoker abstracts executing a single query operation.
// Implementations should return an error for failed requests.
type Invoker interface {
	Execute(ctx context.Context, query Query) (*QueryResponse, error)
}

// HTTPError represents a non-2xx search response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// HeaderInjector mutates outgoing requests, e.g. to add trace headers.
type HeaderInjector func(ctx context.Context, header http.Header)

// Client executes queries against a single search endpoint over HTTP.
// It is safe for concurrent use.
type Client struct {
	baseURL  string
	timeout  time.Duration
	inject   HeaderInjector
	initOnce sync.Once
	http     *http.Client
}

// NewClient creates a client for the given select-handler URL.
// The HTTP transport is built lazily on the first Execute call.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("search URL is required")
	}
	return &Client{baseURL: trimmed, timeout: timeout}, nil
}

// SetHeaderInjector installs a request-header hook. Must be called before
// the first Execute.
func (c *Client) SetHeaderInjector(inject HeaderInjector) {
	c.inject = inject
}

// Execute performs one request/response cycle for the given query.
func (c *Client) Execute(ctx context.Context, query Query) (*QueryResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.initOnce.Do(func() {
		c.http = newHTTPClient(c.timeout)
	})

	target := c.baseURL
	if strings.Contains(target, "?") {
		target += "&" + query.Values().Encode()
	} else {
		target += "?" + query.Values().Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.inject != nil {
		c.inject(ctx, req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if resp.StatusCode >= 400 {
		snippet := body
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	if readErr != nil {
		return nil, readErr
	}

	return ParseResponse(body), nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
