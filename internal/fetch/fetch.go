// Package fetch performs bounded, possibly-conditional HTTP retrieval of
// feed and page bodies. Failures are classified into the error codes the
// refresh engine records on feeds.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lector/backend/internal/config"
	"lector/backend/internal/network"
)

const (
	DefaultTimeout      = 7 * time.Second
	DefaultMaxRedirects = 5

	// DefaultAccept prefers feed formats but tolerates generic responses.
	DefaultAccept = "application/rss+xml, application/atom+xml, application/feed+json, application/json;q=0.9, application/xml;q=0.8, text/xml;q=0.7, text/html;q=0.6, */*;q=0.5"

	// maxBodySize caps how much of a response we are willing to buffer.
	maxBodySize = 10 << 20
)

// Error codes recorded on feeds. HTTP status failures use the dynamic
// "http_<status>" form, see HTTPCode.
const (
	CodeTimeout = "timeout"
	CodeNetwork = "network"
)

// HTTPCode returns the classified code for a non-2xx response status.
func HTTPCode(status int) string {
	return fmt.Sprintf("http_%d", status)
}

// Error is a classified fetch failure.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.cause }

// Options controls a single fetch.
type Options struct {
	Timeout         time.Duration // defaults to DefaultTimeout
	MaxRedirects    int           // defaults to DefaultMaxRedirects
	Retries         int           // extra attempts after transport failures
	Accept          string        // defaults to DefaultAccept
	IfNoneMatch     string
	IfModifiedSince string
}

// Result is a successful fetch outcome: either a body or the origin's
// confirmation that the cached validators are still current.
type Result struct {
	NotModified  bool
	Body         []byte
	ETag         string
	LastModified string
	FinalURL     string
	StatusCode   int
}

// Client fetches URLs through the shared client factory, throttling
// per-host so a refresh burst stays polite to a single origin.
type Client struct {
	factory *network.ClientFactory
	hosts   *hostLimiter
}

func New(factory *network.ClientFactory) *Client {
	return &Client{factory: factory, hosts: newHostLimiter(defaultHostQPS)}
}

// Fetch retrieves rawURL, following up to MaxRedirects redirects. The
// returned error, when non-nil, is always a *Error with a classified code.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Accept == "" {
		opts.Accept = DefaultAccept
	}

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		result, err := c.fetchOnce(ctx, rawURL, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Only transport-level failures are worth retrying; an HTTP status
		// will not change between back-to-back attempts.
		var fe *Error
		if !errors.As(err, &fe) || (fe.Code != CodeTimeout && fe.Code != CodeNetwork) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Message: "build request", cause: err}
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", opts.Accept)
	if opts.IfNoneMatch != "" {
		req.Header.Set("If-None-Match", opts.IfNoneMatch)
	}
	if opts.IfModifiedSince != "" {
		req.Header.Set("If-Modified-Since", opts.IfModifiedSince)
	}

	if err := c.hosts.wait(ctx, req.URL.Host); err != nil {
		return nil, classifyTransportError(err)
	}

	client := c.factory.NewHTTPClient(opts.Timeout)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= opts.MaxRedirects {
			// Surface the redirect response itself; it classifies below
			// as http_<status> instead of a transport error.
			return http.ErrUseLastResponse
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	etag := strings.TrimSpace(resp.Header.Get("ETag"))
	lastModified := strings.TrimSpace(resp.Header.Get("Last-Modified"))

	if resp.StatusCode == http.StatusNotModified {
		if etag == "" {
			etag = opts.IfNoneMatch
		}
		if lastModified == "" {
			lastModified = opts.IfModifiedSince
		}
		return &Result{
			NotModified:  true,
			ETag:         etag,
			LastModified: lastModified,
			FinalURL:     finalURL(resp, rawURL),
			StatusCode:   resp.StatusCode,
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Code: HTTPCode(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	return &Result{
		Body:         body,
		ETag:         etag,
		LastModified: lastModified,
		FinalURL:     finalURL(resp, rawURL),
		StatusCode:   resp.StatusCode,
	}, nil
}

func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}

func classifyTransportError(err error) *Error {
	if isTimeout(err) {
		return &Error{Code: CodeTimeout, Message: "request timed out", cause: err}
	}
	return &Error{Code: CodeNetwork, Message: err.Error(), cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
