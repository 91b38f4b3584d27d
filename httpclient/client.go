// SPDX-License-Identifier: MIT

// Package httpclient provides a small HTTP client bound to a base URL, with
// browser-like default headers, per-request IDs and debug logging of the
// request, the redirect chain and the response.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pwt/go-utils/internal/textutil"
	"github.com/pwt/go-utils/log"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/93.0.4577.82 Safari/537.36 Edg/93.0.961.52"
)

// StatusError reports a response with a 4xx or 5xx status code.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %s", e.URL, e.Status)
}

// Client issues requests against a single base URL.
type Client struct {
	base    string
	http    *http.Client
	headers http.Header
}

// Option adjusts a Client under construction.
type Option func(*Client)

// WithTimeout replaces the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeader sets a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithUserAgent replaces the default browser user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.headers.Set("User-Agent", ua) }
}

// New builds a Client for base. Every request carries a Referer pointing at
// base and a browser user agent unless overridden via options.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		headers: http.Header{},
	}
	c.headers.Set("Referer", base)
	c.headers.Set("User-Agent", defaultUserAgent)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends a request for path relative to the base URL and returns the
// response after verifying its status code. Responses with a 4xx or 5xx
// status are drained, closed and reported as a *StatusError. The caller owns
// the body of a returned response.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, method, path, "", body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	u := c.base + path
	requestID := uuid.NewString()
	logger := log.FromContext(ctx).With().
		Str(log.FieldComponent, "httpclient").
		Str(log.FieldRequestID, requestID).
		Logger()

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		err = fmt.Errorf("httpclient: build request: %w", err)
		c.warn(&logger, err)
		return nil, err
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", requestID)

	logger.Debug().
		Str(log.FieldMethod, method).
		Str(log.FieldURL, u).
		Msg("request")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.warn(&logger, err)
		return nil, err
	}
	logger.Debug().Msgf("response: %s", redirectChain(res))

	if res.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, res.Body) //nolint:errcheck
		res.Body.Close()
		err := &StatusError{Code: res.StatusCode, Status: res.Status, URL: u}
		c.warn(&logger, err)
		return nil, err
	}

	logger.Debug().
		Int(log.FieldStatus, res.StatusCode).
		Dur(log.FieldElapsed, time.Since(start)).
		Str("content_type", res.Header.Get("Content-Type")).
		Msg("request done")
	return res, nil
}

// Get issues a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request for path with the given body.
func (c *Client) Post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, contentType, body)
}

// Text fetches path with GET and returns the response body as a string.
func (c *Client) Text(ctx context.Context, path string) (string, error) {
	res, err := c.Get(ctx, path)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("httpclient: read body: %w", err)
	}
	log.FromContext(ctx).Debug().
		Str(log.FieldComponent, "httpclient").
		Int(log.FieldBodySize, len(data)).
		Msgf("text: %s", textutil.TruncateMiddle(string(data), 200))
	return string(data), nil
}

// JSON posts body (serialized as JSON, nil for an empty request) to path and
// decodes the JSON response into out.
func (c *Client) JSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	res, err := c.Post(ctx, path, "application/json", reader)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	log.FromContext(ctx).Debug().
		Str(log.FieldComponent, "httpclient").
		Int(log.FieldBodySize, len(data)).
		Msgf("json: %s", textutil.TruncateMiddle(string(data), 200))
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode body: %w", err)
	}
	return nil
}

// redirectChain renders the method, URL and status of every hop that led to
// res, oldest first.
func redirectChain(res *http.Response) string {
	var hops []string
	for r := res; r != nil; {
		hops = append(hops, fmt.Sprintf("%s - %s - %s",
			r.Request.Method, r.Request.URL, r.Status))
		if r.Request.Response != nil {
			r = r.Request.Response
		} else {
			r = nil
		}
	}
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	return strings.Join(hops, " => ")
}

// warn logs err at warn level under a coarse category.
func (c *Client) warn(logger *zerolog.Logger, err error) {
	logger.Warn().Err(err).Msg(errorCategory(err))
}

func errorCategory(err error) string {
	var statusErr *StatusError
	var urlErr *url.Error
	switch {
	case errors.As(err, &statusErr):
		return "http error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &urlErr):
		if urlErr.Timeout() {
			return "timeout"
		}
		return "connection error"
	default:
		return "request error"
	}
}
