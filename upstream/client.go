/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dirpx.dev/problem/logging"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// TraceHeader carries the request trace id to the dependency.
const TraceHeader = "X-Trace-Id"

const (
	defaultMaxRetries      = 2
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxElapsedTime  = 10 * time.Second
)

// Client calls one JSON dependency. Non-2xx answers are returned as
// *StatusError; 5xx, 429 and transport failures are retried with exponential
// backoff, everything else fails immediately.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	logger     *zap.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client built by NewHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxRetries sets how many times a failed call is retried. Zero disables
// retries.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackOff replaces the retry schedule. The factory is called once per
// call so that policies with state are never shared between calls.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(c *Client) {
		if factory != nil {
			c.newBackOff = factory
		}
	}
}

// New creates a Client for the dependency rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream: base URL %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		http:       NewHTTPClient(),
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultInitialInterval
	b.MaxElapsedTime = defaultMaxElapsedTime
	return b
}

// GetJSON fetches path and decodes the JSON answer into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Do sends body (JSON-encoded, may be nil) to path and decodes the answer into
// out (may be nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("upstream: encode request: %w", err)
		}
	}
	target := c.resolve(path)

	op := func() error {
		return c.once(ctx, method, target, payload, out)
	}
	notify := func(err error, wait time.Duration) {
		fields := append([]zap.Field{
			zap.String("method", method),
			zap.String("url", target),
			zap.Duration("wait", wait),
			zap.Error(err),
		}, logging.Fields(ctx)...)
		c.logger.Warn("Retrying upstream call.", fields...)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	return backoff.RetryNotify(op, b, notify)
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, out any) error {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("upstream: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.TraceID(ctx); id != "" {
		req.Header.Set(TraceHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if err := CheckResponse(resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Temporary() {
			return err
		}
		return backoff.Permanent(err)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("upstream: decode %s %s: %w", method, target, err))
	}
	return nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.JoinPath(path).String()
}
