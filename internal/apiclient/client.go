// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the HTTP adapter to the recipe backend and the typed
// resource functions built on it.
package apiclient

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/olegiv/recipe-console/internal/logging"
	"github.com/olegiv/recipe-console/internal/metrics"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	Tokens  session.TokenStore

	// HTTPClient defaults to a client without a timeout.
	HTTPClient *http.Client
	// Timeout bounds each request when positive.
	Timeout time.Duration

	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64
	RateBurst int

	// OnUnauthorized runs after a 401/403 has cleared the stored token.
	OnUnauthorized func(ctx context.Context)
}

// Client sends JSON requests to the backend with the stored bearer token.
type Client struct {
	baseURL        string
	tokens         session.TokenStore
	http           *http.Client
	timeout        time.Duration
	limiter        *rate.Limiter
	onUnauthorized func(ctx context.Context)
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		tokens:         opts.Tokens,
		http:           opts.HTTPClient,
		timeout:        opts.Timeout,
		onUnauthorized: opts.OnUnauthorized,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Send performs one request. body, when non-nil, is encoded as JSON; out,
// when non-nil, receives the decoded response. A 401 or 403 clears the stored
// credential and fires OnUnauthorized before the *Error is returned.
func (c *Client) Send(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, body, params)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveBackend(method, path, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		slog.WarnContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	metrics.ObserveBackend(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %w", ErrTransport, method, path, err)
	}

	slog.DebugContext(ctx, "backend request", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode, Payload: decodeErrorPayload(data)}
		if errors.Is(apiErr, ErrUnauthorized) {
			c.unauthorized(ctx, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, params url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		creds, err := c.tokens.Credentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		if !creds.Empty() {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
	}
	return req, nil
}

func (c *Client) unauthorized(ctx context.Context, apiErr *Error) {
	slog.WarnContext(ctx, "backend rejected credentials", "method", apiErr.Method, "path", apiErr.Path,
		"status", apiErr.Status)
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to clear credentials", "error", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func decodeErrorPayload(data []byte) *model.ErrorResponse {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var payload model.ErrorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return &payload
}

func get[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var out T
	err := c.Send(ctx, http.MethodGet, path, nil, params, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	err := c.Send(ctx, method, path, body, nil, &out)
	return out, err
}
