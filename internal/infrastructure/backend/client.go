// Package backend is the HTTP client for the external inventory REST API.
// Public calls (login, registration) go through Client directly; everything
// else goes through a Session bound to one browser's Session Context, which
// stamps the identity header and tears the session down on a 401.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10

	// SubjectHeader carries the subject id under SchemeSubjectHeader.
	SubjectHeader = "x-user-id"
)

// Scheme selects how the signed-in identity is sent to the backend. Exactly
// one scheme is active per deployment.
type Scheme string

const (
	SchemeBearer        Scheme = "bearer"
	SchemeSubjectHeader Scheme = "subject-header"
)

// ParseScheme validates a configured scheme name. Empty means bearer.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeBearer:
		return SchemeBearer, nil
	case SchemeSubjectHeader:
		return SchemeSubjectHeader, nil
	}
	return "", fmt.Errorf("unknown backend auth scheme %q", s)
}

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	Scheme  Scheme
	Timeout time.Duration
}

// APIError is a non-2xx backend response other than 401.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Err, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.Err, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	scheme  Scheme
	http    *http.Client
	log     zerolog.Logger
}

// New builds a Client with a tuned transport.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = SchemeBearer
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		scheme:  scheme,
		http:    &http.Client{Timeout: timeout, Transport: transport},
		log:     log,
	}
}

// Scheme reports the active identity scheme.
func (c *Client) Scheme() Scheme {
	return c.scheme
}

// Ping checks that the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Bind returns a Session that stamps requests with sess's identity. onReject
// runs at most once, after the session has been torn down by a 401.
func (c *Client) Bind(sess ports.SessionState, onReject func()) *Session {
	return &Session{client: c, sess: sess, onReject: onReject}
}

// For is Bind behind the ports.InventoryAPI interface.
func (c *Client) For(sess ports.SessionState, onReject func()) ports.InventoryAPI {
	return c.Bind(sess, onReject)
}

// Session is a Client bound to one Session Context.
type Session struct {
	client   *Client
	sess     ports.SessionState
	onReject func()
	rejected sync.Once
}

// Request sends body as JSON and decodes a 2xx response into out (when non-nil).
//
// A 401 signs the session out, fires onReject and returns
// domain.ErrUnauthenticated. A 403 returns an *APIError wrapping
// domain.ErrForbidden and keeps the session. Other failures return an
// *APIError wrapping domain.ErrBackend, or domain.ErrBackendUnavailable when
// the backend could not be reached. Requests are never retried.
func (s *Session) Request(ctx context.Context, method, path string, body, out any) error {
	id, ok := s.sess.Identity()
	if !ok {
		return domain.ErrUnauthenticated
	}

	header := http.Header{}
	switch s.client.scheme {
	case SchemeSubjectHeader:
		header.Set(SubjectHeader, id.SubjectID)
	default:
		if id.Token != "" {
			header.Set("Authorization", "Bearer "+id.Token)
		}
	}

	status, err := s.client.do(ctx, method, path, header, body, out)
	if status == http.StatusUnauthorized {
		s.reject(ctx)
		return domain.ErrUnauthenticated
	}
	return err
}

func (s *Session) reject(ctx context.Context) {
	s.rejected.Do(func() {
		metrics.SignOutsTotal.WithLabelValues("rejected").Inc()
		if err := s.sess.SignOut(ctx); err != nil {
			s.client.log.Error().Err(err).Msg("failed to clear session after backend rejection")
		}
		if s.onReject != nil {
			s.onReject()
		}
	})
}

// subject returns the signed-in subject id used in per-user paths.
func (s *Session) subject() (string, error) {
	id, ok := s.sess.Identity()
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return id.SubjectID, nil
}

// do performs one round trip. The returned status is 0 when no response arrived.
func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "unavailable").Inc()
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return 0, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.BackendRequestsTotal.WithLabelValues(method, "unauthenticated").Inc()
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body), Err: domain.ErrUnauthenticated}
	case resp.StatusCode == http.StatusForbidden:
		metrics.BackendRequestsTotal.WithLabelValues(method, "forbidden").Inc()
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body), Err: domain.ErrForbidden}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.BackendRequestsTotal.WithLabelValues(method, "error").Inc()
		msg := readMessage(resp.Body)
		c.log.Warn().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("message", msg).Msg("backend request failed")
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: msg, Err: domain.ErrBackend}
	}

	metrics.BackendRequestsTotal.WithLabelValues(method, "ok").Inc()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: "malformed response", Err: fmt.Errorf("%w: %w", domain.ErrBackend, err)}
	}
	return resp.StatusCode, nil
}

// readMessage pulls "message" or "error" out of a JSON error body.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return ""
}
