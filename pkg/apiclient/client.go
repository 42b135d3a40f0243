// Package apiclient is the HTTP core every backend call goes through: it
// attaches the bearer token, speaks the response envelope, normalizes
// failures, and runs the single-flight refresh-then-retry protocol on 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/otolor/clinic-client/pkg/tokenstore"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	gate       refreshGate
	log        *slog.Logger

	adminPathPrefix string
	adminLoginPath  string

	// location/redirect model the navigation context. Both optional; the
	// admin-area hard redirect on unrecoverable refresh failure only fires
	// when both are wired.
	location         func() string
	redirect         func(target string)
	onSessionExpired func(err error)
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithAdminArea(pathPrefix, loginPath string) Option {
	return func(c *Client) {
		c.adminPathPrefix = pathPrefix
		c.adminLoginPath = loginPath
	}
}

func WithNavigation(location func() string, redirect func(target string)) Option {
	return func(c *Client) {
		c.location = location
		c.redirect = redirect
	}
}

// WithSessionExpiredHook is called once per unrecoverable refresh failure,
// after the token store is cleared.
func WithSessionExpiredHook(fn func(err error)) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func New(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	// The jar carries the http-only refresh cookie; the client never reads
	// it, only replays it to /auth/refresh.
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens:          tokens,
		log:             slog.Default(),
		adminPathPrefix: "/admins-otolor",
		adminLoginPath:  "/admins-otolor/login",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the underlying token store.
func (c *Client) Tokens() tokenstore.Store { return c.tokens }

// Do executes one request against the backend. Success returns the raw
// envelope body and HTTP status; every failure comes back as *Error. A 401 on
// the first attempt runs the refresh protocol and retries exactly once; the
// retry's outcome is final.
func (c *Client) Do(ctx context.Context, method, path string, q url.Values, body []byte, contentType string) ([]byte, int, error) {
	token, _ := c.tokens.Get()
	raw, status, err := c.send(ctx, method, path, q, body, contentType, token)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, 0, networkError(err)
	}
	if status != http.StatusUnauthorized || !refreshEligible(path, token) {
		return c.finish(method, raw, status)
	}

	newToken, rerr := c.refreshed(ctx)
	if rerr != nil {
		requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
		return nil, status, rerr
	}

	raw, status, err = c.send(ctx, method, path, q, body, contentType, newToken)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, 0, networkError(err)
	}
	return c.finish(method, raw, status)
}

// refreshEligible reports whether a 401 can mean an expired access token:
// only when one was actually sent, and never on the credential-establishing
// endpoints, where a 401 is the answer itself.
func refreshEligible(path, token string) bool {
	if token == "" {
		return false
	}
	switch path {
	case "/auth/login", "/auth/register", "/auth/refresh":
		return false
	}
	return true
}

func (c *Client) finish(method string, raw []byte, status int) ([]byte, int, error) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	if status >= 200 && status < 300 {
		return raw, status, nil
	}
	return nil, status, normalizeFailure(status, raw, nil)
}

// refreshed resolves the post-refresh token for a request that just saw a
// 401. The first caller through the gate leads the refresh; the rest queue
// and resume with its outcome.
func (c *Client) refreshed(ctx context.Context) (string, error) {
	leader, wait := c.gate.begin()
	if !leader {
		select {
		case out := <-wait:
			if out.err != nil {
				return "", sessionExpiredError(out.err)
			}
			return out.token, nil
		case <-ctx.Done():
			return "", networkError(ctx.Err())
		}
	}

	token, err := c.refresh(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("failure").Inc()
		c.tokens.Clear()
		c.gate.settle("", err)
		c.expireSession(err)
		return "", sessionExpiredError(err)
	}
	refreshTotal.WithLabelValues("success").Inc()
	c.tokens.Set(token)
	c.gate.settle(token, nil)
	return token, nil
}

// refresh issues the one refresh call. The session-identifying credential
// travels in the cookie jar; the caller's cancellation is detached so one
// impatient request cannot poison the shared flight.
func (c *Client) refresh(ctx context.Context) (string, error) {
	raw, status, err := c.send(context.WithoutCancel(ctx), http.MethodPost, "/auth/refresh", nil, nil, "", "")
	if err != nil {
		return "", networkError(err)
	}
	if status < 200 || status >= 300 {
		return "", normalizeFailure(status, raw, ErrUnauthenticated)
	}
	var env Response[struct {
		AccessToken string `json:"accessToken"`
	}]
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if !env.Success || env.Data.AccessToken == "" {
		return "", &Error{Status: status, Message: "failed to refresh token"}
	}
	return env.Data.AccessToken, nil
}

func (c *Client) expireSession(err error) {
	c.log.Warn("session expired, local token cleared", "error", err)
	if c.onSessionExpired != nil {
		c.onSessionExpired(err)
	}
	if c.location == nil || c.redirect == nil {
		return
	}
	if strings.HasPrefix(c.location(), c.adminPathPrefix) {
		c.redirect(c.adminLoginPath)
	}
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte, contentType, token string) ([]byte, int, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if contentType == "" && body != nil {
		contentType = "application/json"
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}
