package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otolor/clinic-client/internal/testbackend"
	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
	"github.com/otolor/clinic-client/pkg/tokenstore"
)

func newClient(baseURL string, opts ...apiclient.Option) *apiclient.Client {
	return apiclient.New(baseURL, tokenstore.NewMemory(), opts...)
}

func loginAs(t *testing.T, c *apiclient.Client, login, password string) models.User {
	t.Helper()
	resp, err := apiclient.Post[models.AuthResponse](context.Background(), c, "/auth/login", models.LoginRequest{
		Login:    login,
		Password: password,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Data.AccessToken)
	c.Tokens().Set(resp.Data.AccessToken)
	return resp.Data.User
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	t.Parallel()

	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiclient.Response[struct{}]{Success: true, Status: 200, Message: "ok"})
	}))
	defer srv.Close()

	c := newClient(srv.URL)

	_, err := apiclient.Get[struct{}](context.Background(), c, "/ping", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token stored, no header")
	assert.NotEmpty(t, gotRequestID)

	c.Tokens().Set("abc123")
	_, err = apiclient.Get[struct{}](context.Background(), c, "/ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestClient_NormalizesValidationErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testbackend.New())
	defer srv.Close()
	c := newClient(srv.URL)

	_, err := apiclient.Post[models.AuthResponse](context.Background(), c, "/auth/login", models.LoginRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrValidation)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Message)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "login", apiErr.Errors[0].Field)
}

// A 401 from the login endpoint is the answer, not an expired token; it must
// never start a refresh flight, even with a stale token lying around.
func TestClient_LoginFailureDoesNotTriggerRefresh(t *testing.T) {
	t.Parallel()

	backend := testbackend.New()
	srv := httptest.NewServer(backend)
	defer srv.Close()
	c := newClient(srv.URL)
	c.Tokens().Set("stale-from-last-session")

	_, err := apiclient.Post[models.AuthResponse](context.Background(), c, "/auth/login", models.LoginRequest{
		Login:    "admin1",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Equal(t, int64(0), backend.RefreshCalls())
}

func TestClient_TimeoutIsNetworkErrorNotRefresh(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("GET /slow", func(http.ResponseWriter, *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(srv.URL, apiclient.WithTimeout(30*time.Millisecond))
	c.Tokens().Set("whatever")

	_, err := apiclient.Get[struct{}](context.Background(), c, "/slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrNetwork)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "An unexpected error occurred", apiErr.Message)

	// Transport failures never trigger a token refresh, and the token stays.
	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.True(t, c.Tokens().IsPresent())
}

func TestClient_RefreshesAndReplaysOn401(t *testing.T) {
	t.Parallel()

	backend := testbackend.New()
	srv := httptest.NewServer(backend)
	defer srv.Close()
	c := newClient(srv.URL)

	user := loginAs(t, c, "doc1", "docpass")
	stale, _ := c.Tokens().Get()

	backend.ExpireAccessTokens()

	resp, err := apiclient.Get[models.User](context.Background(), c, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.Data.ID)
	assert.Equal(t, int64(1), backend.RefreshCalls())

	fresh, ok := c.Tokens().Get()
	require.True(t, ok)
	assert.NotEqual(t, stale, fresh, "store holds the refreshed token")
}

func TestClient_ConcurrentExpiryRefreshesOnce(t *testing.T) {
	t.Parallel()

	backend := testbackend.New()
	backend.RefreshDelay = 50 * time.Millisecond
	srv := httptest.NewServer(backend)
	defer srv.Close()
	c := newClient(srv.URL)

	loginAs(t, c, "admin1", "adminpass")
	backend.ExpireAccessTokens()

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = apiclient.Get[models.User](context.Background(), c, "/auth/me", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int64(1), backend.RefreshCalls(), "one shared refresh flight")
}

func TestClient_RefreshFailureExpiresSession(t *testing.T) {
	t.Parallel()

	backend := testbackend.New()
	srv := httptest.NewServer(backend)
	defer srv.Close()

	var redirectedTo string
	var hookErr error
	c := newClient(srv.URL,
		apiclient.WithNavigation(
			func() string { return "/admins-otolor/doctors" },
			func(target string) { redirectedTo = target },
		),
		apiclient.WithSessionExpiredHook(func(err error) { hookErr = err }),
	)

	loginAs(t, c, "admin1", "adminpass")
	backend.ExpireAccessTokens()
	backend.FailRefresh.Store(true)

	_, err := apiclient.Get[models.User](context.Background(), c, "/auth/me", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "refresh token revoked", apiErr.Message)

	assert.False(t, c.Tokens().IsPresent(), "token store cleared")
	assert.Equal(t, "/admins-otolor/login", redirectedTo)
	require.Error(t, hookErr)
}

func TestClient_RefreshFailureOutsideAdminAreaDoesNotRedirect(t *testing.T) {
	t.Parallel()

	backend := testbackend.New()
	backend.FailRefresh.Store(true)
	srv := httptest.NewServer(backend)
	defer srv.Close()

	var redirectedTo string
	c := newClient(srv.URL, apiclient.WithNavigation(
		func() string { return "/doctors" },
		func(target string) { redirectedTo = target },
	))
	c.Tokens().Set("stale")

	_, err := apiclient.Get[models.User](context.Background(), c, "/auth/me", nil)
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.Empty(t, redirectedTo, "public pages handle expiry in place")
}

func TestClient_RetriesExactlyOnce(t *testing.T) {
	t.Parallel()

	var thingCalls, refreshCalls atomic.Int64
	var secondAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiclient.Response[models.RefreshTokenResponse]{
			Success: true,
			Status:  200,
			Message: "token refreshed",
			Data:    models.RefreshTokenResponse{AccessToken: "fresh-token"},
		})
	})
	mux.HandleFunc("GET /thing", func(w http.ResponseWriter, r *http.Request) {
		if thingCalls.Add(1) == 2 {
			secondAuth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(apiclient.Response[struct{}]{
			Success: false,
			Status:  http.StatusUnauthorized,
			Message: "nope",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(srv.URL)
	c.Tokens().Set("stale-token")

	_, err := apiclient.Get[struct{}](context.Background(), c, "/thing", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)

	// Refresh succeeded, the replay carried the new token, and the replay's
	// 401 was final.
	assert.Equal(t, int64(2), thingCalls.Load())
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, "Bearer fresh-token", secondAuth)
}

func TestClient_QueryParamsSkipEmpty(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiclient.Response[struct{}]{Success: true, Status: 200})
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	_, err := apiclient.Get[struct{}](context.Background(), c, "/doctors", apiclient.Query{
		"page":   2,
		"limit":  10,
		"search": "",
		"status": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=2", gotQuery)
}
