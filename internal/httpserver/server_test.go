package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otolor/clinic-client/internal/events"
	"github.com/otolor/clinic-client/internal/httpserver"
	"github.com/otolor/clinic-client/internal/testbackend"
	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
	"github.com/otolor/clinic-client/pkg/config"
	"github.com/otolor/clinic-client/pkg/rbac"
)

// recordSink captures audit events for assertions.
type recordSink struct {
	mu     sync.Mutex
	events []events.AuthEvent
}

func (r *recordSink) Publish(_ context.Context, ev events.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordSink) Close() error { return nil }

func (r *recordSink) all() []events.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.AuthEvent(nil), r.events...)
}

type testGateway struct {
	url     string
	client  *http.Client
	backend *testbackend.Backend
	sink    *recordSink
}

func newGateway(t *testing.T) *testGateway {
	t.Helper()
	backend := testbackend.New()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	cfg := config.Config{
		ServiceName:     "gateway-test",
		APIBaseURL:      backendSrv.URL,
		RequestTimeout:  5 * time.Second,
		AdminPathPrefix: "/admins-otolor",
		AdminLoginPath:  "/admins-otolor/login",
	}
	sink := &recordSink{}
	srv := httpserver.New(cfg, rbac.DefaultPolicy(), sink, nil)
	gw := httptest.NewServer(srv.Echo)
	t.Cleanup(gw.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testGateway{
		url: gw.URL,
		client: &http.Client{
			Jar: jar,
			// Redirects are part of the behavior under test.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		backend: backend,
		sink:    sink,
	}
}

func (g *testGateway) login(t *testing.T, login, password string) {
	t.Helper()
	body, _ := json.Marshal(models.LoginRequest{Login: login, Password: password})
	resp, err := g.client.Post(g.url+"/admins-otolor/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (g *testGateway) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := g.client.Get(g.url + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) apiclient.Response[T] {
	t.Helper()
	var env apiclient.Response[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestGateway_LoginSetsSessionCookie(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	body, _ := json.Marshal(models.LoginRequest{Login: "admin1", Password: "adminpass"})
	resp, err := g.client.Post(g.url+"/admins-otolor/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeBody[models.User](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, models.RoleAdmin, env.Data.Role.Name)

	var sid string
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	assert.NotEmpty(t, sid)

	evs := g.sink.all()
	require.Len(t, evs, 1)
	assert.Equal(t, events.EventLogin, evs[0].Event)
	assert.Equal(t, models.RoleAdmin, evs[0].Role)
}

func TestGateway_LoginFailurePassesEnvelopeThrough(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	body, _ := json.Marshal(models.LoginRequest{Login: "admin1", Password: "wrong"})
	resp, err := g.client.Post(g.url+"/admins-otolor/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env := decodeBody[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid credentials", env.Message)
	assert.Empty(t, resp.Cookies())
	assert.Empty(t, g.sink.all())
}

func TestGateway_AnonymousAdminAreaRedirectsToLogin(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	resp := g.get(t, "/admins-otolor/doctors")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admins-otolor/login?from=%2Fadmins-otolor%2Fdoctors", resp.Header.Get("Location"))
}

func TestGateway_MenuIsRoleFiltered(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "doc1", "docpass")

	resp := g.get(t, "/admins-otolor/menu")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeBody[[]rbac.MenuItem](t, resp)

	var keys []string
	for _, item := range env.Data {
		keys = append(keys, item.Key)
	}
	assert.Equal(t, []string{"dashboard", "profile", "services", "appointments", "blogs"}, keys)
}

func TestGateway_RouteTableGuardsNavigation(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "doc1", "docpass")

	resp := g.get(t, "/admins-otolor/doctors")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized", resp.Header.Get("Location"))

	resp = g.get(t, "/admins-otolor/appointments")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unregistered paths are open to any authenticated role.
	resp = g.get(t, "/admins-otolor/reports")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_SessionEndpoint(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "admin1", "adminpass")

	resp := g.get(t, "/admins-otolor/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, env.Data["isAuthenticated"])
}

func TestGateway_ProxyForwardsThroughSessionClient(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "admin1", "adminpass")

	resp := g.get(t, "/api/doctors")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeBody[[]models.Doctor](t, resp)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "Aziza", env.Data[0].FirstName)
}

func TestGateway_ProxyRefreshesExpiredToken(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "admin1", "adminpass")

	g.backend.ExpireAccessTokens()
	resp := g.get(t, "/api/doctors")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "gateway refreshes and replays transparently")
	assert.Equal(t, int64(1), g.backend.RefreshCalls())
}

func TestGateway_ProxyWithoutSessionIs401(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	resp := g.get(t, "/api/doctors")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env := decodeBody[any](t, resp)
	assert.Equal(t, "no active session", env.Message)
}

func TestGateway_UnrecoverableRefreshDropsSession(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "admin1", "adminpass")

	g.backend.ExpireAccessTokens()
	g.backend.FailRefresh.Store(true)

	resp := g.get(t, "/api/doctors")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The slot is gone: the next admin-area navigation lands on login.
	resp = g.get(t, "/admins-otolor")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/admins-otolor/login")

	evs := g.sink.all()
	require.Len(t, evs, 2)
	assert.Equal(t, events.EventSessionExpired, evs[1].Event)
}

func TestGateway_LogoutDestroysSession(t *testing.T) {
	t.Parallel()
	g := newGateway(t)
	g.login(t, "doc1", "docpass")

	resp, err := g.client.Post(g.url+"/admins-otolor/logout", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	after := g.get(t, "/admins-otolor")
	assert.Equal(t, http.StatusFound, after.StatusCode)

	evs := g.sink.all()
	require.Len(t, evs, 2)
	assert.Equal(t, events.EventLogout, evs[1].Event)
}

func TestGateway_Healthz(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	resp := g.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
