// Package session resolves the current user and derives identity facts
// (role, permissions) from it. A session is never stored whole: it is the
// conjunction of a fetched user and a present access token.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

// ErrUnauthenticated means no token is present, so the profile fetch was not
// even attempted.
var ErrUnauthenticated = errors.New("not authenticated")

// Snapshot is the derived session state at one point in time.
type Snapshot struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
}

// Manager owns the "current session" slot. It is explicitly constructed and
// injected; there is no package-level singleton.
type Manager struct {
	client *apiclient.Client
	log    *slog.Logger

	mu        sync.RWMutex
	user      *models.User
	loading   bool
	closed    bool
	nextID    int
	listeners map[int]func(Snapshot)
}

func NewManager(client *apiclient.Client, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		client:    client,
		log:       log,
		loading:   true,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Init resolves the session on startup: with a token present it fetches the
// profile, and drops the token if the backend rejects it even after the
// client's refresh path is exhausted. Always ends the loading state.
func (m *Manager) Init(ctx context.Context) error {
	defer m.setLoading(false)

	if !m.client.Tokens().IsPresent() {
		return nil
	}
	resp, err := apiclient.Get[models.User](ctx, m.client, "/auth/me", nil)
	if err != nil {
		if !errors.Is(err, apiclient.ErrNetwork) {
			m.client.Tokens().Clear()
		}
		m.log.Warn("session init: profile fetch failed", "error", err)
		return err
	}
	m.setUser(&resp.Data)
	return nil
}

// Login authenticates and seeds the session optimistically from the auth
// response, without a second profile fetch.
func (m *Manager) Login(ctx context.Context, login, password string) (*models.User, error) {
	resp, err := apiclient.Post[models.AuthResponse](ctx, m.client, "/auth/login", models.LoginRequest{Login: login, Password: password})
	if err != nil {
		return nil, err
	}
	if resp.Success && resp.Data.AccessToken != "" {
		m.client.Tokens().Set(resp.Data.AccessToken)
	}
	user := resp.Data.User
	m.setUser(&user)
	return &user, nil
}

// Register creates an account and seeds the session like Login does.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	resp, err := apiclient.Post[models.AuthResponse](ctx, m.client, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	if resp.Success && resp.Data.AccessToken != "" {
		m.client.Tokens().Set(resp.Data.AccessToken)
	}
	user := resp.Data.User
	m.setUser(&user)
	return &user, nil
}

// Logout revokes the refresh credential server-side. Local state is cleared
// even when the call fails.
func (m *Manager) Logout(ctx context.Context) error {
	_, err := apiclient.Post[struct{}](ctx, m.client, "/auth/logout", nil)
	m.client.Tokens().Clear()
	m.setUser(nil)
	return err
}

// LogoutAll revokes every device's refresh credential.
func (m *Manager) LogoutAll(ctx context.Context) error {
	_, err := apiclient.Post[struct{}](ctx, m.client, "/auth/logout-all", nil)
	m.client.Tokens().Clear()
	m.setUser(nil)
	return err
}

// ChangePassword clears the token on success: the user must log in again.
func (m *Manager) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	resp, err := apiclient.Post[struct{}](ctx, m.client, "/auth/change-password", req)
	if err != nil {
		return err
	}
	if resp.Success {
		m.client.Tokens().Clear()
		m.notify()
	}
	return nil
}

// Me re-fetches the current profile. Callers must hold a token.
func (m *Manager) Me(ctx context.Context) (*models.User, error) {
	if !m.client.Tokens().IsPresent() {
		return nil, ErrUnauthenticated
	}
	resp, err := apiclient.Get[models.User](ctx, m.client, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	m.setUser(&resp.Data)
	return &resp.Data, nil
}

// Current derives the session snapshot. IsAuthenticated requires BOTH a
// fetched user and a present token: a stale cached user without a token is
// not an authenticated session.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	user := m.user
	loading := m.loading
	m.mu.RUnlock()
	return Snapshot{
		User:            user,
		IsAuthenticated: user != nil && m.client.Tokens().IsPresent(),
		IsLoading:       loading,
	}
}

// HasRole is an exact membership test against the user's role name.
func (m *Manager) HasRole(roles ...string) bool {
	snap := m.Current()
	if !snap.IsAuthenticated {
		return false
	}
	return slices.Contains(roles, snap.User.Role.Name)
}

// HasPermission checks the role's permission set. Superadmin holds every
// permission regardless of the set contents.
func (m *Manager) HasPermission(permission string) bool {
	snap := m.Current()
	if !snap.IsAuthenticated {
		return false
	}
	if snap.User.Role.Name == models.RoleSuperAdmin {
		return true
	}
	return slices.Contains(snap.User.Role.Permissions, permission)
}

func (m *Manager) IsAdmin() bool {
	return m.HasRole(models.RoleAdmin, models.RoleSuperAdmin)
}

func (m *Manager) IsSuperAdmin() bool {
	return m.HasRole(models.RoleSuperAdmin)
}

// OnAuthChange registers a listener for session transitions. The returned
// function unsubscribes it.
func (m *Manager) OnAuthChange(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Teardown drops all listeners and the cached user. The token store is left
// to its owner.
func (m *Manager) Teardown() {
	m.mu.Lock()
	m.closed = true
	m.listeners = make(map[int]func(Snapshot))
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) setUser(u *models.User) {
	m.mu.Lock()
	m.user = u
	// Any explicit auth transition means the session is known.
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	snap := m.Current()
	for _, fn := range fns {
		fn(snap)
	}
}
