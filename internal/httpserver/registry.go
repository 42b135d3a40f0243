package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/otolor/clinic-client/internal/events"
	"github.com/otolor/clinic-client/pkg/apiclient"
	"github.com/otolor/clinic-client/pkg/session"
	"github.com/otolor/clinic-client/pkg/tokenstore"
)

const sidCookieName = "sid"

// defaultSessionTTL bounds how long an abandoned sid cookie keeps its
// server-side slot alive.
const defaultSessionTTL = 12 * time.Hour

// userSession binds one browser to its own token slot, API client and
// session manager, so refreshes for different users never interleave.
type userSession struct {
	id      string
	client  *apiclient.Client
	manager *session.Manager
	// lastSeen is guarded by the registry mutex.
	lastSeen time.Time
}

// Registry owns the gateway's server-side sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*userSession

	baseURL         string
	timeout         time.Duration
	ttl             time.Duration
	adminPathPrefix string
	adminLoginPath  string
	sink            events.Sink
	log             *slog.Logger
	done            chan struct{}
}

func NewRegistry(baseURL string, timeout, ttl time.Duration, adminPathPrefix, adminLoginPath string, sink events.Sink, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = events.Nop{}
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	r := &Registry{
		sessions:        make(map[string]*userSession),
		baseURL:         baseURL,
		timeout:         timeout,
		ttl:             ttl,
		adminPathPrefix: adminPathPrefix,
		adminLoginPath:  adminLoginPath,
		sink:            sink,
		log:             log,
		done:            make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Close stops the idle sweeper.
func (r *Registry) Close() {
	close(r.done)
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(r.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

// evictIdle drops slots whose browser has gone quiet past the TTL, so
// abandoned sid cookies cannot accumulate sessions forever.
func (r *Registry) evictIdle() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	var expired []*userSession
	for id, us := range r.sessions {
		if us.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, us)
		}
	}
	r.mu.Unlock()
	for _, us := range expired {
		r.log.Info("idle session evicted", "sid", us.id)
		us.manager.Teardown()
	}
}

// Create allocates a session slot and its dedicated client. An unrecoverable
// refresh failure destroys the slot, so the browser's next admin-area request
// lands on the login redirect: the hard-navigation semantics of the SPA.
func (r *Registry) Create() *userSession {
	id := uuid.NewString()
	client := apiclient.New(r.baseURL, tokenstore.NewMemory(),
		apiclient.WithTimeout(r.timeout),
		apiclient.WithLogger(r.log),
		apiclient.WithAdminArea(r.adminPathPrefix, r.adminLoginPath),
		apiclient.WithSessionExpiredHook(func(error) { r.expire(id) }),
	)
	us := &userSession{
		id:       id,
		client:   client,
		manager:  session.NewManager(client, r.log),
		lastSeen: time.Now(),
	}
	r.mu.Lock()
	r.sessions[id] = us
	r.mu.Unlock()
	return us
}

func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	us := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if us != nil {
		us.manager.Teardown()
	}
}

// expire is the unrecoverable-refresh-failure path: audit, then drop the
// slot so the next admin-area request redirects to login.
func (r *Registry) expire(id string) {
	ev := events.AuthEvent{Event: events.EventSessionExpired}
	if us := r.get(id); us != nil {
		if snap := us.manager.Current(); snap.User != nil {
			ev.UserID = snap.User.ID
			ev.Role = snap.User.Role.Name
		}
	}
	if err := r.sink.Publish(context.Background(), ev); err != nil {
		r.log.Warn("audit publish failed", "event", ev.Event, "error", err)
	}
	r.Destroy(id)
}

// get resolves a live slot and marks it seen; a slot idle past the TTL is
// evicted on the spot rather than waiting for the sweeper.
func (r *Registry) get(id string) *userSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	us := r.sessions[id]
	if us == nil {
		return nil
	}
	if time.Since(us.lastSeen) > r.ttl {
		delete(r.sessions, id)
		us.manager.Teardown()
		return nil
	}
	us.lastSeen = time.Now()
	return us
}

func (r *Registry) fromCookie(c echo.Context) *userSession {
	cookie, err := c.Cookie(sidCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return r.get(cookie.Value)
}

// Session implements middleware.SessionSource.
func (r *Registry) Session(c echo.Context) *session.Manager {
	if us := r.fromCookie(c); us != nil {
		return us.manager
	}
	return nil
}

func setSIDCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     sidCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSIDCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sidCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
