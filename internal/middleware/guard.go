// Package middleware holds the gateway's route guard. The guard gates UX
// only; proxied requests still carry the bearer token and the backend's own
// authorization decides.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/otolor/clinic-client/pkg/rbac"
	"github.com/otolor/clinic-client/pkg/session"
)

// SessionSource resolves the browser's server-side session, or nil.
type SessionSource interface {
	Session(c echo.Context) *session.Manager
}

const ctxSessionKey = "auth_session"

// GuardOptions configure one guarded region.
type GuardOptions struct {
	// RequiredRoles admit only these roles. Empty means authentication only.
	RequiredRoles []string
	// RequiredPermissions must all pass HasPermission.
	RequiredPermissions []string
	// CheckRouteTable additionally consults Policy.CanAccessRoute for the
	// request path.
	CheckRouteTable bool
}

// Guard wraps a navigable region:
//   - session still resolving: 503 with Retry-After, never a redirect
//   - unauthenticated: 302 to the login path, carrying the original
//     location in ?from=
//   - role or permission check failing: 302 to the unauthorized page
func Guard(src SessionSource, policy *rbac.Policy, opts GuardOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mgr := src.Session(c)
			if mgr == nil {
				return redirectToLogin(c, policy)
			}

			snap := mgr.Current()
			if snap.IsLoading {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is resolving")
			}
			if !snap.IsAuthenticated {
				return redirectToLogin(c, policy)
			}

			if len(opts.RequiredRoles) > 0 && !mgr.HasRole(opts.RequiredRoles...) {
				return c.Redirect(http.StatusFound, "/unauthorized")
			}
			for _, perm := range opts.RequiredPermissions {
				if !mgr.HasPermission(perm) {
					return c.Redirect(http.StatusFound, "/unauthorized")
				}
			}
			if opts.CheckRouteTable && !policy.CanAccessRoute(c.Request().URL.Path, snap.User.Role.Name) {
				return c.Redirect(http.StatusFound, "/unauthorized")
			}

			c.Set(ctxSessionKey, mgr)
			return next(c)
		}
	}
}

// Guest keeps authenticated staff off the login page, sending them back to
// where they came from (or the dashboard).
func Guest(src SessionSource, policy *rbac.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mgr := src.Session(c)
			if mgr == nil {
				return next(c)
			}
			snap := mgr.Current()
			if snap.IsLoading {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is resolving")
			}
			if snap.IsAuthenticated && mgr.IsAdmin() {
				target := c.QueryParam("from")
				if !localTarget(target) {
					target = policy.DefaultRedirectPath(snap.User.Role.Name)
				}
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

// SessionFromContext returns the manager a Guard stored for the handler.
func SessionFromContext(c echo.Context) *session.Manager {
	mgr, _ := c.Get(ctxSessionKey).(*session.Manager)
	return mgr
}

// localTarget accepts only same-site paths, so a crafted ?from= cannot send
// the browser off the gateway. "//host" and backslash variants parse as
// absolute URLs in browsers.
func localTarget(target string) bool {
	return strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.Contains(target, "\\")
}

func redirectToLogin(c echo.Context, policy *rbac.Policy) error {
	target := policy.AdminLoginPath + "?from=" + url.QueryEscape(c.Request().URL.Path)
	return c.Redirect(http.StatusFound, target)
}
