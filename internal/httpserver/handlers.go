package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/otolor/clinic-client/internal/events"
	mw "github.com/otolor/clinic-client/internal/middleware"
	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

func (s *Server) handleLogin(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeEnvelope(c, http.StatusBadRequest, false, "invalid request body", nil, nil)
	}

	us := s.reg.Create()
	user, err := us.manager.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		s.reg.Destroy(us.id)
		return writeAPIError(c, err)
	}

	setSIDCookie(c, us.id)
	s.audit(c, events.AuthEvent{Event: events.EventLogin, UserID: user.ID, Role: user.Role.Name})
	return writeEnvelope(c, http.StatusOK, true, "login successful", user, nil)
}

func (s *Server) handleLogout(c echo.Context) error {
	us := s.reg.fromCookie(c)
	if us != nil {
		ev := events.AuthEvent{Event: events.EventLogout}
		if snap := us.manager.Current(); snap.User != nil {
			ev.UserID = snap.User.ID
			ev.Role = snap.User.Role.Name
		}
		// Revoke server-side first; the slot dies either way.
		if err := us.manager.Logout(c.Request().Context()); err != nil {
			s.log.Warn("backend logout failed", "error", err)
		}
		s.reg.Destroy(us.id)
		s.audit(c, ev)
	}
	clearSIDCookie(c)
	return writeEnvelope(c, http.StatusOK, true, "logged out", struct{}{}, nil)
}

func (s *Server) handleDashboard(c echo.Context) error {
	mgr := mw.SessionFromContext(c)
	snap := mgr.Current()
	return writeEnvelope(c, http.StatusOK, true, "ok", map[string]any{
		"page": "dashboard",
		"role": snap.User.Role.Name,
	}, nil)
}

func (s *Server) handleMenu(c echo.Context) error {
	mgr := mw.SessionFromContext(c)
	role := mgr.Current().User.Role.Name
	return writeEnvelope(c, http.StatusOK, true, "ok", s.policy.MenuFor(role), nil)
}

func (s *Server) handleSession(c echo.Context) error {
	mgr := mw.SessionFromContext(c)
	snap := mgr.Current()
	return writeEnvelope(c, http.StatusOK, true, "ok", map[string]any{
		"user":            snap.User,
		"isAuthenticated": snap.IsAuthenticated,
	}, nil)
}

// handleNavigate acknowledges a guarded page navigation. The SPA owns the
// rendering; the gateway only answers "this path is yours to open".
func (s *Server) handleNavigate(c echo.Context) error {
	mgr := mw.SessionFromContext(c)
	return writeEnvelope(c, http.StatusOK, true, "ok", map[string]any{
		"path": c.Request().URL.Path,
		"role": mgr.Current().User.Role.Name,
	}, nil)
}

func (s *Server) handleUnauthorized(c echo.Context) error {
	return writeEnvelope(c, http.StatusForbidden, false, "you do not have access to this page", nil, nil)
}

// handleProxy forwards /api/* through the browser session's own client, so
// the bearer token and the single-flight refresh run server-side.
func (s *Server) handleProxy(c echo.Context) error {
	us := s.reg.fromCookie(c)
	if us == nil {
		return writeEnvelope(c, http.StatusUnauthorized, false, "no active session", nil, nil)
	}

	req := c.Request()
	path := strings.TrimPrefix(req.URL.Path, "/api")
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return writeEnvelope(c, http.StatusBadRequest, false, "unreadable request body", nil, nil)
		}
		if len(data) > 0 {
			body = data
		}
	}

	raw, status, err := us.client.Do(req.Context(), req.Method, path, c.QueryParams(), body, req.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, apiclient.ErrSessionExpired) {
			// The expiry hook already destroyed the slot.
			clearSIDCookie(c)
		}
		return writeAPIError(c, err)
	}
	return c.Blob(status, "application/json", raw)
}

func (s *Server) audit(c echo.Context, ev events.AuthEvent) {
	ev.Path = c.Request().URL.Path
	if err := s.sink.Publish(context.WithoutCancel(c.Request().Context()), ev); err != nil {
		s.log.Warn("audit publish failed", "event", ev.Event, "error", err)
	}
}

func writeEnvelope(c echo.Context, status int, success bool, message string, data any, fieldErrs []apiclient.FieldError) error {
	return c.JSON(status, apiclient.Response[any]{
		Success: success,
		Status:  status,
		Message: message,
		Data:    data,
		Errors:  fieldErrs,
	})
}

func writeAPIError(c echo.Context, err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		return writeEnvelope(c, status, false, apiErr.Message, nil, apiErr.Errors)
	}
	return writeEnvelope(c, http.StatusInternalServerError, false, "An unexpected error occurred", nil, nil)
}
