// Package httpserver is the admin BFF: it terminates browser sessions,
// enforces the RBAC route guard, serves the role-filtered menu, and forwards
// API calls through each session's client so bearer attach and token refresh
// happen server-side.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otolor/clinic-client/internal/events"
	mw "github.com/otolor/clinic-client/internal/middleware"
	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/config"
	"github.com/otolor/clinic-client/pkg/rbac"
)

type Server struct {
	Echo   *echo.Echo
	reg    *Registry
	policy *rbac.Policy
	sink   events.Sink
	log    *slog.Logger
}

func New(cfg config.Config, policy *rbac.Policy, sink events.Sink, log *slog.Logger) *Server {
	if sink == nil {
		sink = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		reg:    NewRegistry(cfg.APIBaseURL, cfg.RequestTimeout, cfg.SessionTTL, cfg.AdminPathPrefix, cfg.AdminLoginPath, sink, log),
		policy: policy,
		sink:   sink,
		log:    log,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(ecM.Recover(), ecM.RequestID(), ecM.Secure())
	e.Use(requestLogger(log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/unauthorized", s.handleUnauthorized)

	base := policy.AdminBasePath
	e.POST(base+"/login", s.handleLogin, mw.Guest(s.reg, policy))
	e.POST(base+"/logout", s.handleLogout)

	// Admin area: doctors share the area, their reach is narrowed by the
	// route table and the per-menu permission requirements.
	admin := e.Group(base, mw.Guard(s.reg, policy, mw.GuardOptions{
		RequiredRoles:   []string{models.RoleUser, models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin},
		CheckRouteTable: true,
	}))
	admin.GET("", s.handleDashboard)
	admin.GET("/menu", s.handleMenu)
	admin.GET("/session", s.handleSession)
	admin.GET("/*", s.handleNavigate)

	e.Any("/api/*", s.handleProxy)

	s.Echo = e
	return s
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}
