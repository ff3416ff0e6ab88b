package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	notificationhandler "sarkar/internal/notification/handler"
	"sarkar/internal/platform/metrics"
	profilehandler "sarkar/internal/profile/handler"
	schemehandler "sarkar/internal/scheme/handler"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	"sarkar/pkg/platform/middleware/admin"
	"sarkar/pkg/platform/middleware/auth"
	request "sarkar/pkg/platform/middleware/request"
	"sarkar/pkg/platform/middleware/requesttime"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

const requestTimeout = 30 * time.Second

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router mounts. Nil handlers are skipped so the CLI
// and tests can build partial routers.
type Deps struct {
	Logger     *slog.Logger
	Validator  auth.TokenValidator
	Profiles   profilehandler.Service
	Schemes    schemehandler.Service
	Ingester   schemehandler.Ingester
	Tokens     notificationhandler.Service
	AdminToken string
	Metrics    *metrics.HTTP
	Checks     map[string]HealthCheck
	StartedAt  time.Time
	// Clock stamps each request's "now"; nil means time.Now.
	Clock func() time.Time
}

// NewRouter wires the public API. Everything except health and metrics
// requires a bearer token; catalog ingestion requires the admin token instead.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = d.Clock()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.MiddlewareWithClock(d.Clock))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Route not found."))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler(d.StartedAt, d.Checks))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.Validator, logger))
			if d.Profiles != nil {
				profilehandler.New(d.Profiles, logger).Register(r)
			}
			if d.Schemes != nil {
				schemehandler.New(d.Schemes, logger).Register(r)
			}
			if d.Tokens != nil {
				notificationhandler.New(d.Tokens, logger).Register(r)
			}
		})

		if d.AdminToken != "" && d.Ingester != nil {
			r.Group(func(r chi.Router) {
				r.Use(admin.RequireAdminToken(d.AdminToken, logger))
				schemehandler.NewAdmin(d.Ingester, logger).Register(r)
			})
		}
	})

	return r
}
