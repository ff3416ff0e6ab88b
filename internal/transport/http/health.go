package httptransport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"sarkar/pkg/platform/httputil"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler answers 200 when every dependency check passes and 503
// otherwise. With no checks configured it is a liveness probe.
func healthHandler(startedAt time.Time, checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "ok",
			Uptime: time.Since(startedAt).Round(time.Second).String(),
		}
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					resp.Status = "degraded"
					resp.Checks[name] = err.Error()
					continue
				}
				resp.Checks[name] = "ok"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
