package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health registers a public GET /health that runs every check with a short
// deadline and answers 503 when any of them fails.
func (r *Router) Health(checks map[string]HealthCheck) {
	r.Public(http.MethodGet, "/health")
	r.GETRaw("/health", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:    "healthy",
			Message:   "Server is running",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK

		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				resp.Status = "unhealthy"
				resp.Message = name + " is unavailable"
				code = http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, resp, code)
	}))
}
