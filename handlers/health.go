package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/utils"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Health answers GET /healthz. Any failing check turns the response into a 503.
func Health(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := map[string]interface{}{"status": "ok", "checks": results}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		utils.WriteJSON(w, status, body)
	}
}
