package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/msomdec/predictions/internal/domain"
)

// HandleHealthz responds with 200 and {"status":"ok"} while the database is
// reachable, and 503 otherwise.
func HandleHealthz(db domain.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			LoggerFromContext(r.Context()).Error("health check", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
