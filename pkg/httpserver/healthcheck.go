package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Probe checks a single dependency.
type Probe func(context.Context) error

// HealthHandler runs the given probes with a short deadline and reports
// 200/503 accordingly. Probe names appear in the JSON body on failure only by
// name, never with internal error detail.
func HealthHandler(probes map[string]Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failed := make([]string, 0)
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				failed = append(failed, name)
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
