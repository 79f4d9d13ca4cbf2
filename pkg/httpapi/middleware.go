package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cuemby/vmctrl/pkg/config"
	"github.com/cuemby/vmctrl/pkg/log"
	"github.com/cuemby/vmctrl/pkg/metrics"
)

// recoverer turns a panic into the generic 500 body (spec §6.3) instead
// of chi's default stack-trace response, and logs the recovered value.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithRequestID(middleware.GetReqID(r.Context())).
					Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("recovered from panic")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error!"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogging logs one structured line per request, carrying the
// chi-assigned request id. It logs no request headers, so the
// Authorization header never reaches the log.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		reqLog := log.WithRequestID(middleware.GetReqID(r.Context()))
		reqLog.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, statusLabel(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// corsMiddleware builds the go-chi/cors handler from the resolved
// config (spec §4.13).
func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: splitAndTrim(cfg.Origin),
		AllowedMethods: splitAndTrim(cfg.Methods),
		AllowedHeaders: splitAndTrim(cfg.Headers),
	})
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
