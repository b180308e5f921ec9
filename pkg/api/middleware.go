package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Headers stamped on every response.
const (
	ProcessTimeHeader = "X-Process-Time"
	APIVersionHeader  = "X-API-Version"
)

// withMiddleware wraps the router. Order outermost to innermost:
// request logging -> timing/version stamps -> CORS -> handler.
// The stamps sit inside logging so the logged duration covers them,
// and outside CORS so preflight responses carry them too.
func (a *API) withMiddleware(handler http.Handler) http.Handler {
	h := a.corsMiddleware(handler)
	h = a.stampMiddleware(h)
	return a.loggingMiddleware(h)
}

// stampWriter injects the timing and version headers just before the
// first byte of the response is written, so the measured time covers
// the whole handler run.
type stampWriter struct {
	http.ResponseWriter
	start   time.Time
	version string
	wrote   bool
}

func (sw *stampWriter) stamp() {
	if sw.wrote {
		return
	}
	sw.wrote = true
	elapsed := time.Since(sw.start).Seconds()
	sw.Header().Set(ProcessTimeHeader, fmt.Sprintf("%.4f", elapsed))
	sw.Header().Set(APIVersionHeader, sw.version)
}

func (sw *stampWriter) WriteHeader(code int) {
	sw.stamp()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *stampWriter) Write(b []byte) (int, error) {
	sw.stamp()
	return sw.ResponseWriter.Write(b)
}

func (sw *stampWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func (a *API) stampMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &stampWriter{
			ResponseWriter: w,
			start:          time.Now(),
			version:        a.cfg.Server.Version,
		}
		next.ServeHTTP(sw, r)
		sw.stamp()
	})
}

// statusWriter captures the response status for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		a.log.Info("request",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

// corsMiddleware applies the configured origin allow-list with
// credentials enabled, echoing the specific origin rather than a
// wildcard. The literal origin "null" is admitted when listed, which
// covers pages opened from file://.
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		if origin == "" {
			// Same-origin or non-browser request.
			next.ServeHTTP(w, r)
			return
		}

		if !a.isOriginAllowed(origin) {
			if r.Method == http.MethodOptions {
				writeError(w, http.StatusForbidden, "CORS origin not allowed.")
				return
			}
			// Process without CORS headers; the browser blocks the
			// response.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders(r))
		w.Header().Set("Access-Control-Max-Age", "600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) isOriginAllowed(origin string) bool {
	for _, allowed := range a.cfg.CORS.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// allowHeaders echoes whatever the preflight asked for, falling back
// to the usual set.
func allowHeaders(r *http.Request) string {
	if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		return requested
	}
	return strings.Join([]string{"Content-Type", "X-API-Key"}, ", ")
}
