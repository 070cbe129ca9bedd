package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/savid/iptv-livegen/internal/metrics"
)

// unmatchedRoute labels requests that reached the middleware without a route.
const unmatchedRoute = "unmatched"

// LoggingMiddleware logs each request at debug level under its route template
// and records its status and latency on recorder. A nil recorder only logs.
func LoggingMiddleware(logger *logrus.Logger, recorder *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeTemplate(r)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			recorder.Request(route, sw.status, elapsed)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"route":    route,
				"status":   sw.status,
				"bytes":    sw.bytes,
				"duration": elapsed.String(),
				"remote":   r.RemoteAddr,
			}).Debug("Served request")
		})
	}
}

// routeTemplate keeps metric labels bounded by naming the matched route rather
// than the raw path.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}

// statusWriter remembers the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(status int) {
	if sw.wroteHeader {
		return
	}
	sw.status = status
	sw.wroteHeader = true
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.WriteHeader(http.StatusOK)
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}
