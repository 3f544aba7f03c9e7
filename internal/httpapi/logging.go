package httpapi

import (
	"expvar"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"smartop/fleet-service/internal/logs"
)

var (
	requestsTotal  = expvar.NewInt("requests_total")
	requestsErrors = expvar.NewInt("requests_errors_total")
)

type statusWriter struct {
	http.ResponseWriter
	status       int
	organization string
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(writer, r)
		duration := time.Since(start)
		requestsTotal.Add(1)
		if writer.status >= http.StatusBadRequest {
			requestsErrors.Add(1)
		}
		logs.Logger.WithFields(logrus.Fields{
			"method":       r.Method,
			"path":         r.URL.Path,
			"status":       writer.status,
			"duration_ms":  duration.Milliseconds(),
			"organization": writer.organization,
			"request_id":   requestIDFromContext(r.Context()),
			"ip":           clientIP(r),
		}).Info("request")
	})
}

// tagOrganization records the caller's organization for the access log.
func tagOrganization(w http.ResponseWriter, organizationID string) {
	if sw, ok := w.(*statusWriter); ok {
		sw.organization = organizationID
	}
}
