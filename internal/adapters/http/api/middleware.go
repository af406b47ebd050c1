// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// errorKinds labels error responses in the per-component error counter.
var errorKinds = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "infeasible",
	http.StatusTooManyRequests:     "busy",
	http.StatusServiceUnavailable:  "unavailable",
}

// MetricsMiddleware records request count, latency and error kind for
// endpoint, and logs the request at debug level.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.status()
		code := strconv.Itoa(status)
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(elapsed.Microseconds())/1000)
		if status >= http.StatusBadRequest {
			metrics.RecordErrorByComponent("http_"+endpoint, errorKind(status))
		}

		logger.Get().Named("http").Debug(r.Context(), "request served",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Duration("elapsed", elapsed),
		)
	}
}

func errorKind(status int) string {
	if kind, ok := errorKinds[status]; ok {
		return kind
	}
	if status >= http.StatusInternalServerError {
		return "server_error"
	}
	return "client_error"
}

// statusRecorder remembers the first status written to the response.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}
