package logkafka

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/foodiehub/ordering-api/middleware"
)

const (
	traceHeader = "X-Trace-ID"
	userHeader  = "X-User-ID"
)

// statusWriter remembers the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

// Hijack is needed for websocket upgrades.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	sw.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// LoggingMiddleware emits one entry per request with its outcome and timing.
func (s *Shipper) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begun := time.Now()
		traceID := ensureTraceID(w, r)
		// only the auth middleware may set this, once the token checks out
		r.Header.Del(userHeader)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		s.Ship(context.WithoutCancel(r.Context()), LogEntry{
			Level:   levelFor(sw.status),
			Module:  "http",
			Message: "request completed",
			TraceID: traceID,
			Extra:   requestFields(r, sw.status, time.Since(begun)),
		})
	})
}

func ensureTraceID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(traceHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(traceHeader, id)
	}
	w.Header().Set(traceHeader, id)
	return id
}

func levelFor(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "error"
	case status >= http.StatusBadRequest:
		return "warn"
	}
	return "info"
}

func requestFields(r *http.Request, status int, took time.Duration) map[string]string {
	caller := r.Header.Get(userHeader)
	if caller == "" {
		caller = "anonymous"
	}
	return map[string]string{
		"user_id":     caller,
		"ip":          middleware.ClientIP(r),
		"method":      r.Method,
		"path":        r.URL.Path,
		"status":      strconv.Itoa(status),
		"duration_ms": strconv.FormatInt(took.Milliseconds(), 10),
		"user_agent":  r.UserAgent(),
	}
}
