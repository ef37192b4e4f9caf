package handler

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// clientIP extracts the remote IP without a port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withRequestLog tags the request with an id, echoed in X-Request-ID, and
// logs one line per response.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		fields := logrus.Fields{
			"request_id":  id,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sr.status,
			"bytes":       sr.bytes,
			"remote_ip":   clientIP(r),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if r.URL.RawQuery != "" {
			fields["query"] = r.URL.RawQuery
		}
		logrus.WithFields(fields).Log(levelForStatus(sr.status), "http request")
	})
}

func levelForStatus(code int) logrus.Level {
	if code >= 500 {
		return logrus.ErrorLevel
	}
	if code >= 400 {
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}

// withRecover guards handlers against panics and returns a 500 response.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logrus.WithFields(logrus.Fields{
					"panic":      v,
					"stack":      string(debug.Stack()),
					"request_id": requestID(r.Context()),
				}).Error("panic")
				writeError(w, http.StatusInternalServerError, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
