package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/roster-import/pkg/configuration"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request-id"
)

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code
func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RealIPHeader)) > 0 {
		return r.Header.Get(conf.RealIPHeader)
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RequestIDHeader)) > 0 {
		return r.Header.Get(conf.RequestIDHeader)
	}
	return uuid.New().String()
}

// WithLogger attaches a request-scoped *logrus.Entry to the context and logs
// every request with its duration and final status.
func WithLogger(logger *logrus.Logger, conf *configuration.Configuration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"path":       r.RequestURI,
				"method":     r.Method,
				"ip":         getRealIP(r, conf),
			})

			ctx := context.WithValue(r.Context(), loggerKey, fieldsLogger)
			ctx = context.WithValue(ctx, requestIDKey, requestID)

			capture := &responseCaptureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r.WithContext(ctx))

			fieldsLogger.WithFields(logrus.Fields{
				"status":   capture.Status(),
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}

// UseLogger returns the request-scoped logger. Outside of a request it falls
// back to the standard logger so callers never get nil.
func UseLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// UseRequestID returns the request id set by WithLogger, or "".
func UseRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
