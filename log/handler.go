package log

import (
	"net/http"
	"time"

	"go.uber.org/atomic"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type loggingHandler struct {
	handler  http.Handler
	logger   Logger
	sequence *atomic.Uint64
}

// NewLoggingHandler logs every request once it has been served. Client errors are logged as warnings
// and server errors as errors.
func NewLoggingHandler(handler http.Handler, logger Logger) http.Handler {
	return &loggingHandler{
		handler:  handler,
		logger:   logger,
		sequence: atomic.NewUint64(0),
	}
}

func (h *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seq := h.sequence.Inc()
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

	h.handler.ServeHTTP(sw, r)

	keyAndValues := []interface{}{
		"seq", seq,
		"method", r.Method,
		"path", r.URL.Path,
		"status", sw.status,
		"duration", time.Since(start),
	}
	switch {
	case sw.status >= 500:
		h.logger.Error("request served", keyAndValues...)
	case sw.status >= 400:
		h.logger.Warn("request served", keyAndValues...)
	default:
		h.logger.Info("request served", keyAndValues...)
	}
}
