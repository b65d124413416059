package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/landing-page/internal/pkg/logger"
)

// accessLogFormatter writes chi access log entries through the service logger.
type accessLogFormatter struct {
	log logger.Logger
}

func (f accessLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &accessLogEntry{log: f.log.With(
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)}
}

type accessLogEntry struct {
	log logger.Logger
}

func (e *accessLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.log.Info("request completed", "status", status, "bytes", bytes, "elapsed_ms", elapsed.Milliseconds())
}

func (e *accessLogEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("request panicked", "panic", v, "stack", string(stack))
}
