package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zlog is an optional structured logger. If unset, the zerolog global logger
// is used.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &log.Logger
}

func logError(err error, msg string) {
	logger().Error().Err(err).Msg(msg)
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("SIGNALSCOPE_HTTP_LOG_LEVEL"))

// SetDefaultLogLevel overrides the request log level used when a request
// carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// AccessLog writes one entry per request at the request's log level. Server
// errors are logged at LevelError and above, everything else at LevelInfo.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if lvl == LevelOff {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var e *zerolog.Event
		switch {
		case status >= 500:
			e = logger().Error()
		case lvl >= LevelInfo:
			e = logger().Info()
		default:
			return
		}
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			e = e.Str("request_id", rid)
		}
		e.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Msg("request")
	})
}

// streamLog tags stream lifecycle entries with the transport and request id.
type streamLog struct {
	lvl       LogLevel
	transport string
	rid       string
	start     time.Time
}

func newStreamLog(r *http.Request, transport string) streamLog {
	return streamLog{
		lvl:       requestLogLevel(r),
		transport: transport,
		rid:       middleware.GetReqID(r.Context()),
		start:     time.Now(),
	}
}

func (s streamLog) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("transport", s.transport)
	if s.rid != "" {
		e = e.Str("request_id", s.rid)
	}
	return e
}

func (s streamLog) opened(subscriber string) {
	if s.lvl >= LevelInfo {
		s.event(logger().Info()).Str("subscriber", subscriber).Msg("stream open")
	}
}

func (s streamLog) frame(typ string) {
	if s.lvl >= LevelDebug {
		s.event(logger().Debug()).Str("type", typ).Msg("stream frame")
	}
}

func (s streamLog) closed(dropped uint64, err error) {
	if err != nil && s.lvl >= LevelError {
		s.event(logger().Error()).Err(err).Uint64("dropped", dropped).Dur("dur", time.Since(s.start)).Msg("stream end")
		return
	}
	if s.lvl >= LevelInfo {
		s.event(logger().Info()).Uint64("dropped", dropped).Dur("dur", time.Since(s.start)).Msg("stream end")
	}
}
