package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"
)

// Setup builds the process logger. Debug mode switches to a console writer with stack traces.
func Setup(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// Requests attaches a request scoped logger to the context and writes one access
// log line per request once the handler returns.
type Requests struct {
	logger zerolog.Logger
	fields []func(r *http.Request, c zerolog.Context) zerolog.Context
}

// NewRequests creates the access log middleware. Each field func may add request
// attributes, such as a request id or client ip, to the scoped logger.
func NewRequests(logger zerolog.Logger, fields ...func(r *http.Request, c zerolog.Context) zerolog.Context) *Requests {
	return &Requests{logger: logger, fields: fields}
}

func (l *Requests) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := l.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path)
		for _, field := range l.fields {
			c = field(r, c)
		}
		reqLogger := c.Logger()

		r = r.WithContext(reqLogger.WithContext(r.Context()))

		m := httpsnoop.CaptureMetrics(next, w, r)

		event := reqLogger.Info()
		if m.Code >= http.StatusInternalServerError {
			event = reqLogger.Error()
		}
		event.
			Int("status", m.Code).
			Int64("bytes", m.Written).
			Dur("duration", m.Duration).
			Msg("http request")
	})
}
