// Package logger provides structured logging for flinsight.
package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // console output for development
	Output io.Writer
}

var base = zerolog.New(os.Stderr).With().Timestamp().Str("service", "flinsight").Logger()

// Init replaces the package logger. It is safe to call more than once
// but is not meant to race with logging calls.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	base = zerolog.New(output).Level(level).With().Timestamp().Str("service", "flinsight").Logger()
}

// Component returns a child logger tagged with the given component name.
func Component(name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}

func Debug() *zerolog.Event { return base.Debug() }
func Info() *zerolog.Event  { return base.Info() }
func Warn() *zerolog.Event  { return base.Warn() }
func Error() *zerolog.Event { return base.Error() }

// ErrorErr logs err at error level with a message.
func ErrorErr(err error, msg string) {
	base.Error().Err(err).Msg(msg)
}

// Middleware logs one line per HTTP request after it completes.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := base.Info()
			if status >= http.StatusInternalServerError {
				ev = base.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		}()
		next.ServeHTTP(ww, r)
	})
}
