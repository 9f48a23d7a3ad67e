package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init sets up the process logger: human readable in debug mode, JSON otherwise
func Init(debug bool) {
	var w io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if debug {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zlog = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "stagesite").
		Logger()
}

// Get returns the process logger
func Get() *zerolog.Logger {
	return &zlog
}

// SetOutput is mostly useful in tests
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}

// GinMiddleware writes one line per request
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := zlog.Info()
		if status >= 500 {
			event = zlog.Error()
		} else if status >= 400 {
			event = zlog.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
