package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

// New builds a logger writing to stdout.
func New() *Logger {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput builds a logger writing to w. Formatting and level follow
// ENVIRONMENT and LOG_LEVEL.
func NewWithOutput(w io.Writer) *Logger {
	base := logrus.New()

	// Local env = pretty console; others = JSON
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(w)
	base.SetLevel(levelFromEnv(os.Getenv("LOG_LEVEL")))

	return &Logger{Entry: logrus.NewEntry(base)}
}

func levelFromEnv(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return l.WithFields(logrus.Fields{
		"req_id":     reqID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithRun tags entries belonging to one model/prompt evaluation.
func (l *Logger) WithRun(runID, model, prompt string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"run_id": runID,
		"model":  model,
		"prompt": prompt,
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
