package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Config for creating a new logger
type Config struct {
	Output   io.Writer
	MinLevel Level
	UseColor bool
	JSON     bool
}

// Logger provides structured logging for a single component.
// The backing zerolog logger is resolved on every call so that
// package-level loggers created before Init still honor it.
type Logger struct {
	component string
	fields    map[string]interface{}
}

var (
	mu   sync.RWMutex
	root zerolog.Logger
	set  bool
)

// Init (re)configures the process-wide logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var w io.Writer = cfg.Output
	if !cfg.JSON {
		w = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			NoColor:    !cfg.UseColor,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	z := zerolog.New(w).Level(cfg.MinLevel.zerolog()).With().Timestamp().Logger()

	mu.Lock()
	root = z
	set = true
	mu.Unlock()

	// Redirect standard log to our logger
	log.SetOutput(&logAdapter{logger: &Logger{component: "STDLIB"}})
	log.SetFlags(0)
}

// logAdapter adapts standard log to our logger
type logAdapter struct {
	logger *Logger
}

func (a *logAdapter) Write(p []byte) (n int, err error) {
	a.logger.Info("%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

func current() zerolog.Logger {
	mu.RLock()
	if set {
		defer mu.RUnlock()
		return root
	}
	mu.RUnlock()

	Init(Config{Output: os.Stdout, MinLevel: INFO, UseColor: true})
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Default returns the logger without a component.
func Default() *Logger {
	return &Logger{}
}

// WithComponent creates a logger with a component name
func WithComponent(component string) *Logger {
	return &Logger{component: component}
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &Logger{
		component: l.component,
		fields:    newFields,
	}
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	z := current()
	ev := z.WithLevel(level.zerolog())
	if ev == nil {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if l.component != "" {
		ev = ev.Str("component", l.component)
	}
	if len(l.fields) > 0 {
		ev = ev.Fields(l.fields)
	}
	ev.Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

// Package-level convenience functions

func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }
func Info(msg string, args ...interface{})  { Default().Info(msg, args...) }
func Warn(msg string, args ...interface{})  { Default().Warn(msg, args...) }
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }
