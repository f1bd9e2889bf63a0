package sentryx

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

var (
	initOnce sync.Once
	enabled  bool
)

// Options configures error reporting. An empty DSN leaves reporting disabled.
type Options struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

func Init(opts Options) error {
	var initErr error
	initOnce.Do(func() {
		if opts.DSN == "" {
			return
		}
		if opts.Environment == "" {
			opts.Environment = "unknown"
		}

		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.DSN,
			Environment:      opts.Environment,
			Release:          opts.Release,
			ServerName:       opts.ServerName,
			AttachStacktrace: true,
		}); err != nil {
			initErr = fmt.Errorf("sentry init: %w", err)
			return
		}
		enabled = true
	})
	return initErr
}

func Enabled() bool {
	return enabled
}

func CaptureError(err error, message string, args ...any) {
	if !enabled {
		return
	}
	if err == nil {
		return
	}

	msg := message
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if msg != "" {
			scope.SetTag("log_message", msg)
		}
		sentry.CaptureException(err)
	})
}

func CaptureMessage(level sentry.Level, message string, args ...any) {
	if !enabled {
		return
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		sentry.CaptureMessage(message)
	})
}

func Flush(timeout time.Duration) {
	if !enabled {
		return
	}
	sentry.Flush(timeout)
}
