package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// Init configures Sentry error reporting. A missing DSN disables reporting
// without failing startup.
func Init(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return err
	}

	enabled = true
	return nil
}

// CaptureError reports an internal failure. Callers still log the error
// locally; this is the aggregated view.
func CaptureError(err error) {
	if !enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CapturePanic reports a recovered panic with its stack.
func CapturePanic(rec interface{}, stack []byte) {
	if !enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("panic", rec)
		scope.SetExtra("stack", string(stack))
		sentry.CaptureMessage("panic in request")
	})
}

// Flush drains buffered events before shutdown.
func Flush() {
	if !enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
