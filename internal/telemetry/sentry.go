package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/zerolog/log"
)

// Reporter forwards errors to Sentry. The zero value and a Reporter built
// without a DSN are disabled and every method is a no-op.
type Reporter struct {
	enabled bool
}

// NewReporter initializes the Sentry client when dsn is non-empty.
func NewReporter(dsn, environment string) *Reporter {
	if dsn == "" {
		log.Info().Msg("SENTRY_DSN not set, error reporting disabled")
		return &Reporter{}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		log.Error().Err(err).Msg("sentry initialization failed")
		return &Reporter{}
	}

	log.Info().Str("env", environment).Msg("sentry initialized")
	return &Reporter{enabled: true}
}

// Enabled reports whether errors are actually sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// Middleware attaches a per-request hub and reports panics before re-panicking
// into the next recoverer. Returns a pass-through when reporting is disabled.
func (r *Reporter) Middleware() func(http.Handler) http.Handler {
	if !r.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, WaitForDelivery: false})
	return h.Handle
}

// CaptureError reports err on the request's hub, falling back to the global hub.
func (r *Reporter) CaptureError(ctx context.Context, err error) {
	if !r.Enabled() || err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// Close flushes buffered events.
func (r *Reporter) Close() {
	if !r.Enabled() {
		return
	}
	sentry.Flush(2 * time.Second)
}
