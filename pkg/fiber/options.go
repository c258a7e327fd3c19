package fiber

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultIdleTimeout is the timeout hint passed with every idle request.
	DefaultIdleTimeout = 500 * time.Millisecond

	// DefaultYieldThreshold is the remaining time below which a render pass
	// yields.
	DefaultYieldThreshold = time.Millisecond
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records scheduler metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithTracerProvider traces render passes with tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Scheduler) {
		if tp != nil {
			s.tracer = tp.Tracer(defaultTracerName)
		}
	}
}

// WithIdle lets the scheduler drive itself through the host's idle
// primitive. Without it the host calls WorkLoop directly.
func WithIdle(req IdleRequester, timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.idle = req
		if timeout > 0 {
			s.idleTimeout = timeout
		}
	}
}

// WithYieldThreshold sets the remaining time below which work yields.
func WithYieldThreshold(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.yieldThreshold = d
		}
	}
}

// WithErrorHandler receives errors from passes driven by the idle primitive.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithCommitHook is called after every successful commit, once the new tree
// is current and the scheduler is idle. The hook may schedule another root.
func WithCommitHook(fn func(CommitInfo)) Option {
	return func(s *Scheduler) { s.onCommit = fn }
}
