package idle

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vango-dev/fiber/pkg/fiber"
)

// DefaultFrameBudget is the time granted to the callbacks of one frame.
const DefaultFrameBudget = 16 * time.Millisecond

// ErrStopped is returned by Do when the loop stops before running fn.
var ErrStopped = errors.New("idle: loop stopped")

type request struct {
	cb      func(fiber.Deadline)
	at      time.Time
	timeout time.Duration
}

// Loop is a frame-based idle callback loop.
type Loop struct {
	frame  time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	idle     []request
	dispatch []func()
	wake     chan struct{}
	done     chan struct{}
	frames   uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithFrameBudget sets the budget of one frame.
func WithFrameBudget(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frame = d
		}
	}
}

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		frame:  DefaultFrameBudget,
		logger: slog.Default().With("component", "idle"),
		now:    time.Now,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ fiber.IdleRequester = (*Loop)(nil)

// RequestIdle queues cb for the next frame. It never blocks and may be
// called from any goroutine, including from inside a callback.
func (l *Loop) RequestIdle(cb func(fiber.Deadline), timeout time.Duration) {
	l.mu.Lock()
	l.idle = append(l.idle, request{cb: cb, at: l.now(), timeout: timeout})
	l.mu.Unlock()
	l.signal()
}

// Dispatch queues fn to run on the loop goroutine before the next frame.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.dispatch = append(l.dispatch, fn)
	l.mu.Unlock()
	l.signal()
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	l.Dispatch(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Frames returns the number of frames run so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes dispatched functions and idle callbacks until ctx is done.
// It must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	l.logger.Debug("idle loop started", "frame_budget", l.frame)

	for {
		l.mu.Lock()
		dispatch := l.dispatch
		l.dispatch = nil
		l.mu.Unlock()

		for _, fn := range dispatch {
			l.safely("dispatch", fn)
		}

		l.mu.Lock()
		batch := l.idle
		l.idle = nil
		l.mu.Unlock()

		if len(batch) > 0 {
			l.runFrame(batch)
		} else {
			select {
			case <-l.wake:
			case <-ctx.Done():
				l.logger.Debug("idle loop stopped")
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("idle loop stopped")
			return ctx.Err()
		default:
		}
	}
}

func (l *Loop) runFrame(batch []request) {
	start := l.now()
	end := start.Add(l.frame)
	for _, r := range batch {
		d := &deadline{
			end:      end,
			now:      l.now,
			timedOut: r.timeout > 0 && start.Sub(r.at) > r.timeout,
		}
		l.safely("idle callback", func() { r.cb(d) })
	}

	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
}

func (l *Loop) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(what+" panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// deadline is the fiber.Deadline of one frame.
type deadline struct {
	end      time.Time
	now      func() time.Time
	timedOut bool
}

func (d *deadline) TimeRemaining() time.Duration {
	if r := d.end.Sub(d.now()); r > 0 {
		return r
	}
	return 0
}

func (d *deadline) DidTimeout() bool { return d.timedOut }
