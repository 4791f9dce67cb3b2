package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultWindow is the trailing window the limit applies to.
const DefaultWindow = time.Minute

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Limiter is a sliding-window admission limiter. It is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time

	now     func() time.Time
	sleep   Sleeper
	onWait  func(time.Duration)
	logger  *zap.Logger
	waitLog rate.Sometimes
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleeper replaces the context-aware timer sleep.
func WithSleeper(s Sleeper) Option {
	return func(l *Limiter) {
		if s != nil {
			l.sleep = s
		}
	}
}

// WithWindow overrides the one minute window.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithLogger sets the logger used for wait notices.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWaitObserver is called with every computed wait, before sleeping.
func WithWaitObserver(fn func(time.Duration)) Option {
	return func(l *Limiter) { l.onWait = fn }
}

// New creates a limiter admitting requestsPerMinute calls per window.
// A non-positive limit disables limiting.
func New(requestsPerMinute int, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   requestsPerMinute,
		window:  DefaultWindow,
		now:     time.Now,
		sleep:   sleepContext,
		logger:  zap.NewNop(),
		waitLog: rate.Sometimes{Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(zap.String("component", "rate_limiter"))
	return l
}

// Limit returns the configured admissions per window.
func (l *Limiter) Limit() int { return l.limit }

// Admit blocks until one more call fits in the window, then records it.
// The only failure is ctx being done.
func (l *Limiter) Admit(ctx context.Context) error {
	if l.limit <= 0 {
		return ctx.Err()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := l.tryAdmit()
		if ok {
			return nil
		}

		if l.onWait != nil {
			l.onWait(wait)
		}
		l.waitLog.Do(func() {
			l.logger.Info("rate limit reached, waiting",
				zap.Int("limit", l.limit),
				zap.Duration("window", l.window),
				zap.Duration("wait", wait),
			)
		})

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAdmit prunes, compares and records under the lock. When the window is
// full it returns the time until the oldest entry leaves it.
func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		return 0, true
	}

	wait := l.window - now.Sub(l.stamps[0])
	if wait < 0 {
		wait = 0
	}
	return wait, false
}

// prune drops entries at least one window old. Stamps are appended in
// clock order, so the expired ones form a prefix.
func (l *Limiter) prune(now time.Time) {
	i := 0
	for i < len(l.stamps) && now.Sub(l.stamps[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// InWindow reports how many admissions currently count against the limit.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.stamps)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
