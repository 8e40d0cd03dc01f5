package syncer

import (
	"sync"
	"time"
)

// CustomerSessionTimeout ends a table's login ten minutes after it started.
const CustomerSessionTimeout = 600000 * time.Millisecond

// CallThrottleWindow is the minimum gap between two waiter calls.
const CallThrottleWindow = 30 * time.Second

// AutoLogout is a one-shot timer started at customer login. Activity does
// not extend it; only Cancel stops it.
type AutoLogout struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Start arms the timer, replacing any earlier one.
func (a *AutoLogout) Start(after time.Duration, onExpire func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(after, onExpire)
}

// Cancel stops a pending expiry. It reports whether one was pending.
func (a *AutoLogout) Cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer == nil {
		return false
	}
	stopped := a.timer.Stop()
	a.timer = nil
	return stopped
}

// CallThrottle allows one waiter call per window, measured from the last
// successful call.
type CallThrottle struct {
	Window time.Duration
	Now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewCallThrottle() *CallThrottle {
	return &CallThrottle{Window: CallThrottleWindow, Now: time.Now}
}

// Remaining is how long until the next call is allowed; zero means now.
func (t *CallThrottle) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		return 0
	}
	left := t.Window - t.Now().Sub(t.last)
	if left < 0 {
		return 0
	}
	return left
}

// Record marks a successful call.
func (t *CallThrottle) Record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.Now()
}
