package daemon

import (
	"sync"
	"time"
)

// Lifecycle fires a shutdown after a period without activity.
type Lifecycle struct {
	mu           sync.Mutex
	timer        *time.Timer
	startTime    time.Time
	lastActivity time.Time
	timeout      time.Duration
	done         chan struct{}
	once         sync.Once
}

// NewLifecycle creates a lifecycle that shuts down after timeout of inactivity.
// A timeout of zero never expires.
func NewLifecycle(timeout time.Duration) *Lifecycle {
	now := time.Now()
	l := &Lifecycle{
		startTime:    now,
		lastActivity: now,
		timeout:      timeout,
		done:         make(chan struct{}),
	}
	if timeout > 0 {
		l.timer = time.AfterFunc(timeout, l.fire)
	}
	return l
}

// Touch records activity and restarts the inactivity timer.
func (l *Lifecycle) Touch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActivity = time.Now()
	if l.timer != nil {
		l.timer.Reset(l.timeout)
	}
}

// Pause stops the inactivity timer until the next Touch. Work that produces no
// requests for a long time, like a running compiler, pauses the lifecycle.
func (l *Lifecycle) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
}

// IdleRemaining returns the time left until the inactivity shutdown.
func (l *Lifecycle) IdleRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timeout <= 0 {
		return 0
	}
	return max(l.timeout-time.Since(l.lastActivity), 0)
}

// Uptime returns how long the lifecycle has been running.
func (l *Lifecycle) Uptime() time.Duration {
	return time.Since(l.startTime)
}

// LastActivity returns the time of the last recorded activity.
func (l *Lifecycle) LastActivity() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastActivity
}

// Done returns a channel that is closed once the lifecycle ended.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Shutdown ends the lifecycle immediately. It is idempotent.
func (l *Lifecycle) Shutdown() {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.fire()
}

func (l *Lifecycle) fire() {
	l.once.Do(func() {
		close(l.done)
	})
}
