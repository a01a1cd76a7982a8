// Package notify holds the transient success and error messages shown to
// the operator after every operation.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

// Level distinguishes success from failure.
type Level int

const (
	Success Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "success"
}

// Notification is one toast.
type Notification struct {
	ID        uint64
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Center collects notifications and expires them after the TTL.
type Center struct {
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	nextID      uint64
	active      []Notification
	subscribers []func(Notification)
}

// NewCenter uses DefaultTTL when ttl is not positive.
func NewCenter(ttl time.Duration, logger *zap.Logger) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{ttl: ttl, logger: logger.Named("notify"), now: time.Now}
}

// Success records a success toast.
func (c *Center) Success(message string) Notification {
	return c.push(Success, message)
}

// Error records an error toast.
func (c *Center) Error(message string) Notification {
	return c.push(Error, message)
}

// Subscribe registers fn for every future notification. fn runs on the
// goroutine that raised the notification.
func (c *Center) Subscribe(fn func(Notification)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Active returns the notifications that have not expired, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

func (c *Center) push(level Level, message string) Notification {
	c.mu.Lock()
	c.pruneLocked()
	c.nextID++
	now := c.now()
	n := Notification{
		ID:        c.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.active = append(c.active, n)
	subscribers := append([]func(Notification){}, c.subscribers...)
	c.mu.Unlock()

	c.logger.Debug("notification", zap.Stringer("level", level), zap.String("message", message))
	for _, fn := range subscribers {
		fn(n)
	}
	return n
}

func (c *Center) pruneLocked() {
	now := c.now()
	kept := c.active[:0]
	for _, n := range c.active {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.active = kept
}
