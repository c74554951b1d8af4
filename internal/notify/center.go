package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible when none is configured.
const DefaultTTL = 5 * time.Second

// Center keeps recent notifications in memory. Entries older than TTL are
// dropped lazily on the next read or write.
type Center struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notification
}

// NewCenter builds a Center. ttl <= 0 selects DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now}
}

// WithClock overrides the time source.
func (c *Center) WithClock(now func() time.Time) *Center {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *Center) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now().UTC()
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	c.expire()
	c.items = append(c.items, n)
}

// Active returns the notifications still within their TTL, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire()
	return slices.Clone(c.items)
}

// Dismiss removes a notification before it expires.
func (c *Center) Dismiss(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrUnknownNotification
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

func (c *Center) expire() {
	cutoff := c.now().Add(-c.ttl)
	c.items = slices.DeleteFunc(c.items, func(n Notification) bool {
		return !n.CreatedAt.After(cutoff)
	})
}
