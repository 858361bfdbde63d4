// Package counter provides simple 64-bit counters, used by the router to
// track how many messages of each kind it has processed. The counts are
// kept per message type across all neighbors, not per neighbor.
package counter

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Counter is a 64 bit counter safe for concurrent increments.
type Counter struct {
	count uint64
}

// New creates a new 64 bit counter.
func New() *Counter {
	return new(Counter)
}

// Reset zeroes the counter.
func (c *Counter) Reset() {
	atomic.StoreUint64(&c.count, 0)
}

// Increment adds one to the counter.
func (c *Counter) Increment() {
	atomic.AddUint64(&c.count, 1)
}

// Value returns the counter's current value.
func (c *Counter) Value() uint64 {
	return atomic.LoadUint64(&c.count)
}

// String implements fmt.Stringer.
func (c *Counter) String() string {
	return fmt.Sprintf("%d", c.Value())
}

// ByType tracks a Counter per message type, keyed by the string form of
// bgp.MessageType, so the transport loop can report a per-type breakdown
// of what it has seen without the router core depending on logging.
type ByType struct {
	mu     sync.Mutex
	counts map[string]*Counter
}

// NewByType creates an empty set of per-type counters.
func NewByType() *ByType {
	return &ByType{counts: make(map[string]*Counter)}
}

// Increment bumps the counter for the given message type, creating it on
// first use.
func (b *ByType) Increment(msgType string) {
	b.mu.Lock()
	c, ok := b.counts[msgType]
	if !ok {
		c = New()
		b.counts[msgType] = c
	}
	b.mu.Unlock()
	c.Increment()
}

// Snapshot returns a copy of the current per-type values.
func (b *ByType) Snapshot() map[string]uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]uint64, len(b.counts))
	for k, v := range b.counts {
		out[k] = v.Value()
	}
	return out
}
