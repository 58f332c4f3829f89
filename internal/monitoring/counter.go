package monitoring

import "sync/atomic"

// Counter is a monotonically increasing event counter. Skipped lines and
// accepted samples are counted with it so that silently-discarded input stays
// observable without being treated as an error.
type Counter struct {
	name string
	v    atomic.Int64
}

// NewCounter creates a named counter starting at zero.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Name returns the counter's name.
func (c *Counter) Name() string { return c.name }

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) { c.v.Add(delta) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.v.Load() }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { c.v.Store(0) }
