package scan

import "sync"

// Aggregator collects accepted samples into a Collection. It performs no
// deduplication, reordering, or eviction; collections grow monotonically for
// the lifetime of a session.
//
// Writes come from the single ingestion context; the mutex exists only so
// that Snapshot can be called from other goroutines (renderers, persistence)
// while ingestion is running.
type Aggregator struct {
	mu  sync.Mutex
	col *Collection
}

// NewAggregator creates an aggregator over an empty collection.
func NewAggregator() *Aggregator {
	return &Aggregator{col: NewCollection()}
}

// Accept converts the sample to a cartesian point and appends it to the flat
// sequence, the per-vertical-angle grouping (skipped for angle-less schemas),
// and the raw tuple log.
func (a *Aggregator) Accept(s Sample) {
	point := s.Cartesian()
	angle, hasAngle := s.VerticalAngle()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.col.add(point, angle, hasAngle, s.Fields())
}

// Len returns the number of accepted samples.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.col.Len()
}

// Snapshot returns an immutable copy of the current collection.
func (a *Aggregator) Snapshot() *Collection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.col.Snapshot()
}
