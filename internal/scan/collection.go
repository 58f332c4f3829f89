package scan

import (
	"math"
	"sort"
)

// Collection is the aggregate result of a session: the flat ordered point
// sequence, a grouping by vertical angle, and the raw unconverted tuples for
// lossless export. It is an append-only arena — groups hold indices into the
// flat sequence rather than duplicating point data, and nothing is ever
// removed or reordered.
//
// A Collection is written by a single ingestion context. Readers take an
// immutable Snapshot instead of holding a reference to the live collection.
type Collection struct {
	points []CartesianPoint
	// angles[i] is the vertical angle of points[i], NaN for schemas
	// without one.
	angles []float64
	groups map[float64][]int
	raw    [][]float64
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{groups: make(map[float64][]int)}
}

// add appends one converted point with its metadata. verticalAngle is keyed
// by exact float equality; hasAngle false skips grouping (3-field schema).
func (c *Collection) add(p CartesianPoint, verticalAngle float64, hasAngle bool, raw []float64) {
	idx := len(c.points)
	c.points = append(c.points, p)
	if hasAngle {
		c.angles = append(c.angles, verticalAngle)
		c.groups[verticalAngle] = append(c.groups[verticalAngle], idx)
	} else {
		c.angles = append(c.angles, math.NaN())
	}
	c.raw = append(c.raw, raw)
}

// Len returns the number of accepted points.
func (c *Collection) Len() int { return len(c.points) }

// Points returns a copy of the flat point sequence in arrival order.
func (c *Collection) Points() []CartesianPoint {
	out := make([]CartesianPoint, len(c.points))
	copy(out, c.points)
	return out
}

// PointAt returns the i-th point in arrival order.
func (c *Collection) PointAt(i int) CartesianPoint { return c.points[i] }

// VerticalAngleAt returns the vertical angle recorded for the i-th point and
// whether one exists.
func (c *Collection) VerticalAngleAt(i int) (float64, bool) {
	a := c.angles[i]
	if math.IsNaN(a) {
		return 0, false
	}
	return a, true
}

// Angles returns the distinct vertical-angle group keys in ascending order.
func (c *Collection) Angles() []float64 {
	keys := make([]float64, 0, len(c.groups))
	for k := range c.groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// Group returns the points recorded at the given vertical angle, in arrival
// order. The angle must match the recorded key exactly; no tolerance is
// applied.
func (c *Collection) Group(verticalAngle float64) []CartesianPoint {
	indices := c.groups[verticalAngle]
	out := make([]CartesianPoint, len(indices))
	for i, idx := range indices {
		out[i] = c.points[idx]
	}
	return out
}

// GroupSize returns the number of points recorded at the given vertical angle.
func (c *Collection) GroupSize(verticalAngle float64) int {
	return len(c.groups[verticalAngle])
}

// Raw returns a copy of the raw tuple log: the original numeric fields of
// each accepted line, unconverted, in arrival order.
func (c *Collection) Raw() [][]float64 {
	out := make([][]float64, len(c.raw))
	for i, tuple := range c.raw {
		t := make([]float64, len(tuple))
		copy(t, tuple)
		out[i] = t
	}
	return out
}

// Snapshot returns a deep copy of the collection. The copy is safe to read
// while ingestion continues on the original.
func (c *Collection) Snapshot() *Collection {
	snap := &Collection{
		points: make([]CartesianPoint, len(c.points)),
		angles: make([]float64, len(c.angles)),
		groups: make(map[float64][]int, len(c.groups)),
		raw:    make([][]float64, len(c.raw)),
	}
	copy(snap.points, c.points)
	copy(snap.angles, c.angles)
	for k, indices := range c.groups {
		g := make([]int, len(indices))
		copy(g, indices)
		snap.groups[k] = g
	}
	for i, tuple := range c.raw {
		t := make([]float64, len(tuple))
		copy(t, tuple)
		snap.raw[i] = t
	}
	return snap
}
