// Package polyline renders polylines: ordered runs of 3D points drawn as screen-space
// thickened strips. A Polyline asset keeps its points in a fixed-capacity ring with disjoint
// segment ranges; the render side uploads the ring as an instance-stepped vertex buffer and
// draws one six-vertex quad per instance over each range.
package polyline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCapacity is the vertex and range capacity of a polyline created without WithCapacity.
const DefaultCapacity = 1024

// IndexRange is a half-open [Start, End) run of vertex slots forming one connected line.
// The zero range is the unused sentinel and is never drawn.
type IndexRange struct {
	Start, End uint32
}

// IsEmpty reports whether r is the (0, 0) sentinel.
func (r IndexRange) IsEmpty() bool {
	return r.Start == 0 && r.End == 0
}

// Len returns the number of vertex slots in r.
func (r IndexRange) Len() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r IndexRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Polyline is a fixed-capacity ring of vertex positions with a parallel ring of segment
// ranges. Neither ring ever grows. A Polyline is owned by one writer; the render side works
// on clones.
type Polyline struct {
	capacity int

	vertices []mgl32.Vec3
	ranges   []IndexRange

	// starts maps a vertex slot to the range whose Start is that slot, or -1.
	starts []int

	currentVertex int
	currentIndex  int
}

// NewPolyline creates an empty polyline. Every range starts as the sentinel.
//
// Parameters:
//   - opts: a variadic list of PolylineBuilderOption functions to configure the polyline
//
// Returns:
//   - *Polyline: the new polyline
func NewPolyline(opts ...PolylineBuilderOption) *Polyline {
	p := &Polyline{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(p)
	}
	if p.capacity <= 0 {
		panic(fmt.Sprintf("polyline: capacity must be positive, got %d", p.capacity))
	}
	p.vertices = make([]mgl32.Vec3, p.capacity)
	p.ranges = make([]IndexRange, p.capacity)
	p.starts = make([]int, p.capacity)
	for i := range p.starts {
		p.starts[i] = -1
	}
	return p
}

// Capacity returns the number of vertex slots, which is also the number of range slots.
func (p *Polyline) Capacity() int {
	return len(p.vertices)
}

// Vertices returns the vertex ring. The slice is owned by the polyline and must not be
// modified.
func (p *Polyline) Vertices() []mgl32.Vec3 {
	return p.vertices
}

// IndexRanges returns the range ring. The slice is owned by the polyline and must not be
// modified.
func (p *Polyline) IndexRanges() []IndexRange {
	return p.ranges
}

// CurrentVertexIndex returns the slot the next vertex is written to.
func (p *Polyline) CurrentVertexIndex() int {
	return p.currentVertex
}

// CurrentIndexIndex returns the index of the range being extended.
func (p *Polyline) CurrentIndexIndex() int {
	return p.currentIndex
}

// AddVertex writes v at the vertex cursor and advances it.
//
// A connected vertex extends the current range to end just past it. A disconnected vertex
// advances to the next range slot and starts a new one-vertex range there. When the cursor
// wraps to slot 0 a connected vertex also starts a new range, so a range never wraps.
//
// Writing a slot trims it off the front of the older range that started there; a range
// trimmed to nothing becomes the sentinel.
//
// Parameters:
//   - v: the vertex position
//   - connected: whether v continues the current line
func (p *Polyline) AddVertex(v mgl32.Vec3, connected bool) {
	capacity := len(p.vertices)
	vi := p.currentVertex
	startNew := !connected || (vi == 0 && p.ranges[p.currentIndex].End == uint32(capacity))

	if owner := p.starts[vi]; owner >= 0 {
		p.trimFront(owner)
	}
	p.vertices[vi] = v

	if startNew {
		next := (p.currentIndex + 1) % len(p.ranges)
		p.unregister(next)
		p.ranges[next] = IndexRange{Start: uint32(vi), End: uint32(vi + 1)}
		p.starts[vi] = next
		p.currentIndex = next
	} else {
		cur := &p.ranges[p.currentIndex]
		if cur.IsEmpty() {
			*cur = IndexRange{Start: uint32(vi), End: uint32(vi + 1)}
			p.starts[vi] = p.currentIndex
		} else {
			cur.End = uint32(vi + 1)
		}
	}

	p.currentVertex = (vi + 1) % capacity
}

// trimFront drops the first slot of range idx.
func (p *Polyline) trimFront(idx int) {
	r := &p.ranges[idx]
	p.starts[r.Start] = -1
	r.Start++
	if r.Start >= r.End {
		*r = IndexRange{}
		return
	}
	p.starts[r.Start] = idx
}

// unregister clears the start mapping of range idx before the slot is reused.
func (p *Polyline) unregister(idx int) {
	r := p.ranges[idx]
	if r.IsEmpty() {
		return
	}
	if p.starts[r.Start] == idx {
		p.starts[r.Start] = -1
	}
}

// Clear resets both cursors and every range to the sentinel. Vertex data is kept but no
// longer drawn.
func (p *Polyline) Clear() {
	clear(p.ranges)
	for i := range p.starts {
		p.starts[i] = -1
	}
	p.currentVertex = 0
	p.currentIndex = 0
}

// Clone returns a deep copy of p.
func (p *Polyline) Clone() *Polyline {
	c := &Polyline{
		capacity:      p.capacity,
		vertices:      make([]mgl32.Vec3, len(p.vertices)),
		ranges:        make([]IndexRange, len(p.ranges)),
		starts:        make([]int, len(p.starts)),
		currentVertex: p.currentVertex,
		currentIndex:  p.currentIndex,
	}
	copy(c.vertices, p.vertices)
	copy(c.ranges, p.ranges)
	copy(c.starts, p.starts)
	return c
}

// LiveRanges returns the non-sentinel ranges in ring order.
func (p *Polyline) LiveRanges() []IndexRange {
	var out []IndexRange
	for _, r := range p.ranges {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}

// Aabb returns the bounds of every vertex inside a live range.
//
// Returns:
//   - common.Aabb: the local-space bounds
//   - bool: false if no range is live
func (p *Polyline) Aabb() (common.Aabb, bool) {
	var points []mgl32.Vec3
	for _, r := range p.ranges {
		if r.IsEmpty() {
			continue
		}
		points = append(points, p.vertices[r.Start:r.End]...)
	}
	return common.AabbFromPoints(points)
}
