package polyline

import "github.com/go-gl/mathgl/mgl32"

// PolylineBuilderOption is a functional option used to configure a Polyline during construction.
type PolylineBuilderOption func(*Polyline)

// WithCapacity sets the number of vertex slots and range slots.
//
// Parameters:
//   - n: the capacity, which must be positive
//
// Returns:
//   - PolylineBuilderOption: a function that sets the capacity
func WithCapacity(n int) PolylineBuilderOption {
	return func(p *Polyline) {
		p.capacity = n
	}
}

// FromPoints creates a polyline holding points as one connected line, sized to fit them.
//
// Parameters:
//   - points: the line's vertices in order
//
// Returns:
//   - *Polyline: the new polyline
func FromPoints(points ...mgl32.Vec3) *Polyline {
	p := NewPolyline(WithCapacity(max(len(points), 1)))
	for i, v := range points {
		p.AddVertex(v, i > 0)
	}
	return p
}
