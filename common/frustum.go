package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix whose clip
// depth range is [0, 1] with reversed depth (near = 1). Uses the Gribb/Hartmann method.
// With an infinite far plane the far plane degenerates to a zero normal and a positive
// distance, which accepts every point.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	// For column-major matrix M, element M[row][col] is at index col*4 + row.
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(idx int, v mgl32.Vec4) {
		f.Planes[idx] = Plane{Normal: v.Vec3(), Distance: v[3]}
	}
	set(FrustumLeft, r3.Add(r0))
	set(FrustumRight, r3.Sub(r0))
	set(FrustumBottom, r3.Add(r1))
	set(FrustumTop, r3.Sub(r1))
	// reversed depth: z <= w is the near plane, z >= 0 the far plane
	set(FrustumNear, r3.Sub(r2))
	set(FrustumFar, r2)

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := float32(math.Sqrt(float64(p.Normal.Dot(p.Normal))))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}

// IntersectsAabb reports whether aabb, placed in the world by model, is at least partially
// inside the frustum. The test projects the box's oriented half extents onto each plane normal.
//
// Parameters:
//   - aabb: the local-space bounding box
//   - model: the world matrix of the box
//
// Returns:
//   - bool: false only when the box is fully outside some plane
func (f *Frustum) IntersectsAabb(aabb Aabb, model mgl32.Mat4) bool {
	center := TransformPoint(model, aabb.Center)
	axes := [3]mgl32.Vec3{
		model.Col(0).Vec3().Mul(aabb.HalfExtents[0]),
		model.Col(1).Vec3().Mul(aabb.HalfExtents[1]),
		model.Col(2).Vec3().Mul(aabb.HalfExtents[2]),
	}
	for _, p := range f.Planes {
		radius := float32(0)
		for _, a := range axes {
			radius += float32(math.Abs(float64(p.Normal.Dot(a))))
		}
		if p.Normal.Dot(center)+p.Distance+radius < 0 {
			return false
		}
	}
	return true
}
