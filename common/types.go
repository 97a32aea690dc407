// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the local translation, rotation and scale of an entity relative to its parent.
type Transform struct {
	// Translation is the position relative to the parent.
	Translation mgl32.Vec3
	// Rotation is a unit quaternion relative to the parent.
	Rotation mgl32.Quat
	// Scale is the per-axis scale factor.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// TransformFromTranslation returns an identity transform moved to the given position.
func TransformFromTranslation(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

// Matrix computes the affine matrix for this transform.
//
// Returns:
//   - mgl32.Mat4: T * R * S
func (t Transform) Matrix() mgl32.Mat4 {
	return ComposeMatrix(t.Translation, t.Rotation, t.Scale)
}

// LookingAt returns a copy of the transform rotated so its -Z axis faces target.
//
// Parameters:
//   - target: world-space point to face
//   - up: world up vector
//
// Returns:
//   - Transform: the rotated copy
func (t Transform) LookingAt(target, up mgl32.Vec3) Transform {
	t.Rotation = LookRotation(t.Translation, target, up)
	return t
}

// Aabb is an axis-aligned bounding box stored as a center and half extents in local space.
type Aabb struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
}

// AabbFromMinMax builds an Aabb from its minimum and maximum corners.
func AabbFromMinMax(minimum, maximum mgl32.Vec3) Aabb {
	return Aabb{
		Center:      minimum.Add(maximum).Mul(0.5),
		HalfExtents: maximum.Sub(minimum).Mul(0.5),
	}
}

// AabbFromPoints computes the tightest Aabb enclosing points.
// Returns false when points is empty.
func AabbFromPoints(points []mgl32.Vec3) (Aabb, bool) {
	if len(points) == 0 {
		return Aabb{}, false
	}
	minimum := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	maximum := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			minimum[i] = min(minimum[i], p[i])
			maximum[i] = max(maximum[i], p[i])
		}
	}
	return AabbFromMinMax(minimum, maximum), true
}

// Viewport is a pixel rectangle of a render target.
type Viewport struct {
	X, Y          uint32
	Width, Height uint32
}

// Aspect returns the width to height ratio, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Width == 0 || v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
