package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ComposeMatrix builds an affine 4x4 matrix from translation, rotation and scale.
// The result is T * R * S in column-major order.
//
// Parameters:
//   - translation: translation in world space
//   - rotation: unit quaternion orientation
//   - scale: scale factors along each local axis
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeMatrix(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation[0], translation[1], translation[2])
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

// PerspectiveInfiniteReverseZ creates a right-handed perspective projection with an infinite
// far plane and reversed depth. Points on the near plane map to depth 1 and depth approaches 0
// toward infinity, matching a Greater depth compare and a depth clear value of 0.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveInfiniteReverseZ(fovY, aspect, near float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[11] = -1.0
	m[14] = near
	return m
}

// LookRotation returns the orientation that points the local -Z axis from eye toward target.
// When eye and target coincide the identity rotation is returned.
//
// Parameters:
//   - eye: position the rotation is evaluated from
//   - target: point to face
//   - up: world up vector (typically +Y)
//
// Returns:
//   - mgl32.Quat: the world-space orientation
func LookRotation(eye, target, up mgl32.Vec3) mgl32.Quat {
	if eye.ApproxEqual(target) {
		return mgl32.QuatIdent()
	}
	view := mgl32.LookAtV(eye, target, up)
	return mgl32.Mat4ToQuat(view).Inverse().Normalize()
}

// TransformPoint applies an affine matrix to a point.
//
// Parameters:
//   - m: the affine matrix
//   - p: the point
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// PutFloat32s writes values into buf as little-endian float32s starting at offset.
//
// Parameters:
//   - buf: the destination buffer, which must have room for every value
//   - offset: the byte offset of the first value
//   - values: the values to write
//
// Returns:
//   - int: the byte offset just past the last value written
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
		offset += 4
	}
	return offset
}
