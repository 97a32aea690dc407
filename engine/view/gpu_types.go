package view

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewUniformStructKey is the pre-processor key shaders include the ViewUniform struct with:
//
//	//@oxy:include view
const ViewUniformStructKey shader.AnnotationArg = "view"

// ViewUniformSource is the canonical WGSL definition of the ViewUniform struct.
// Matches ViewUniform's Marshal layout exactly (224 bytes, uniform aligned).
//
//go:embed assets/view_uniform.wgsl
var ViewUniformSource string

// ViewUniform is the per-view camera data bound at group 0 of every view-dependent pipeline.
// Size: 224 bytes.
type ViewUniform struct {
	ViewProj      mgl32.Mat4 // offset 0: projection * view
	InverseView   mgl32.Mat4 // offset 64: camera to world
	Projection    mgl32.Mat4 // offset 128: camera to clip
	WorldPosition mgl32.Vec3 // offset 192: camera position, padded to 16 bytes
	Viewport      mgl32.Vec4 // offset 208: x, y, width, height in pixels
}

// Size returns the size of the serialized ViewUniform in bytes.
func (u ViewUniform) Size() int {
	return 224
}

// Marshal serializes the uniform for GPU upload.
//
// Returns:
//   - []byte: 224-byte buffer ready for GPU upload.
func (u ViewUniform) Marshal() []byte {
	buf := make([]byte, 224)
	off := common.PutFloat32s(buf, 0, u.ViewProj[:]...)
	off = common.PutFloat32s(buf, off, u.InverseView[:]...)
	off = common.PutFloat32s(buf, off, u.Projection[:]...)
	common.PutFloat32s(buf, off, u.WorldPosition[:]...)
	common.PutFloat32s(buf, 208, u.Viewport[:]...)
	return buf
}

// WithViewUniform registers the ViewUniform struct with a shader's pre-processor.
func WithViewUniform() shader.PreProcessorOption {
	return shader.WithStruct(ViewUniformStructKey, ViewUniformSource, "ViewUniform")
}
