package polyline

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/go-gl/mathgl/mgl32"
)

// PolylineUniformStructKey is the pre-processor key shaders include the PolylineUniform
// struct with:
//
//	//@oxy:include polyline
const PolylineUniformStructKey shader.AnnotationArg = "polyline"

// PolylineUniformSource is the canonical WGSL definition of the PolylineUniform struct.
//
//go:embed assets/polyline_uniform.wgsl
var PolylineUniformSource string

// ShaderSource is the default polyline shader. Group 0 is the view, group 1 the polyline
// instance uniform.
//
//go:embed assets/polyline.wgsl
var ShaderSource string

// ShaderKey is the key of the default polyline shader.
const ShaderKey = "polyline"

// PolylineUniform is the per-entity data bound through the polyline instance group.
// Size: 64 bytes.
type PolylineUniform struct {
	Transform mgl32.Mat4 // offset 0: local to world, column-major
}

// Size returns the size of the serialized PolylineUniform in bytes.
func (u PolylineUniform) Size() int {
	return 64
}

// Marshal serializes the uniform for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (u PolylineUniform) Marshal() []byte {
	buf := make([]byte, 64)
	common.PutFloat32s(buf, 0, u.Transform[:]...)
	return buf
}

// WithPolylineUniform registers the PolylineUniform struct with a shader's pre-processor.
func WithPolylineUniform() shader.PreProcessorOption {
	return shader.WithStruct(PolylineUniformStructKey, PolylineUniformSource, "PolylineUniform")
}

// NewDefaultShader parses the embedded polyline shader with the view and polyline structs
// registered.
//
// Returns:
//   - shader.Shader: the parsed shader
func NewDefaultShader() shader.Shader {
	return shader.NewShader(ShaderKey,
		shader.WithSource(ShaderSource),
		shader.WithIncludes(view.WithViewUniform(), WithPolylineUniform()),
	)
}
