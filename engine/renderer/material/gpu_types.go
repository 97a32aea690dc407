package material

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialUniformStructKey is the pre-processor key of the PolylineMaterialUniform struct.
const MaterialUniformStructKey shader.AnnotationArg = "polyline_material"

// MaterialUniformSource is the canonical WGSL definition of the PolylineMaterialUniform struct.
// Matches MaterialUniform layout exactly (32 bytes).
//
//go:embed assets/polyline_material_uniform.wgsl
var MaterialUniformSource string

// ShaderSource is the material polyline shader. Group 0 is the view, group 1 the material and
// group 2 the polyline instance uniform.
//
//go:embed assets/polyline_material.wgsl
var ShaderSource string

// ShaderKey is the key of the material polyline shader.
const ShaderKey = "polyline_material"

// MaterialUniform is the GPU form of a PolylineMaterial.
// Size: 32 bytes (vec4 color, three f32 and one f32 of padding).
type MaterialUniform struct {
	Color       mgl32.Vec4 // offset 0
	DepthBias   float32    // offset 16
	Width       float32    // offset 20
	Perspective float32    // offset 24: 1 for world-space widths, 0 for pixel widths
}

// Size returns the size of the serialized MaterialUniform in bytes.
func (u MaterialUniform) Size() int {
	return 32
}

// Marshal serializes the uniform for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (u MaterialUniform) Marshal() []byte {
	buf := make([]byte, 32)
	off := common.PutFloat32s(buf, 0, u.Color[:]...)
	common.PutFloat32s(buf, off, u.DepthBias, u.Width, u.Perspective)
	return buf
}

// WithMaterialUniform registers the PolylineMaterialUniform struct with a shader's pre-processor.
func WithMaterialUniform() shader.PreProcessorOption {
	return shader.WithStruct(MaterialUniformStructKey, MaterialUniformSource, "PolylineMaterialUniform")
}

// NewDefaultShader parses the embedded material shader with the view, material and polyline
// structs registered.
//
// Returns:
//   - shader.Shader: the parsed shader
func NewDefaultShader() shader.Shader {
	return shader.NewShader(ShaderKey,
		shader.WithSource(ShaderSource),
		shader.WithIncludes(view.WithViewUniform(), WithMaterialUniform(), polyline.WithPolylineUniform()),
	)
}
