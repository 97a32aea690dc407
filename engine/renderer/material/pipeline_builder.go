package material

import "github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"

// MaterialPipelineBuilderOption is a functional option used to configure a MaterialPipeline during construction.
type MaterialPipelineBuilderOption func(*materialPipeline)

// WithShader replaces the embedded material shader. It must satisfy polyline.ValidateShader
// and read the material at group 1 and the polyline uniform at group 2.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - MaterialPipelineBuilderOption: a function that sets the shader
func WithShader(s shader.Shader) MaterialPipelineBuilderOption {
	return func(p *materialPipeline) {
		p.shader = s
	}
}
