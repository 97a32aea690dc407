package polyline

import "github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"

// PolylinePipelineBuilderOption is a functional option used to configure a PolylinePipeline
// during construction.
type PolylinePipelineBuilderOption func(*polylinePipeline)

// WithShader replaces the embedded polyline shader. The shader must satisfy ValidateShader.
//
// Parameters:
//   - s: the shader both stages are built from
//
// Returns:
//   - PolylinePipelineBuilderOption: a function that sets the shader
func WithShader(s shader.Shader) PolylinePipelineBuilderOption {
	return func(p *polylinePipeline) {
		p.shader = s
	}
}
