package material

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
)

// PluginBuilderOption is a functional option used to configure the material plugin during construction.
type PluginBuilderOption func(*plugin)

// WithPluginShader replaces the embedded material shader.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - PluginBuilderOption: a function that sets the shader
func WithPluginShader(s shader.Shader) PluginBuilderOption {
	return func(p *plugin) {
		p.shader = s
	}
}

// WithFramesInFlight sets how many frames replaced GPU polylines and materials are kept
// before release.
//
// Parameters:
//   - n: the number of frames the GPU may still be processing
//
// Returns:
//   - PluginBuilderOption: a function that sets the frames in flight
func WithFramesInFlight(n int) PluginBuilderOption {
	return func(p *plugin) {
		if n > 0 {
			p.framesInFlight = n
		}
	}
}

// WithCoreOptions passes options to the polyline core plugin the material plugin builds.
//
// Parameters:
//   - opts: the core plugin options
//
// Returns:
//   - PluginBuilderOption: a function that appends the options
func WithCoreOptions(opts ...polyline.PluginBuilderOption) PluginBuilderOption {
	return func(p *plugin) {
		p.coreOpts = append(p.coreOpts, opts...)
	}
}

// WithMaterialAssetsOptions passes options to the material RenderAssets mirror.
//
// Parameters:
//   - opts: the mirror options
//
// Returns:
//   - PluginBuilderOption: a function that appends the options
func WithMaterialAssetsOptions(opts ...render_asset.RenderAssetsBuilderOption[PolylineMaterial, *GpuMaterial]) PluginBuilderOption {
	return func(p *plugin) {
		p.assetOpts = append(p.assetOpts, opts...)
	}
}
