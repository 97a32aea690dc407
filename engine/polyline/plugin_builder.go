package polyline

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PluginBuilderOption is a functional option used to configure the polyline plugin during construction.
type PluginBuilderOption func(*plugin)

// WithPluginShader replaces the embedded polyline shader. It must satisfy ValidateShader.
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

// WithoutQueue leaves queueing to another plugin, typically a material overlay that queues
// every polyline itself.
//
// Returns:
//   - PluginBuilderOption: a function that disables the default queue system
func WithoutQueue() PluginBuilderOption {
	return func(p *plugin) {
		p.queue = false
	}
}

// WithFramesInFlight sets how many frames replaced GPU polylines are kept before release.
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

// WithExtractorOptions passes options to the plugin's Extractor.
//
// Parameters:
//   - opts: the extractor options
//
// Returns:
//   - PluginBuilderOption: a function that appends the options
func WithExtractorOptions(opts ...ExtractorBuilderOption) PluginBuilderOption {
	return func(p *plugin) {
		p.extractorOpts = append(p.extractorOpts, opts...)
	}
}

// WithRenderAssetsOptions passes options to the polyline RenderAssets mirror.
//
// Parameters:
//   - opts: the mirror options
//
// Returns:
//   - PluginBuilderOption: a function that appends the options
func WithRenderAssetsOptions(opts ...render_asset.RenderAssetsBuilderOption[Polyline, *GpuPolyline]) PluginBuilderOption {
	return func(p *plugin) {
		p.assetOpts = append(p.assetOpts, opts...)
	}
}

// WithResourceReleasers replaces how replaced bind groups and uniform buffers are freed.
//
// Parameters:
//   - group: releases a replaced bind group
//   - buffer: releases a replaced uniform buffer
//
// Returns:
//   - PluginBuilderOption: a function that sets the releasers
func WithResourceReleasers(group func(bind_group_provider.BindGroupProvider), buffer func(*wgpu.Buffer)) PluginBuilderOption {
	return func(p *plugin) {
		p.releaseGroup = group
		p.releaseBuffer = buffer
	}
}
