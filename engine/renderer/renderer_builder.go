package renderer

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShaderHotReload watches shaders passed to WatchShader and requeues their pipelines
// when the source changes.
//
// Parameters:
//   - enabled: true to start the shader watcher
//
// Returns:
//   - RendererBuilderOption: a function that applies the hot reload option to a renderer
func WithShaderHotReload(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderHotReload = enabled
	}
}

// WithPlugins builds the plugins, in order, once the renderer's resources are in place.
//
// Parameters:
//   - plugins: the plugins to build
//
// Returns:
//   - RendererBuilderOption: a function that appends the plugins
func WithPlugins(plugins ...schedule.Plugin) RendererBuilderOption {
	return func(r *renderer) {
		r.plugins = append(r.plugins, plugins...)
	}
}

// WithWorkerPool sets the pool parallel stages run on instead of a pool owned by the renderer.
//
// Parameters:
//   - pool: the shared worker pool
//
// Returns:
//   - RendererBuilderOption: a function that sets the pool
func WithWorkerPool(pool worker.DynamicWorkerPool) RendererBuilderOption {
	return func(r *renderer) {
		r.pool = pool
	}
}

// WithPipelineCache sets the pipeline cache.
func WithPipelineCache(cache pipeline.PipelineCache) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelines = cache
	}
}

// WithBackend uses b instead of creating a WGPU backend from the window. The surface size
// is taken from the first Resize.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - RendererBuilderOption: a function that sets the backend
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}
