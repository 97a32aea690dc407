package renderer

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration string to a PresentMode. Unknown names select VSync.
func ParsePresentMode(name string) PresentMode {
	if name == "uncapped" || name == "immediate" {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// DepthTextureFormat is the format of the depth attachment of every view pass.
const DepthTextureFormat = wgpu.TextureFormatDepth32Float

// ViewTarget describes the render pass of one view.
type ViewTarget struct {
	// Hdr selects the HDR color target, which is tonemapped onto the surface when the pass ends.
	Hdr bool

	// Clear clears color and depth before drawing. The first view of a frame always clears.
	Clear bool

	ClearColor [4]float64
	Viewport   common.Viewport
}

// RendererBackend is the GPU API the Renderer records frames through.
type RendererBackend interface {
	// Device returns the device render systems create resources on.
	Device() render_device.RenderDevice

	// SurfaceFormat returns the color format of the presented surface.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the sample count of every view pass.
	SampleCount() uint32

	// ConfigureSurface (re)creates the surface and its attachments at the given size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode applied by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the surface texture and a command encoder.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// BeginViewPass starts the render pass of one view.
	//
	// Parameters:
	//   - target: the view's attachments, clear state and viewport
	//
	// Returns:
	//   - render_device.TrackedRenderPass: the pass draw commands are recorded on
	//   - error: an error if no frame is active
	BeginViewPass(target ViewTarget) (render_device.TrackedRenderPass, error)

	// EndViewPass ends the active view pass.
	EndViewPass()

	// EndFrame submits the frame's command buffer.
	//
	// Returns:
	//   - error: an error if the encoder could not be finished
	EndFrame() error

	// Present presents the surface texture acquired by BeginFrame.
	Present()

	// Release releases every GPU object the backend owns.
	Release()
}
