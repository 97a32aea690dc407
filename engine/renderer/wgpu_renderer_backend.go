package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/tonemap.wgsl
var tonemapSource string

// colorTarget is a render attachment texture and its default view.
type colorTarget struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *colorTarget) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
	*t = colorTarget{}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	renderDevice render_device.RenderDevice

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount   MSAASampleCount  // MSAA sample count for every view pass

	// Attachments recreated by ConfigureSurface.
	msaa    colorTarget // multisampled surface-format target, only when sampleCount > 1
	hdrMsaa colorTarget // multisampled HDR target, only when sampleCount > 1
	hdr     colorTarget // single-sampled HDR target, sampled by the tonemap pass
	depth   colorTarget

	tonemapLayout   *wgpu.BindGroupLayout
	tonemapPipeline *wgpu.RenderPipeline
	tonemapSampler  *wgpu.Sampler
	tonemapGroup    *wgpu.BindGroup

	// Frame state for the frame between BeginFrame and EndFrame.
	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	framePass    *wgpu.RenderPassEncoder
	passTarget   ViewTarget
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()
	w.renderDevice = render_device.NewRenderDevice(d, w.queue, limits)

	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = capabilities.Formats[0]
	if err := w.createTonemap(); err != nil {
		panic(fmt.Sprintf("renderer: %v", err))
	}
	return w
}

func (b *wgpuRendererBackendImpl) Device() render_device.RenderDevice {
	return b.renderDevice
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SampleCount() uint32 {
	return uint32(b.sampleCount)
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.msaa.release()
	b.hdrMsaa.release()
	b.hdr.release()
	b.depth.release()

	count := uint32(b.sampleCount)
	if count > 1 {
		b.msaa = b.createTarget("MSAA Texture", width, height, count, b.surfaceFormat, wgpu.TextureUsageRenderAttachment)
		b.hdrMsaa = b.createTarget("HDR MSAA Texture", width, height, count, view.HdrTextureFormat, wgpu.TextureUsageRenderAttachment)
	}
	b.hdr = b.createTarget("HDR Texture", width, height, 1, view.HdrTextureFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	// Depth texture sample count must match the color attachment.
	b.depth = b.createTarget("Depth Texture", width, height, count, DepthTextureFormat, wgpu.TextureUsageRenderAttachment)

	if b.tonemapGroup != nil {
		b.tonemapGroup.Release()
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Tonemap Bind Group",
		Layout: b.tonemapLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: b.hdr.view},
			{Binding: 1, Sampler: b.tonemapSampler},
		},
	})
	if err != nil {
		panic(err)
	}
	b.tonemapGroup = group
}

func (b *wgpuRendererBackendImpl) createTarget(label string, width, height int, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) colorTarget {
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	v, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return colorTarget{texture: texture, view: v}
}

// createTonemap builds the pipeline resolving the HDR target onto the surface.
func (b *wgpuRendererBackendImpl) createTonemap() error {
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Tonemap Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("tonemap layout: %w", err)
	}
	b.tonemapLayout = layout

	b.tonemapSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Tonemap Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("tonemap sampler: %w", err)
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "tonemap",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: tonemapSource},
	})
	if err != nil {
		return fmt.Errorf("tonemap shader: %w", err)
	}
	defer module.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Tonemap Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("tonemap pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	b.tonemapPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Tonemap Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vertex",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fragment",
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("tonemap pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	v, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		v.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = v
	return nil
}

// colorAttachment returns the attachment a pass renders into. With MSAA the multisampled
// texture is drawn and the single-sampled one is the resolve target.
func (b *wgpuRendererBackendImpl) colorAttachment(hdr bool, load wgpu.LoadOp, clearColor [4]float64) wgpu.RenderPassColorAttachment {
	resolved, multisampled := b.frameView, b.msaa.view
	if hdr {
		resolved, multisampled = b.hdr.view, b.hdrMsaa.view
	}
	a := wgpu.RenderPassColorAttachment{
		View:    resolved,
		LoadOp:  load,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: clearColor[0], G: clearColor[1], B: clearColor[2], A: clearColor[3],
		},
	}
	if b.sampleCount > 1 {
		a.View = multisampled
		a.ResolveTarget = resolved
	}
	return a
}

func (b *wgpuRendererBackendImpl) BeginViewPass(target ViewTarget) (render_device.TrackedRenderPass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return nil, errors.New("renderer: no active frame")
	}
	if b.framePass != nil {
		return nil, errors.New("renderer: previous view pass not ended")
	}

	load := wgpu.LoadOpLoad
	if target.Clear {
		load = wgpu.LoadOpClear
	}
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{b.colorAttachment(target.Hdr, load, target.ClearColor)},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         b.depth.view,
			DepthLoadOp:  load,
			DepthStoreOp: wgpu.StoreOpStore,
			// reverse-Z: the far plane is at depth 0
			DepthClearValue: 0.0,
		},
	})
	vp := target.Viewport
	if vp.Width > 0 && vp.Height > 0 {
		pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
		pass.SetScissorRect(vp.X, vp.Y, vp.Width, vp.Height)
	}
	b.framePass = pass
	b.passTarget = target
	return render_device.NewTrackedRenderPass(pass), nil
}

func (b *wgpuRendererBackendImpl) EndViewPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	if b.passTarget.Hdr {
		b.tonemap(b.passTarget.Viewport)
	}
}

// tonemap draws the HDR target over viewport of the surface target. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) tonemap(vp common.Viewport) {
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{b.colorAttachment(false, wgpu.LoadOpLoad, [4]float64{})},
	})
	if vp.Width > 0 && vp.Height > 0 {
		pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
		pass.SetScissorRect(vp.X, vp.Y, vp.Width, vp.Height)
	}
	pass.SetPipeline(b.tonemapPipeline)
	pass.SetBindGroup(0, b.tonemapGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("renderer: no active frame")
	}
	defer func() {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameSurface = nil
		b.frameView = nil
		return fmt.Errorf("renderer: finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.msaa.release()
	b.hdrMsaa.release()
	b.hdr.release()
	b.depth.release()
	if b.tonemapGroup != nil {
		b.tonemapGroup.Release()
	}
	b.tonemapPipeline.Release()
	b.tonemapSampler.Release()
	b.tonemapLayout.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
