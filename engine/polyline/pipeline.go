package polyline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// VertexEntryPoint is the vertex entry point every polyline shader must declare.
	VertexEntryPoint = "vertex"

	// FragmentEntryPoint is the fragment entry point every polyline shader must declare.
	FragmentEntryPoint = "fragment"

	// DepthFormat is the depth attachment format polyline pipelines are built for.
	DepthFormat = wgpu.TextureFormatDepth32Float

	opaqueLabel      = "opaque_polyline_pipeline"
	transparentLabel = "transparent_polyline_pipeline"
)

// polylinePipeline is the implementation of the PolylinePipeline interface.
type polylinePipeline struct {
	shader         shader.Shader
	viewLayout     *wgpu.BindGroupLayout
	polylineLayout *wgpu.BindGroupLayout
	formats        view.TargetFormats
}

// PolylinePipeline is the render-world resource holding the bind group layouts and shader
// of the polyline pipeline family, and the specializer that builds each variant.
type PolylinePipeline interface {
	// Specialize builds the pipeline descriptor for key. Equal keys yield equal descriptors.
	//
	// Parameters:
	//   - key: the pipeline variant
	//
	// Returns:
	//   - pipeline.RenderPipelineDescriptor: the descriptor to queue on the pipeline cache
	Specialize(key PolylinePipelineKey) pipeline.RenderPipelineDescriptor

	// ViewLayout returns the layout of the view group bound at slot 0.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the view group layout
	ViewLayout() *wgpu.BindGroupLayout

	// PolylineLayout returns the layout of the per-instance polyline group.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the polyline group layout
	PolylineLayout() *wgpu.BindGroupLayout

	// Shader returns the shader both stages are built from.
	//
	// Returns:
	//   - shader.Shader: the polyline shader
	Shader() shader.Shader

	// Formats returns the color target formats variants are built for.
	//
	// Returns:
	//   - view.TargetFormats: the surface and HDR formats
	Formats() view.TargetFormats
}

var _ PolylinePipeline = &polylinePipeline{}
var _ pipeline.Specializer[PolylinePipelineKey] = &polylinePipeline{}

// NewPolylinePipeline creates the two bind group layouts on device and checks the shader
// against the polyline vertex contract.
//
// Parameters:
//   - device: the device layouts are created on
//   - formats: the color target formats of the views polylines are drawn into
//   - opts: a variadic list of PolylinePipelineBuilderOption functions
//
// Returns:
//   - PolylinePipeline: the pipeline resource
//   - error: an error if a layout could not be created or the shader breaks the contract
func NewPolylinePipeline(device render_device.RenderDevice, formats view.TargetFormats, opts ...PolylinePipelineBuilderOption) (PolylinePipeline, error) {
	p := &polylinePipeline{formats: formats}
	for _, opt := range opts {
		opt(p)
	}
	if p.shader == nil {
		p.shader = NewDefaultShader()
	}
	if err := ValidateShader(p.shader); err != nil {
		return nil, err
	}

	viewDesc := ViewLayoutDescriptor()
	viewLayout, err := device.CreateBindGroupLayout(&viewDesc)
	if err != nil {
		return nil, fmt.Errorf("polyline: failed to create view layout: %w", err)
	}
	polylineDesc := PolylineLayoutDescriptor()
	polylineLayout, err := device.CreateBindGroupLayout(&polylineDesc)
	if err != nil {
		return nil, fmt.Errorf("polyline: failed to create polyline layout: %w", err)
	}
	p.viewLayout = viewLayout
	p.polylineLayout = polylineLayout
	return p, nil
}

// ViewLayoutDescriptor describes the view group: the view uniform at binding 0 with a
// dynamic offset, visible to the vertex stage.
func ViewLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return dynamicUniformLayout("polyline_view_layout", uint64(view.ViewUniform{}.Size()))
}

// PolylineLayoutDescriptor describes the polyline instance group: the PolylineUniform at
// binding 0 with a dynamic offset, visible to the vertex stage.
func PolylineLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return dynamicUniformLayout("polyline_layout", uint64(PolylineUniform{}.Size()))
}

func dynamicUniformLayout(label string, minSize uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   minSize,
				},
			},
		},
	}
}

// VertexBufferLayout is the single instance-stepped vertex buffer every polyline pipeline
// reads: each instance sees the vertex at its index at location 0 and the next one at
// location 1.
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: VertexStride, ShaderLocation: 1},
		},
	}
}

// DepthStencilState is the reverse-Z depth state of polyline pipelines: Depth32Float,
// compare Greater, no stencil and no bias.
//
// Parameters:
//   - depthWrite: whether fragments write depth
//
// Returns:
//   - wgpu.DepthStencilState: the depth state
func DepthStencilState(depthWrite bool) wgpu.DepthStencilState {
	ignore := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: depthWrite,
		DepthCompare:      wgpu.CompareFunctionGreater,
		StencilFront:      ignore,
		StencilBack:       ignore,
		StencilReadMask:   0,
		StencilWriteMask:  0,
	}
}

// ValidateShader checks s against the polyline shader contract: `vertex` and `fragment`
// entry points, and float32x3 vertex inputs at locations 0 and 1.
//
// Parameters:
//   - s: the shader to check
//
// Returns:
//   - error: a description of the first violation, or nil
func ValidateShader(s shader.Shader) error {
	if got := s.EntryPoint(shader.ShaderTypeVertex); got != VertexEntryPoint {
		return fmt.Errorf("polyline: shader %s: vertex entry point is %q, want %q", s.Key(), got, VertexEntryPoint)
	}
	if got := s.EntryPoint(shader.ShaderTypeFragment); got != FragmentEntryPoint {
		return fmt.Errorf("polyline: shader %s: fragment entry point is %q, want %q", s.Key(), got, FragmentEntryPoint)
	}
	found := map[uint32]bool{}
	for _, in := range s.VertexInputs() {
		if in.Location > 1 {
			continue
		}
		if in.Format != wgpu.VertexFormatFloat32x3 {
			return fmt.Errorf("polyline: shader %s: input %s at location %d must be vec3<f32>", s.Key(), in.Name, in.Location)
		}
		found[in.Location] = true
	}
	if !found[0] || !found[1] {
		return fmt.Errorf("polyline: shader %s: vertex inputs at locations 0 and 1 are required", s.Key())
	}
	return nil
}

func (p *polylinePipeline) Specialize(key PolylinePipelineKey) pipeline.RenderPipelineDescriptor {
	label := opaqueLabel
	blend := pipeline.BlendStateReplace
	depthWrite := true
	switch {
	case key.Contains(PolylinePipelineKeyTransparentMainPass):
		label = transparentLabel
		blend = pipeline.BlendStateAlphaBlending
		depthWrite = false
	case key.Contains(PolylinePipelineKeyPerspective):
		// perspective lines blend but keep writing depth
		label = transparentLabel
		blend = pipeline.BlendStateAlphaBlending
	}

	return pipeline.NewRenderPipelineDescriptor(label,
		pipeline.WithLayout(p.viewLayout, p.polylineLayout),
		pipeline.WithVertexState(p.shader, VertexEntryPoint, VertexBufferLayout()),
		pipeline.WithFragmentState(p.shader, FragmentEntryPoint, wgpu.ColorTargetState{
			Format:    p.formats.Format(key.Contains(PolylinePipelineKeyHDR)),
			Blend:     &blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		}),
		pipeline.WithDepthStencil(DepthStencilState(depthWrite)),
		pipeline.WithMultisample(key.MSAASamples()),
	)
}

func (p *polylinePipeline) ViewLayout() *wgpu.BindGroupLayout {
	return p.viewLayout
}

func (p *polylinePipeline) PolylineLayout() *wgpu.BindGroupLayout {
	return p.polylineLayout
}

func (p *polylinePipeline) Shader() shader.Shader {
	return p.shader
}

func (p *polylinePipeline) Formats() view.TargetFormats {
	return p.formats
}
